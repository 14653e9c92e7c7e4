package device

import "errors"

// Domain errors for the device package.
var (
	// ErrDeviceNotFound is returned when a device does not exist or is not
	// owned by the caller. The two cases are not distinguished.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidDeviceSecret is returned when a registering display presents
	// the wrong firmware secret.
	ErrInvalidDeviceSecret = errors.New("device: invalid device secret")

	// ErrInvalidInput wraps every validation failure.
	ErrInvalidInput = errors.New("device: invalid input")

	// ErrPairingCodeRequired is returned when pair is called without a code.
	ErrPairingCodeRequired = errors.New("device: pairing code is required")

	// ErrInvalidName is returned when an update sets an empty or oversized name.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrPairingCodeTaken is returned by the repository when an insert
	// collides with an existing pairing code.
	ErrPairingCodeTaken = errors.New("device: pairing code already in use")

	// ErrPairingCodeExhausted is returned when no free pairing code was found
	// within the retry budget.
	ErrPairingCodeExhausted = errors.New("device: could not allocate a unique pairing code")
)
