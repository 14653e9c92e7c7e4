package device

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	maxNameLength = 100

	namePrefix  = "Display"
	nameMinTail = 1000
	nameMaxTail = 9999

	pairingCodeMin = 100000
	pairingCodeMax = 999999
)

// ValidateName checks a user-supplied device name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: %w: name cannot be empty", ErrInvalidInput, ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: %w: name exceeds %d characters", ErrInvalidInput, ErrInvalidName, maxNameLength)
	}
	return nil
}

// GenerateName returns "Display" followed by four random digits.
func GenerateName() (string, error) {
	n, err := randomInRange(nameMinTail, nameMaxTail)
	if err != nil {
		return "", fmt.Errorf("generating device name: %w", err)
	}
	return fmt.Sprintf("%s%d", namePrefix, n), nil
}

// GeneratePairingCode returns a six-digit code from crypto/rand.
func GeneratePairingCode() (string, error) {
	n, err := randomInRange(pairingCodeMin, pairingCodeMax)
	if err != nil {
		return "", fmt.Errorf("generating pairing code: %w", err)
	}
	return fmt.Sprintf("%06d", n), nil
}

// randomInRange returns a uniform integer in [lo, hi].
func randomInRange(lo, hi int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(hi-lo+1))
	if err != nil {
		return 0, err
	}
	return lo + n.Int64(), nil
}
