package device

import "time"

// Device is a registered display.
type Device struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	PairingCode     string    `json:"pairing_code"`
	UserID          *string   `json:"user_id"`
	CurrentLayoutID *string   `json:"current_layout_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Paired reports whether the display has an owner.
func (d *Device) Paired() bool {
	return d.UserID != nil
}

// Patch is a partial update applied by the owner.
//
// A nil Name leaves the name unchanged. CurrentLayoutID is only written
// when SetLayout is true, in which case a nil value clears it.
type Patch struct {
	Name            *string
	SetLayout       bool
	CurrentLayoutID *string
}

// PairResult describes a completed pairing.
type PairResult struct {
	Device *Device

	// PreviousOwnerID is set when the display was taken over from another
	// account (or re-paired by the same one).
	PreviousOwnerID string
}
