package audit

import "time"

// Actions recorded by the service.
const (
	ActionRegister         = "register"
	ActionLogin            = "login"
	ActionLoginFailed      = "login_failed"
	ActionLogout           = "logout"
	ActionRefresh          = "refresh"
	ActionDeviceRegister   = "device_register"
	ActionDevicePair       = "device_pair"
	ActionDeviceTransfer   = "device_transfer"
	ActionDeviceDisconnect = "device_disconnect"
	ActionDeviceUpdate     = "device_update"
)

// Entity types.
const (
	EntityUser    = "user"
	EntitySession = "session"
	EntityDevice  = "device"
)

// Entry is a single audit trail record.
type Entry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	UserID     string         `json:"user_id,omitempty"`
	Source     string         `json:"source"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Filter controls which entries List returns.
type Filter struct {
	UserID     string // optional: only entries attributed to this user
	Action     string // optional
	EntityType string // optional
	EntityID   string // optional
	Limit      int    // default 50, max 200
	Offset     int
}

// Page size bounds for List.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ListResult is one page of entries, most recent first.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// normalise clamps the paging fields.
func (f *Filter) normalise() {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
