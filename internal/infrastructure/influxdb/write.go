package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	measurementAuth    = "auth_events"
	measurementPairing = "device_pairing"
)

// Outcomes recorded with RecordAuthEvent.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// RecordAuthEvent counts one authentication operation.
//
// Parameters:
//   - action: The operation (e.g., "login", "refresh", "register", "logout")
//   - outcome: OutcomeSuccess, OutcomeFailure (client error) or OutcomeError (server error)
//
// The write is non-blocking; points are batched and sent asynchronously.
// Tags are kept low-cardinality: user IDs are never written.
func (c *Client) RecordAuthEvent(action, outcome string) {
	c.WritePoint(measurementAuth,
		map[string]string{
			"action":  action,
			"outcome": outcome,
		},
		map[string]any{
			"count": 1,
		},
	)
}

// RecordPairing counts one pair or disconnect.
func (c *Client) RecordPairing(paired, transferred bool) {
	event := "disconnect"
	if paired {
		event = "pair"
	}
	c.WritePoint(measurementPairing,
		map[string]string{
			"event": event,
		},
		map[string]any{
			"count":       1,
			"transferred": transferred,
		},
	)
}

// WritePoint writes a custom point stamped with the current time.
// It is a no-op when the client is not connected.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	if !c.IsConnected() {
		return
	}
	c.WritePointWithTime(measurement, tags, fields, c.now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
