// Package influxdb records authentication and pairing outcomes in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and health monitoring.
//
// # Purpose
//
// Points written:
//   - auth_events{action, outcome} count: login, refresh, register and logout results
//   - device_pairing{event} count, transferred: pair and disconnect operations
//
// Spikes in auth_events with outcome=failure are the usual sign of
// credential stuffing. No user or device identifiers are written as tags.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // telemetry off
//	}
//	defer client.Close()
//
//	client.RecordAuthEvent("login", influxdb.OutcomeSuccess)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Write errors are delivered asynchronously to the SetOnError callback.
package influxdb
