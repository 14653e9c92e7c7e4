// Package mqtt provides the MQTT connection displayhub uses to tell
// headless displays about their pairing state.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// A display has no user session, so it cannot poll the HTTP API for its
// owner. Instead it subscribes to its own retained pairing topic:
//
//	displayhub/device/{id}/pairing  {"device_id":"dev-1a2b3c4d","paired":true,"timestamp":"..."}
//
// PairingNotifier publishes that message after every committed pair or
// disconnect. Publishing is best-effort; the HTTP operation has already
// succeeded when the notifier runs.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - The broker ACL should let a display read only its own topic
//   - Payloads carry no credentials or pairing codes
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	notifier := mqtt.NewPairingNotifier(client)
//	devices := device.NewService(device.ServiceDeps{Notifier: notifier, ...})
package mqtt
