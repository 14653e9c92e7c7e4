package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RetainedPublisher is the part of Client the pairing notifier needs.
type RetainedPublisher interface {
	PublishRetained(topic string, payload []byte) error
}

// PairingMessage is the retained payload on a display's pairing topic.
type PairingMessage struct {
	DeviceID  string `json:"device_id"`
	Paired    bool   `json:"paired"`
	Timestamp string `json:"timestamp"`
}

// PairingNotifier publishes pairing changes for displays.
// It satisfies device.Notifier.
type PairingNotifier struct {
	pub RetainedPublisher
	now func() time.Time
}

// NewPairingNotifier creates a notifier that publishes through pub.
func NewPairingNotifier(pub RetainedPublisher) *PairingNotifier {
	return &PairingNotifier{pub: pub, now: time.Now}
}

// PairingChanged publishes the display's new pairing state.
func (n *PairingNotifier) PairingChanged(ctx context.Context, deviceID string, paired bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(PairingMessage{
		DeviceID:  deviceID,
		Paired:    paired,
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encoding pairing message: %w", err)
	}

	if err := n.pub.PublishRetained(Topics{}.DevicePairing(deviceID), payload); err != nil {
		return fmt.Errorf("publishing pairing for %s: %w", deviceID, err)
	}
	return nil
}
