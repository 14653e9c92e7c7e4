package mqtt

import "fmt"

// TopicPrefix is the root of every displayhub topic.
const TopicPrefix = "displayhub"

// Topics provides builders for displayhub MQTT topics.
//
//	topic := mqtt.Topics{}.DevicePairing("dev-1a2b3c4d")
//	// Returns: "displayhub/device/dev-1a2b3c4d/pairing"
type Topics struct{}

// DevicePairing returns the retained pairing-state topic of one display.
func (Topics) DevicePairing(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/pairing", TopicPrefix, deviceID)
}

// SystemStatus returns the service online/offline status topic.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// AllDevicePairing matches every display's pairing topic.
//
// Pattern: displayhub/device/+/pairing
func (Topics) AllDevicePairing() string {
	return TopicPrefix + "/device/+/pairing"
}
