package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/displayhub/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
// Broker tests need Mosquitto at 127.0.0.1:1883 and are skipped without it.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "displayhub-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// connectOrSkip connects to the local test broker or skips the test.
func connectOrSkip(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("broker tests disabled in -short mode")
	}
	c, err := Connect(testConfig())
	if err != nil {
		t.Skipf("no MQTT broker available: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestConnect(t *testing.T) {
	c := connectOrSkip(t)

	assert.True(t, c.IsConnected())
	assert.NoError(t, c.HealthCheck(context.Background()))
}

func TestClose(t *testing.T) {
	c := connectOrSkip(t)

	require.NoError(t, c.Close())
	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.HealthCheck(context.Background()), ErrNotConnected)
}

func TestPublishRetained(t *testing.T) {
	c := connectOrSkip(t)

	err := c.PublishRetained(Topics{}.DevicePairing("dev-test"), []byte(`{"paired":false}`))
	assert.NoError(t, err)
}

func TestCloseNil(t *testing.T) {
	var c *Client
	assert.NoError(t, c.Close(), "nil client")

	c = &Client{}
	assert.NoError(t, c.Close(), "unconnected client")
}

func TestHealthCheckCancelled(t *testing.T) {
	c := &Client{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.HealthCheck(ctx), context.Canceled)
}

func TestPublishValidation(t *testing.T) {
	c := &Client{cfg: testConfig()}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"bad qos", "displayhub/x", []byte("x"), 3, ErrInvalidQoS},
		{"oversized", "displayhub/x", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "displayhub/x", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, c.Publish(tt.topic, tt.payload, tt.qos, true), tt.wantErr)
		})
	}
}

func TestConnectInvalidBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the connect timeout")
	}
	cfg := testConfig()
	cfg.Broker.Port = 19999

	_, err := Connect(cfg)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestTopicBuilders(t *testing.T) {
	assert.Equal(t, "displayhub/device/dev-1a2b3c4d/pairing", Topics{}.DevicePairing("dev-1a2b3c4d"))
	assert.Equal(t, "displayhub/system/status", Topics{}.SystemStatus())
	assert.Equal(t, "displayhub/device/+/pairing", Topics{}.AllDevicePairing())
}

func TestBuildStatusPayload(t *testing.T) {
	var p statusPayload
	require.NoError(t, json.Unmarshal(buildStatusPayload("offline", "dh-1", "graceful_shutdown"), &p))

	assert.Equal(t, "offline", p.Status)
	assert.Equal(t, "dh-1", p.ClientID)
	assert.Equal(t, "graceful_shutdown", p.Reason)
	_, err := time.Parse(time.RFC3339, p.Timestamp)
	assert.NoError(t, err, "timestamp %q", p.Timestamp)

	assert.NotContains(t, string(buildStatusPayload("online", "dh-1", "")), "reason")
}
