package influxdb_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/displayhub/internal/infrastructure/config"
	"github.com/nerrad567/displayhub/internal/infrastructure/influxdb"
)

// testConfig returns a configuration for a local dev InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "displayhub-dev-token",
		Org:           "displayhub",
		Bucket:        "auth",
		BatchSize:     100,
		FlushInterval: 1, // 1 second for faster test feedback
	}
}

// skipIfNoInfluxDB skips the test if InfluxDB is not running.
func skipIfNoInfluxDB(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION") == "" {
		client, err := influxdb.Connect(testConfig())
		if err != nil {
			t.Skip("InfluxDB not available, skipping integration test")
		}
		client.Close()
	}
}

func TestConnect(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(testConfig())
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.IsConnected())
	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg)
	assert.ErrorIs(t, err, influxdb.ErrDisabled)
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999" // Non-existent port

	_, err := influxdb.Connect(cfg)
	assert.ErrorIs(t, err, influxdb.ErrConnectionFailed)
}

func TestRecordAndClose(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(testConfig())
	require.NoError(t, err)

	var writeErr error
	client.SetOnError(func(err error) { writeErr = err })

	client.RecordAuthEvent("login", influxdb.OutcomeSuccess)
	client.RecordPairing(true, false)
	client.Flush()

	require.NoError(t, client.Close())
	assert.False(t, client.IsConnected())
	assert.NoError(t, writeErr, "async write")
}

func TestNilClient(t *testing.T) {
	var client *influxdb.Client

	assert.False(t, client.IsConnected())
	assert.NoError(t, client.Close())
	assert.NotPanics(t, func() { client.RecordAuthEvent("login", influxdb.OutcomeFailure) })
	assert.ErrorIs(t, client.HealthCheck(context.Background()), influxdb.ErrNotConnected)
}
