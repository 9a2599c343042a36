package observability

import (
	"testing"

	"github.com/smallbiznis/crudpark/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromAppConfig(t *testing.T) {
	cfg := LoadConfig(config.Config{
		Environment:       "production",
		AppVersion:        " 1.2.0 ",
		LogLevel:          "warn",
		LogFormat:         "json",
		OTLPEndpoint:      "collector:4317",
		OTLPProtocol:      "grpc",
		OTelEnabled:       true,
		OTelSamplingRatio: 3,
	})

	assert.Equal(t, "crudpark", cfg.ServiceName)
	assert.Equal(t, "1.2.0", cfg.Version)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
	assert.False(t, cfg.Debug())
}

func TestDebug(t *testing.T) {
	assert.True(t, Config{Environment: "test"}.Debug())
	assert.True(t, Config{Environment: "production", LogLevel: "DEBUG"}.Debug())
	assert.False(t, Config{Environment: "facility"}.Debug())
}
