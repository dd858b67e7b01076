package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}

	applyDefaults(cfg)

	assert.Equal(t, "servicehub.db", cfg.DatabaseFile)
	assert.Equal(t, 60, cfg.CacheIdleTTLMinutes)
	assert.Equal(t, 10, cfg.ScannerIntervalSeconds)
	assert.Equal(t, 100, cfg.ScannerMaxPeekPerEntity)
	assert.Equal(t, 4, cfg.ScannerMaxConcurrentNamespaces)
	assert.Equal(t, 20, cfg.ScannerStaleThresholdSeconds)
	assert.Equal(t, 10, cfg.ReplaySingleMaxAttempts)
	assert.Equal(t, 50, cfg.ReplaySingleBatchSize)
	assert.Equal(t, 3, cfg.ReplaySingleWaitSeconds)
	assert.Equal(t, 10, cfg.ReplayBatchMaxAttempts)
	assert.Equal(t, 100, cfg.ReplayBatchBatchSize)
	assert.Equal(t, 5, cfg.ReplayBatchWaitSeconds)
	assert.Equal(t, 20, cfg.PurgeMaxAttempts)
	assert.Equal(t, 100, cfg.PurgeBatchSize)
}

func TestApplyDefaults_StaleThresholdTracksInterval(t *testing.T) {
	cfg := &Config{ScannerIntervalSeconds: 30}

	applyDefaults(cfg)

	assert.Equal(t, 60, cfg.ScannerStaleThresholdSeconds)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		DatabaseFile:            "/data/hub.db",
		CacheIdleTTLMinutes:     5,
		ScannerIntervalSeconds:  60,
		ReplaySingleWaitSeconds: 10,
	}

	applyDefaults(cfg)

	assert.Equal(t, "/data/hub.db", cfg.DatabaseFile)
	assert.Equal(t, 5, cfg.CacheIdleTTLMinutes)
	assert.Equal(t, 60, cfg.ScannerIntervalSeconds)
	assert.Equal(t, 10, cfg.ReplaySingleWaitSeconds)
}
