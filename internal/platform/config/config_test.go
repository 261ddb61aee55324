package config

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT", "")
	t.Setenv("REFERENCE_HANDLES", "")
	// the package directory has no .env file
	err := Load()
	assert.ErrorIs(t, err, fs.ErrNotExist)
	require.NotNil(t, AppConfig)

	assert.Equal(t, 15*time.Second, AppConfig.UpstreamTimeout)
	assert.Equal(t, 24*time.Hour, AppConfig.CorpusTTL)
	assert.Equal(t, []string{"tourist", "jiangly", "orzdevinwang", "demoralizer", "Priyansh31dec"}, AppConfig.ReferenceHandles)
	assert.Contains(t, AppConfig.DBConnStr, "sslmode=")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("REFERENCE_HANDLES", " tourist , ,jiangly")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REFERENCE_FETCH_CONCURRENCY", "not-a-number")
	_ = Load()

	assert.Equal(t, 3*time.Second, AppConfig.UpstreamTimeout)
	assert.Equal(t, []string{"tourist", "jiangly"}, AppConfig.ReferenceHandles)
	assert.Equal(t, 2, AppConfig.RedisDB)
	assert.Equal(t, 3, AppConfig.ReferenceFetchConcurrency)
}
