package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "documents", cfg.Storage.Bucket)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, "http://localhost:8000/api/upload/upload-callback", cfg.Callback.URL)
	assert.Equal(t, "TEMP_ORG", cfg.Callback.OrgID)
	assert.Equal(t, "TEMP_USER", cfg.Callback.UploaderID)
	assert.Equal(t, 4, cfg.Upload.Concurrency)
	assert.Equal(t, 0, cfg.Upload.Retries)
	assert.True(t, cfg.Upload.SkipExisting)
}

func TestLoadFile_OverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
storage:
  endpoint: minio.internal:9000
  bucket: staging-documents
  use_ssl: false
callback:
  url: http://backend.internal/api/upload/upload-callback
  org_id: acme
upload:
  concurrency: 8
  unique_names: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := New()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "minio.internal:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "staging-documents", cfg.Storage.Bucket)
	assert.False(t, cfg.Storage.UseSSL)
	assert.Equal(t, "http://backend.internal/api/upload/upload-callback", cfg.Callback.URL)
	assert.Equal(t, "acme", cfg.Callback.OrgID)
	assert.Equal(t, 8, cfg.Upload.Concurrency)
	assert.True(t, cfg.Upload.UniqueNames)

	// Untouched values keep their defaults
	assert.Equal(t, "TEMP_USER", cfg.Callback.UploaderID)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
}

func TestLoadFile_Environment(t *testing.T) {
	t.Setenv("DOC_UPLOAD_STORAGE_BUCKET", "env-documents")
	t.Setenv("DOC_UPLOAD_CALLBACK_ORG_ID", "env-org")

	cfg := New()
	require.NoError(t, LoadFile(cfg, ""))

	assert.Equal(t, "env-documents", cfg.Storage.Bucket)
	assert.Equal(t, "env-org", cfg.Callback.OrgID)
}

func TestLoadFile_MissingFile(t *testing.T) {
	cfg := New()
	err := LoadFile(cfg, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
