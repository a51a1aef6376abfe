package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, int64(16<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "binary", cfg.Model.Variant)
	assert.Equal(t, "models/cats_vs_dogs.onnx", cfg.Model.Path)
	assert.Equal(t, int64(178_956_970), cfg.Model.MaxPixels)
	assert.Equal(t, SourceHuggingFace, cfg.Source.Kind)
	assert.Equal(t, 3, cfg.Source.HuggingFace.RetryCount)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":5000", cfg.Server.Addr())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  max_upload_bytes: 1024
model:
  variant: fruits
  path: /var/lib/vision/fruits.onnx
source:
  kind: minio
  minio:
    endpoint: localhost:9000
    bucket: models
    object: fruits/model.onnx
log:
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(1024), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "fruits", cfg.Model.Variant)
	assert.Equal(t, SourceMinio, cfg.Source.Kind)
	assert.Equal(t, "fruits/model.onnx", cfg.Source.Minio.Object)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_PrefixedEnv(t *testing.T) {
	t.Setenv("VISION_SERVER_PORT", "9000")
	t.Setenv("VISION_MODEL_VARIANT", "generic")
	t.Setenv("VISION_SOURCE_HUGGINGFACE_TOKEN", "hf_secret")
	t.Setenv("VISION_LOG_COMPRESS", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "generic", cfg.Model.Variant)
	assert.Equal(t, "hf_secret", cfg.Source.HuggingFace.Token)
	assert.False(t, cfg.Log.Compress)
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("MODEL_PATH", "/models/custom.onnx")
	t.Setenv("CLASSES_FILE", "/models/custom.txt")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "logs/app.log")
	t.Setenv("HUGGINGFACE_MODEL_ID", "org/custom")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/models/custom.onnx", cfg.Model.Path)
	assert.Equal(t, "/models/custom.txt", cfg.Model.LabelsFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "logs/app.log", cfg.Log.File)
	assert.Equal(t, "org/custom", cfg.Source.HuggingFace.RepoID)
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("VISION_SERVER_PORT", "9000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown mode", func(c *Config) { c.Server.Mode = "fast" }},
		{"no upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"empty model path", func(c *Config) { c.Model.Path = " " }},
		{"negative size", func(c *Config) { c.Model.InputWidth = -1 }},
		{"negative pixel limit", func(c *Config) { c.Model.MaxPixels = -1 }},
		{"unknown source", func(c *Config) { c.Source.Kind = "s3" }},
		{"minio without object", func(c *Config) { c.Source.Kind = SourceMinio; c.Source.Minio.Endpoint = "localhost:9000" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, valid().Validate())
}
