// Package config loads service settings from an optional YAML file and the
// environment.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Model   ModelConfig   `mapstructure:"model"`
	Source  SourceConfig  `mapstructure:"source"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ModelConfig selects the variant and where its artifacts live. Zero
// sizes and an empty preprocessing mode keep the variant defaults.
type ModelConfig struct {
	Variant        string `mapstructure:"variant"`
	Path           string `mapstructure:"path"`
	LabelsFile     string `mapstructure:"labels_file"`
	Preprocessing  string `mapstructure:"preprocessing"`
	InputWidth     int    `mapstructure:"input_width"`
	InputHeight    int    `mapstructure:"input_height"`
	Outputs        int    `mapstructure:"outputs"`
	InputName      string `mapstructure:"input_name"`
	OutputName     string `mapstructure:"output_name"`
	RuntimeLibrary string `mapstructure:"runtime_library"`
	MaxPixels      int64  `mapstructure:"max_pixels"`
}

const (
	SourceHuggingFace = "huggingface"
	SourceMinio       = "minio"
	SourceNone        = "none"
)

// SourceConfig names the remote repository used when the cache is empty.
type SourceConfig struct {
	Kind        string            `mapstructure:"kind"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
	Minio       MinioConfig       `mapstructure:"minio"`
}

type HuggingFaceConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	RepoID     string        `mapstructure:"repo_id"`
	Revision   string        `mapstructure:"revision"`
	Filename   string        `mapstructure:"filename"`
	Token      string        `mapstructure:"token"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
}

type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Object          string `mapstructure:"object"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server.mode %q", c.Server.Mode)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}

	if strings.TrimSpace(c.Model.Path) == "" {
		return fmt.Errorf("model.path is required")
	}
	if strings.TrimSpace(c.Model.Variant) == "" {
		return fmt.Errorf("model.variant is required")
	}
	if c.Model.InputWidth < 0 || c.Model.InputHeight < 0 || c.Model.Outputs < 0 || c.Model.MaxPixels < 0 {
		return fmt.Errorf("model sizes must not be negative")
	}

	switch c.Source.Kind {
	case SourceHuggingFace, SourceNone:
	case SourceMinio:
		if c.Source.Minio.Endpoint == "" || c.Source.Minio.Bucket == "" || c.Source.Minio.Object == "" {
			return fmt.Errorf("source.minio requires endpoint, bucket and object")
		}
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}
	if c.Source.HuggingFace.RetryCount < 0 {
		return fmt.Errorf("source.huggingface.retry_count must not be negative")
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings must not be negative")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}
	return nil
}
