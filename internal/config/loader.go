package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "VISION"

// legacyEnv maps keys to the bare variable names older deployments set.
var legacyEnv = map[string]string{
	"server.port":                "PORT",
	"model.path":                 "MODEL_PATH",
	"model.labels_file":          "CLASSES_FILE",
	"log.level":                  "LOG_LEVEL",
	"log.file":                   "LOG_FILE",
	"source.huggingface.repo_id": "HUGGINGFACE_MODEL_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.max_upload_bytes", 16<<20)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("model.variant", "binary")
	v.SetDefault("model.path", "models/cats_vs_dogs.onnx")
	v.SetDefault("model.labels_file", "models/classes.txt")
	v.SetDefault("model.preprocessing", "")
	v.SetDefault("model.input_width", 0)
	v.SetDefault("model.input_height", 0)
	v.SetDefault("model.outputs", 0)
	v.SetDefault("model.input_name", "input")
	v.SetDefault("model.output_name", "output")
	v.SetDefault("model.runtime_library", "")
	v.SetDefault("model.max_pixels", 178_956_970)

	v.SetDefault("source.kind", SourceHuggingFace)
	v.SetDefault("source.huggingface.base_url", "https://huggingface.co")
	v.SetDefault("source.huggingface.repo_id", "")
	v.SetDefault("source.huggingface.revision", "main")
	v.SetDefault("source.huggingface.filename", "model.onnx")
	v.SetDefault("source.huggingface.token", "")
	v.SetDefault("source.huggingface.timeout", 10*time.Minute)
	v.SetDefault("source.huggingface.retry_count", 3)
	v.SetDefault("source.minio.endpoint", "")
	v.SetDefault("source.minio.access_key_id", "")
	v.SetDefault("source.minio.secret_access_key", "")
	v.SetDefault("source.minio.region", "us-east-1")
	v.SetDefault("source.minio.use_ssl", false)
	v.SetDefault("source.minio.bucket", "models")
	v.SetDefault("source.minio.object", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}
	return v, nil
}

// Load reads the YAML file at path when one is given, applies VISION_*
// and legacy environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	cfg.Source.Kind = strings.ToLower(strings.TrimSpace(cfg.Source.Kind))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
