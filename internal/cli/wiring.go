package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Brownie44l1/vision-api/internal/artifact"
	"github.com/Brownie44l1/vision-api/internal/config"
	"github.com/Brownie44l1/vision-api/internal/labels"
	"github.com/Brownie44l1/vision-api/internal/model"
)

// resolveVariant applies configured overrides to the catalogue entry.
func resolveVariant(cfg config.ModelConfig) (model.Variant, error) {
	v, err := model.LookupVariant(cfg.Variant)
	if err != nil {
		return v, err
	}
	if v, err = v.WithPreprocessing(cfg.Preprocessing); err != nil {
		return v, err
	}
	if v, err = v.WithInputSize(cfg.InputWidth, cfg.InputHeight); err != nil {
		return v, err
	}
	return v.WithOutputs(cfg.Outputs)
}

// newSource returns nil when no remote repository applies.
func newSource(cfg *config.Config, v model.Variant, logger *zap.Logger) (artifact.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceNone:
		return nil, nil
	case config.SourceMinio:
		m := cfg.Source.Minio
		return artifact.NewMinio(artifact.MinioConfig{
			Endpoint:        m.Endpoint,
			AccessKeyID:     m.AccessKeyID,
			SecretAccessKey: m.SecretAccessKey,
			Region:          m.Region,
			UseSSL:          m.UseSSL,
			Bucket:          m.Bucket,
			Object:          m.Object,
		})
	case config.SourceHuggingFace:
		hf := cfg.Source.HuggingFace
		repo := hf.RepoID
		if repo == "" {
			repo = v.RepoID
		}
		if repo == "" {
			logger.Warn("no Hugging Face repository for variant, remote fetch disabled", zap.String("variant", v.Name))
			return nil, nil
		}
		return artifact.NewHuggingFace(artifact.HuggingFaceConfig{
			BaseURL:    hf.BaseURL,
			RepoID:     repo,
			Revision:   hf.Revision,
			Filename:   hf.Filename,
			Token:      hf.Token,
			Timeout:    hf.Timeout,
			RetryCount: hf.RetryCount,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

// loadLabels returns the fixed pair for binary variants and the label
// file (or placeholders) otherwise.
func loadLabels(cfg config.ModelConfig, v model.Variant, logger *zap.Logger) *labels.Store {
	if v.Kind == model.KindBinary {
		return labels.New(v.Labels...)
	}
	return labels.Load(cfg.LabelsFile, v.Fallback, logger)
}
