package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Brownie44l1/vision-api/internal/artifact"
	"github.com/Brownie44l1/vision-api/internal/config"
	"github.com/Brownie44l1/vision-api/internal/labels"
	"github.com/Brownie44l1/vision-api/internal/logger"
	"github.com/Brownie44l1/vision-api/internal/model"
)

func newFetchModelCmd(cfgFile *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch-model",
		Short: "Download the model artifact into the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer log.Sync()

			variant, err := resolveVariant(cfg.Model)
			if err != nil {
				return err
			}
			src, err := newSource(cfg, variant, log)
			if err != nil {
				return err
			}
			if src == nil {
				return artifact.ErrNoSource
			}

			if _, err := os.Stat(cfg.Model.Path); err == nil && !force {
				log.Info("model already cached", zap.String("path", cfg.Model.Path))
			} else {
				log.Info("downloading model", zap.String("source", src.String()), zap.String("path", cfg.Model.Path))
				if err := artifact.Fetch(cmd.Context(), src, cfg.Model.Path); err != nil {
					return err
				}
				log.Info("model saved", zap.String("path", cfg.Model.Path))
			}

			if variant.Kind == model.KindBinary && cfg.Model.LabelsFile != "" {
				if err := labels.Write(cfg.Model.LabelsFile, variant.Labels); err != nil {
					return fmt.Errorf("write labels: %w", err)
				}
				log.Info("labels saved", zap.String("path", cfg.Model.LabelsFile), zap.Strings("classes", variant.Labels))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "download even when the cache file exists")
	return cmd
}
