package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Brownie44l1/vision-api/internal/config"
	"github.com/Brownie44l1/vision-api/internal/handlers"
	"github.com/Brownie44l1/vision-api/internal/logger"
	"github.com/Brownie44l1/vision-api/internal/metrics"
	"github.com/Brownie44l1/vision-api/internal/model"
	"github.com/Brownie44l1/vision-api/internal/server"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the model and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *cfgFile)
		},
	}
}

// runServe loads configuration and serves until SIGINT or SIGTERM.
func runServe(parent context.Context, cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg, model.ONNXOpener(cfg.Model.RuntimeLibrary), log)
}

func serve(ctx context.Context, cfg *config.Config, open model.Opener, log *zap.Logger) error {
	gin.SetMode(cfg.Server.Mode)

	variant, err := resolveVariant(cfg.Model)
	if err != nil {
		return err
	}
	src, err := newSource(cfg, variant, log)
	if err != nil {
		return err
	}

	classifier := model.NewHandler(ctx, model.Options{
		Variant:    variant,
		ModelPath:  cfg.Model.Path,
		InputName:  cfg.Model.InputName,
		OutputName: cfg.Model.OutputName,
		MaxPixels:  cfg.Model.MaxPixels,
		Labels:     loadLabels(cfg.Model, variant, log),
		Open:       open,
		Source:     src,
		Logger:     log,
	})
	defer func() {
		if err := classifier.Close(); err != nil {
			log.Warn("failed to release model session", zap.Error(err))
		}
	}()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.SetModelLoaded(classifier.IsModelLoaded())
	}

	router := server.NewRouter(server.RouterOptions{
		Handler:     handlers.NewHandler(classifier, m, cfg.Server.MaxUploadBytes, log),
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
		Logger:      log,
	})

	log.Info("starting vision-api",
		zap.String("variant", variant.Name),
		zap.Bool("model_loaded", classifier.IsModelLoaded()),
		zap.String("addr", cfg.Server.Addr()))
	return server.New(cfg.Server, router, log).Run(ctx)
}
