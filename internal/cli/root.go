// Package cli defines the vision-api command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          "vision-api",
		Short:        "Image classification service backed by an ONNX model",
		Long:         "Image classification service backed by an ONNX model.\nWithout a subcommand it behaves like serve.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfgFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (environment variables override it)")

	root.AddCommand(
		newServeCmd(&cfgFile),
		newFetchModelCmd(&cfgFile),
	)
	return root
}
