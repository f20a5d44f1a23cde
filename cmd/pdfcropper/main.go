// Command pdfcropper serves the cropper HTTP API and runs the same jobs from the shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/config"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/crop"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "pdfcropper",
	Short:         "Crop shipping labels out of marketplace PDFs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")
	rootCmd.AddCommand(serveCmd, cropCmd, presetsCmd, inspectCmd, mergeCmd, rearrangeCmd, labelCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// setup loads configuration and the preset registry shared by every subcommand
func setup() (config.Config, *logrus.Logger, *crop.Registry, error) {
	cfg := config.Load(envFile)
	if err := cfg.Validate(); err != nil {
		return cfg, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := cfg.NewLogger()

	presets, err := crop.NewRegistry(crop.WithLogger(log))
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("load presets: %w", err)
	}
	if cfg.PresetsFile != "" {
		if err := presets.LoadFile(cfg.PresetsFile); err != nil {
			return cfg, nil, nil, fmt.Errorf("load %s: %w", cfg.PresetsFile, err)
		}
		log.WithField("file", cfg.PresetsFile).Info("presets overlay loaded")
	}
	return cfg, log, presets, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, presets, err := setup()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	return server.New(cfg, presets, log).Run(cmd.Context())
}
