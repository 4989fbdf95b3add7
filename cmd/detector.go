package cmd

import (
	"fmt"
	"log/slog"

	"github.com/kozaktomas/face-recognition/internal/config"
	"github.com/kozaktomas/face-recognition/internal/extractor"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().String("backend", "", "Extractor backend: http or dlib (overrides EXTRACTOR_BACKEND)")
	rootCmd.PersistentFlags().String("extractor-url", "", "Embedding server URL (overrides EXTRACTOR_URL)")
	rootCmd.PersistentFlags().Duration("extractor-timeout", 0, "Embedding server timeout (overrides EXTRACTOR_TIMEOUT)")
	rootCmd.PersistentFlags().String("models-dir", "", "dlib model directory (overrides DLIB_MODELS_DIR)")
}

// applyExtractorFlags copies explicitly set extractor flags over the loaded config.
func applyExtractorFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Extractor.Backend = mustGetString(cmd, "backend")
	}
	if flags.Changed("extractor-url") {
		cfg.Extractor.URL = mustGetString(cmd, "extractor-url")
	}
	if flags.Changed("extractor-timeout") {
		cfg.Extractor.Timeout = mustGetDuration(cmd, "extractor-timeout")
	}
	if flags.Changed("models-dir") {
		cfg.Extractor.ModelsDir = mustGetString(cmd, "models-dir")
	}
}

// openDetector builds the configured extractor once. The returned func releases it.
func openDetector(cfg *config.Config) (extractor.Detector, func(), error) {
	detector, err := extractor.New(
		cfg.Extractor.Backend,
		cfg.Extractor.URL,
		cfg.Extractor.Timeout,
		cfg.Extractor.ModelsDir,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating extractor: %w", err)
	}
	slog.Info("extractor ready", "backend", detector.Name())

	release := func() {
		if c, ok := detector.(interface{ Close() }); ok {
			c.Close()
		}
	}
	return detector, release, nil
}
