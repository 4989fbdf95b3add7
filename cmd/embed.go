package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/kozaktomas/face-recognition/internal/config"
	"github.com/kozaktomas/face-recognition/internal/constants"
	"github.com/kozaktomas/face-recognition/internal/embedding"
	"github.com/kozaktomas/face-recognition/internal/extractor"
	"github.com/kozaktomas/face-recognition/internal/imagedata"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var embedCmd = &cobra.Command{
	Use:   "embed <image>...",
	Short: "Compute face embeddings for local images",
	Long: `Compute the face embedding of every image file given on the command line.

One JSON object is written per file, in argument order. Files without exactly
one face produce an object with "error" and "faces" instead of "embedding".

Examples:
  # Embed a few photos (5 concurrent workers)
  face-recognition embed alice.jpg bob.png

  # Use different concurrency and write to a file
  face-recognition embed --concurrency 2 --output faces.jsonl photos/*.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().Int("concurrency", constants.DefaultConcurrency, "Number of parallel workers")
	embedCmd.Flags().StringP("output", "o", "", "Write JSON lines to this file instead of stdout")
}

// EmbedResult is one line of embed output
type EmbedResult struct {
	File      string              `json:"file"`
	Embedding embedding.Embedding `json:"embedding,omitempty"`
	Error     string              `json:"error,omitempty"`
	Faces     *int                `json:"faces,omitempty"`
}

func runEmbed(cmd *cobra.Command, args []string) error {
	concurrency := mustGetInt(cmd, "concurrency")
	output := mustGetString(cmd, "output")
	if concurrency < 1 {
		concurrency = 1
	}

	cfg := config.Load()
	applyExtractorFlags(cmd, cfg)
	newLogger(cfg.Log.Level)

	detector, release, err := openDetector(cfg)
	if err != nil {
		return err
	}
	defer release()

	var out io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Computing embeddings"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	results, failed := embedFiles(cmd.Context(), detector, args, concurrency, func() {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	enc := json.NewEncoder(out)
	for _, result := range results {
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("writing result for %s: %w", result.File, err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(args))
	}
	return nil
}

// embedFiles extracts embeddings with at most concurrency files in flight.
// Results keep argument order; per-file failures are reported in the result, not returned.
func embedFiles(ctx context.Context, detector extractor.Detector, files []string, concurrency int, done func()) ([]EmbedResult, int) {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]EmbedResult, len(files))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, file := range files {
		g.Go(func() error {
			defer done()
			results[i] = embedFile(gctx, detector, file)
			if results[i].Error != "" {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, int(failed.Load())
}

func embedFile(ctx context.Context, detector extractor.Detector, file string) EmbedResult {
	result := EmbedResult{File: file}

	raw, err := os.ReadFile(file)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	img, _, err := imagedata.Decode(raw)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	detection, err := extractor.Extract(ctx, detector, img)
	if err != nil {
		slog.Warn("embedding failed", "file", file, "error", err)
		result.Error = err.Error()
		return result
	}

	single, ok := detection.(embedding.SingleFace)
	if !ok {
		count := detection.FaceCount()
		result.Error = "expected exactly one face"
		result.Faces = &count
		return result
	}

	result.Embedding = single.Embedding
	return result
}
