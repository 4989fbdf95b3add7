package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kozaktomas/face-recognition/internal/config"
	"github.com/kozaktomas/face-recognition/internal/embedding"
	"github.com/kozaktomas/face-recognition/internal/extractor"
	"github.com/kozaktomas/face-recognition/internal/facematch"
	"github.com/kozaktomas/face-recognition/internal/imagedata"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a local image against stored embeddings",
	Long: `Verify the face in a local image against a stored embedding, or find the
best match among several.

--embedding takes a JSON file holding one embedding (a list of numbers).
--candidates takes a JSON file holding a list of embeddings.

Examples:
  face-recognition verify --image live.jpg --embedding alice.json
  face-recognition verify --image live.jpg --candidates team.json`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("image", "", "Image file to verify (required)")
	verifyCmd.Flags().String("embedding", "", "JSON file with a single stored embedding")
	verifyCmd.Flags().String("candidates", "", "JSON file with a list of stored embeddings")
	_ = verifyCmd.MarkFlagRequired("image")
	verifyCmd.MarkFlagsMutuallyExclusive("embedding", "candidates")
	verifyCmd.MarkFlagsOneRequired("embedding", "candidates")
}

func runVerify(cmd *cobra.Command, args []string) error {
	imagePath := mustGetString(cmd, "image")
	embeddingPath := mustGetString(cmd, "embedding")
	candidatesPath := mustGetString(cmd, "candidates")

	cfg := config.Load()
	applyExtractorFlags(cmd, cfg)
	newLogger(cfg.Log.Level)

	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	img, _, err := imagedata.Decode(raw)
	if err != nil {
		return err
	}

	detector, release, err := openDetector(cfg)
	if err != nil {
		return err
	}
	defer release()

	detection, err := extractor.Extract(cmd.Context(), detector, img)
	if err != nil {
		return err
	}

	var result any
	if embeddingPath != "" {
		var stored embedding.Embedding
		if err := readJSONFile(embeddingPath, &stored); err != nil {
			return err
		}
		result, err = facematch.Verify(detection, stored)
	} else {
		var stored []embedding.Embedding
		if err := readJSONFile(candidatesPath, &stored); err != nil {
			return err
		}
		result, err = facematch.BestMatch(detection, stored)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

var errEmptyEmbeddingFile = errors.New("embedding file holds no data")

func readJSONFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%s: %w", path, errEmptyEmbeddingFile)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
