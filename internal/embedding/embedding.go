// Package embedding defines face embeddings, the distance between them and
// the classification of a detector's output into a usable probe.
package embedding

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two embeddings of different length are compared.
// Both sides must come from the same model, so this is never a client error.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedding is a fixed-length face descriptor produced by the extractor.
type Embedding []float64

// FromFloat32 converts a float32 descriptor (as returned by dlib and the embedding server).
func FromFloat32(v []float32) Embedding {
	e := make(Embedding, len(v))
	for i, x := range v {
		e[i] = float64(x)
	}
	return e
}

// Dim returns the number of components.
func (e Embedding) Dim() int {
	return len(e)
}

// Distance computes the Euclidean (L2) distance between two embeddings.
// Returns 0 for identical vectors; larger values mean less similar faces.
func Distance(a, b Embedding) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}

// Distances computes the distance from probe to every candidate, preserving order.
func Distances(probe Embedding, candidates []Embedding) ([]float64, error) {
	distances := make([]float64, len(candidates))
	for i, c := range candidates {
		d, err := Distance(probe, c)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		distances[i] = d
	}
	return distances, nil
}
