package facematch

import (
	"fmt"

	"github.com/kozaktomas/face-recognition/internal/constants"
	"github.com/kozaktomas/face-recognition/internal/embedding"
)

// Confidence maps a distance to a score in [0, 1]. It is not a probability.
func Confidence(distance float64) float64 {
	return max(0.0, min(1.0, 1-distance))
}

// Verify compares the live detection against a single stored embedding.
// A NoUsableFace detection yields a non-matching result with sentinel values, not an error.
// Mismatched embedding dimensions are returned as an error.
func Verify(live embedding.Detection, stored embedding.Embedding) (VerificationResult, error) {
	single, ok := live.(embedding.SingleFace)
	if !ok {
		return VerificationResult{
			Match:      false,
			Confidence: constants.SentinelConfidence,
			Distance:   constants.SentinelDistance,
			FaceCount:  live.FaceCount(),
			Note:       NoFaceNote,
		}, nil
	}

	distance, err := embedding.Distance(stored, single.Embedding)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("verifying face: %w", err)
	}

	confidence := Confidence(distance)

	// Both conditions are checked on purpose; they differ at float boundaries.
	match := distance < constants.StrictDistanceThreshold && confidence >= constants.MinConfidenceThreshold

	return VerificationResult{
		Match:      match,
		Confidence: confidence,
		Distance:   distance,
		Threshold:  constants.StrictDistanceThreshold,
		FaceCount:  1,
	}, nil
}

// BestMatch finds the stored embedding closest to the live detection.
// Ties go to the earliest candidate. An empty candidate list is valid and never matches.
func BestMatch(live embedding.Detection, stored []embedding.Embedding) (CompareResult, error) {
	single, ok := live.(embedding.SingleFace)
	if !ok {
		return CompareResult{
			Match:      false,
			Confidence: constants.SentinelConfidence,
			Distance:   constants.SentinelDistance,
			FaceCount:  live.FaceCount(),
			Note:       NoFaceNote,
		}, nil
	}

	if len(stored) == 0 {
		return CompareResult{
			Match:      false,
			Confidence: constants.SentinelConfidence,
			Distance:   constants.SentinelDistance,
			FaceCount:  1,
		}, nil
	}

	distances, err := embedding.Distances(single.Embedding, stored)
	if err != nil {
		return CompareResult{}, fmt.Errorf("comparing faces: %w", err)
	}

	bestIndex := 0
	for i, d := range distances {
		if d < distances[bestIndex] {
			bestIndex = i
		}
	}
	minDistance := distances[bestIndex]

	return CompareResult{
		Match:          minDistance < constants.CompareDistanceThreshold,
		BestMatchIndex: &bestIndex,
		Confidence:     Confidence(minDistance),
		Distance:       minDistance,
		FaceCount:      1,
	}, nil
}
