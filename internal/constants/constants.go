// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Verification thresholds
const (
	// StrictDistanceThreshold is the maximum Euclidean distance (exclusive) for a
	// single-pair verification to count as a match. Stricter than dlib's 0.6.
	StrictDistanceThreshold = 0.45

	// MinConfidenceThreshold is the minimum confidence (inclusive) for a
	// single-pair verification to count as a match.
	MinConfidenceThreshold = 0.55

	// CompareDistanceThreshold is the maximum distance (exclusive) for the best
	// candidate in a multi-candidate comparison. This is dlib's default tolerance.
	CompareDistanceThreshold = 0.6
)

// Sentinel values used when no usable embedding exists
const (
	// SentinelDistance stands in for "maximally dissimilar"
	SentinelDistance = 1.0

	// SentinelConfidence is reported alongside SentinelDistance
	SentinelConfidence = 0.0
)

// Service identity
const (
	// ServiceName is reported by the health endpoint and telemetry
	ServiceName = "face-recognition"
)

// Processing constants
const (
	// DefaultConcurrency is the default number of parallel workers for batch extraction
	DefaultConcurrency = 5

	// JPEGQuality is used when re-encoding decoded images for the extractor
	JPEGQuality = 95
)
