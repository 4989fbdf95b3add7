// Package facematch decides whether a live face matches stored embeddings.
// Both policies are pure functions of their inputs and safe for concurrent use.
package facematch

// NoFaceNote explains a NoUsableFace outcome to the caller.
const NoFaceNote = "Face not detected or multiple faces detected"

// VerificationResult is the outcome of comparing a live face with one stored embedding.
type VerificationResult struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
	Distance   float64 `json:"distance"`
	Threshold  float64 `json:"threshold,omitempty"`
	// FaceCount is the number of faces the extractor reported for the live image
	FaceCount int `json:"face_count"`
	// Note is set when no usable live embedding existed
	Note string `json:"note,omitempty"`
}

// CompareResult is the outcome of searching several stored embeddings for the live face.
type CompareResult struct {
	Match bool `json:"match"`
	// BestMatchIndex is nil when no candidate could be evaluated
	BestMatchIndex *int    `json:"best_match_index"`
	Confidence     float64 `json:"confidence"`
	Distance       float64 `json:"distance"`
	FaceCount      int     `json:"face_count"`
	Note           string  `json:"note,omitempty"`
}

// Usable reports whether a live embedding was available for the decision.
func (r VerificationResult) Usable() bool {
	return r.Note == ""
}

// Usable reports whether a live embedding was available for the decision.
func (r CompareResult) Usable() bool {
	return r.Note == ""
}
