package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kozaktomas/face-recognition/internal/constants"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// fallbackBody is written when the real response cannot be encoded.
const fallbackBody = `{"error":"Internal server error","match":false,"confidence":0,"distance":1}`

// requestError is a client input problem. Handlers answer it with 400 and never
// run the extractor.
type requestError struct {
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(message string) error {
	return &requestError{message: message}
}

// respondJSON sends a JSON response.
// The body is marshaled before anything is written, so an encoding failure
// still produces valid JSON with the right content type.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if data == nil {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallbackBody + "\n"))
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decisionError is the error shape for the verify and compare endpoints.
// The safe defaults let callers read match/confidence/distance without null checks.
type decisionError struct {
	Error      string  `json:"error"`
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
	Distance   float64 `json:"distance"`
}

// respondDecisionError sends an error response carrying safe-default decision fields.
func respondDecisionError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, decisionError{
		Error:      message,
		Match:      false,
		Confidence: constants.SentinelConfidence,
		Distance:   constants.SentinelDistance,
	})
}
