package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/face-recognition/internal/embedding"
	"github.com/kozaktomas/face-recognition/internal/extractor"
	"github.com/kozaktomas/face-recognition/internal/facematch"
	"github.com/kozaktomas/face-recognition/internal/imagedata"
	"github.com/kozaktomas/face-recognition/internal/observe"
)

const (
	msgNotJSON           = "Request must be JSON"
	msgInvalidJSON       = "Invalid JSON data"
	msgImageRequired     = "Image is required"
	msgVerifyRequired    = "Image and stored_embedding are required"
	msgCompareRequired   = "Image and stored_embeddings array are required"
	msgStoredNotList     = "stored_embedding must be a list"
	msgStoredNotNumbers  = "stored_embedding must contain only numbers"
	msgCandidatesInvalid = "stored_embeddings must be a list of lists of numbers"
	msgRegisterNoFace    = "Face not detected or multiple faces detected. Please ensure exactly one face is visible."
	msgRegistered        = "Face registered successfully"
	msgBodyTooLarge      = "request body too large"
)

// RegisterRequest represents a face registration request
type RegisterRequest struct {
	Image string `json:"image"`
}

// RegisterResponse represents a face registration response
type RegisterResponse struct {
	Embedding embedding.Embedding `json:"embedding"`
	Message   string              `json:"message"`
}

// VerifyRequest represents a single-pair verification request
type VerifyRequest struct {
	Image           string              `json:"image"`
	StoredEmbedding embedding.Embedding `json:"stored_embedding"`
}

// VerifyResponse represents a verification response.
// Error carries the explanatory note when no usable face was found.
type VerifyResponse struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
	Distance   float64 `json:"distance"`
	Threshold  float64 `json:"threshold,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// CompareRequest represents a multi-candidate comparison request
type CompareRequest struct {
	Image            string                `json:"image"`
	StoredEmbeddings []embedding.Embedding `json:"stored_embeddings"`
}

// CompareResponse represents a comparison response. BestMatchIndex is null when nothing was compared.
type CompareResponse struct {
	Match          bool    `json:"match"`
	BestMatchIndex *int    `json:"best_match_index"`
	Confidence     float64 `json:"confidence"`
	Distance       float64 `json:"distance"`
	Error          string  `json:"error,omitempty"`
}

// FacesHandler handles face registration and verification endpoints
type FacesHandler struct {
	detector extractor.Detector
	metrics  *observe.Metrics
}

// NewFacesHandler creates a new faces handler. The detector is shared by all requests.
func NewFacesHandler(detector extractor.Detector, metrics *observe.Metrics) *FacesHandler {
	return &FacesHandler{
		detector: detector,
		metrics:  metrics,
	}
}

// Register extracts the embedding of the single face in the image.
func (h *FacesHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseRegisterRequest(r)
	if err != nil {
		h.fail(w, r, "register", err, false)
		return
	}

	detection, err := h.extract(ctx, req.Image)
	if err != nil {
		h.fail(w, r, "register", err, false)
		return
	}

	single, ok := detection.(embedding.SingleFace)
	if !ok {
		slog.InfoContext(ctx, "face registration rejected", "faces", detection.FaceCount())
		h.metrics.RecordDecision(ctx, "register", observe.OutcomeNoFace, 0)
		respondError(w, http.StatusBadRequest, msgRegisterNoFace)
		return
	}

	slog.InfoContext(ctx, "face registered", "dim", single.Embedding.Dim())
	h.metrics.RecordDecision(ctx, "register", observe.OutcomeRegistered, 0)
	respondJSON(w, http.StatusOK, RegisterResponse{
		Embedding: single.Embedding,
		Message:   msgRegistered,
	})
}

// Verify compares the face in the image with one stored embedding.
func (h *FacesHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseVerifyRequest(r)
	if err != nil {
		h.fail(w, r, "verify", err, true)
		return
	}

	detection, err := h.extract(ctx, req.Image)
	if err != nil {
		h.fail(w, r, "verify", err, true)
		return
	}

	result, err := facematch.Verify(detection, req.StoredEmbedding)
	if err != nil {
		h.fail(w, r, "verify", err, true)
		return
	}

	if !result.Usable() {
		slog.InfoContext(ctx, "face verification without usable face", "faces", result.FaceCount)
		h.metrics.RecordDecision(ctx, "verify", observe.OutcomeNoFace, result.Distance)
		respondJSON(w, http.StatusOK, VerifyResponse{
			Match:      result.Match,
			Confidence: result.Confidence,
			Distance:   result.Distance,
			Error:      result.Note,
		})
		return
	}

	slog.InfoContext(ctx, "face verification",
		"distance", result.Distance,
		"match", result.Match,
		"confidence", result.Confidence,
		"threshold", result.Threshold,
	)
	h.metrics.RecordDecision(ctx, "verify", observe.Outcome(result.Match), result.Distance)
	respondJSON(w, http.StatusOK, VerifyResponse{
		Match:      result.Match,
		Confidence: result.Confidence,
		Distance:   result.Distance,
		Threshold:  result.Threshold,
	})
}

// Compare finds the stored embedding closest to the face in the image.
func (h *FacesHandler) Compare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseCompareRequest(r)
	if err != nil {
		h.fail(w, r, "compare", err, true)
		return
	}

	detection, err := h.extract(ctx, req.Image)
	if err != nil {
		h.fail(w, r, "compare", err, true)
		return
	}

	result, err := facematch.BestMatch(detection, req.StoredEmbeddings)
	if err != nil {
		h.fail(w, r, "compare", err, true)
		return
	}

	resp := CompareResponse{
		Match:          result.Match,
		BestMatchIndex: result.BestMatchIndex,
		Confidence:     result.Confidence,
		Distance:       result.Distance,
		Error:          result.Note,
	}

	switch {
	case !result.Usable():
		slog.InfoContext(ctx, "face comparison without usable face", "faces", result.FaceCount)
		h.metrics.RecordDecision(ctx, "compare", observe.OutcomeNoFace, result.Distance)
	case result.BestMatchIndex == nil:
		slog.InfoContext(ctx, "face comparison without candidates")
		h.metrics.RecordDecision(ctx, "compare", observe.OutcomeNoMatch, result.Distance)
	default:
		slog.InfoContext(ctx, "face comparison",
			"candidates", len(req.StoredEmbeddings),
			"best_match_index", *result.BestMatchIndex,
			"distance", result.Distance,
			"match", result.Match,
		)
		h.metrics.RecordDecision(ctx, "compare", observe.Outcome(result.Match), result.Distance)
	}

	respondJSON(w, http.StatusOK, resp)
}

// extract decodes the image payload and runs the shared detector on it.
func (h *FacesHandler) extract(ctx context.Context, payload string) (embedding.Detection, error) {
	img, err := imagedata.FromBase64(payload)
	if err != nil {
		return nil, err
	}
	return h.detect(ctx, img)
}

func (h *FacesHandler) detect(ctx context.Context, img image.Image) (embedding.Detection, error) {
	start := time.Now()
	detection, err := extractor.Extract(ctx, h.detector, img)
	h.metrics.RecordExtraction(ctx, h.detector.Name(), time.Since(start).Seconds())
	return detection, err
}

// fail answers err by its kind: client input problems get 400, everything else 500.
// Decision endpoints include safe-default match/confidence/distance fields.
func (h *FacesHandler) fail(w http.ResponseWriter, r *http.Request, operation string, err error, decision bool) {
	status := http.StatusInternalServerError
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		status = http.StatusBadRequest
	} else {
		slog.ErrorContext(r.Context(), "face request failed", "operation", operation, "error", err)
		h.metrics.RecordDecision(r.Context(), operation, observe.OutcomeError, 0)
	}

	if decision {
		respondDecisionError(w, status, err.Error())
		return
	}
	respondError(w, status, err.Error())
}

// requireJSON rejects requests whose Content-Type is not JSON.
func requireJSON(r *http.Request) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return badRequest(msgNotJSON)
	}
	if mediaType != "application/json" && !strings.HasSuffix(mediaType, "+json") {
		return badRequest(msgNotJSON)
	}
	return nil
}

// decodeFields reads the body as a JSON object, keeping values raw so
// missing fields and wrong types can be told apart.
func decodeFields(r *http.Request) (map[string]json.RawMessage, error) {
	if err := requireJSON(r); err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, badRequest(msgBodyTooLarge)
		}
		return nil, badRequest(errInvalidRequestBody)
	}
	if fields == nil {
		return nil, badRequest(msgInvalidJSON)
	}
	return fields, nil
}

// present reports whether a field exists and is not null.
func present(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// isJSONArray reports whether a raw value is a JSON array.
func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// imageField extracts the image payload, which must be a non-empty string.
func imageField(fields map[string]json.RawMessage, missing string) (string, error) {
	var payload string
	if err := json.Unmarshal(fields["image"], &payload); err != nil {
		return "", badRequest("image must be a string")
	}
	if strings.TrimSpace(payload) == "" {
		return "", badRequest(missing)
	}
	return payload, nil
}

func parseRegisterRequest(r *http.Request) (*RegisterRequest, error) {
	fields, err := decodeFields(r)
	if err != nil {
		return nil, err
	}
	if !present(fields, "image") {
		return nil, badRequest(msgImageRequired)
	}

	payload, err := imageField(fields, msgImageRequired)
	if err != nil {
		return nil, err
	}
	return &RegisterRequest{Image: payload}, nil
}

func parseVerifyRequest(r *http.Request) (*VerifyRequest, error) {
	fields, err := decodeFields(r)
	if err != nil {
		return nil, err
	}
	if !present(fields, "image") || !present(fields, "stored_embedding") {
		return nil, badRequest(msgVerifyRequired)
	}

	raw := fields["stored_embedding"]
	if !isJSONArray(raw) {
		return nil, badRequest(msgStoredNotList)
	}
	var values []*float64
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, badRequest(msgStoredNotNumbers)
	}
	stored, ok := toEmbedding(values)
	if !ok {
		return nil, badRequest(msgStoredNotNumbers)
	}

	payload, err := imageField(fields, msgVerifyRequired)
	if err != nil {
		return nil, err
	}
	return &VerifyRequest{Image: payload, StoredEmbedding: stored}, nil
}

func parseCompareRequest(r *http.Request) (*CompareRequest, error) {
	fields, err := decodeFields(r)
	if err != nil {
		return nil, err
	}
	if !present(fields, "image") || !present(fields, "stored_embeddings") {
		return nil, badRequest(msgCompareRequired)
	}

	var candidates [][]*float64
	if err := json.Unmarshal(fields["stored_embeddings"], &candidates); err != nil {
		return nil, badRequest(msgCandidatesInvalid)
	}
	stored := make([]embedding.Embedding, len(candidates))
	for i, candidate := range candidates {
		e, ok := toEmbedding(candidate)
		if !ok {
			return nil, badRequest(msgCandidatesInvalid)
		}
		stored[i] = e
	}

	payload, err := imageField(fields, msgCompareRequired)
	if err != nil {
		return nil, err
	}
	return &CompareRequest{Image: payload, StoredEmbeddings: stored}, nil
}

// toEmbedding rejects null arrays and null elements, which json.Unmarshal
// would otherwise read as zeros.
func toEmbedding(values []*float64) (embedding.Embedding, bool) {
	if values == nil {
		return nil, false
	}
	e := make(embedding.Embedding, len(values))
	for i, v := range values {
		if v == nil {
			return nil, false
		}
		e[i] = *v
	}
	return e, true
}
