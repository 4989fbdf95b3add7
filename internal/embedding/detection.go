package embedding

// Detection is the outcome of running face detection on one image.
// It is either a SingleFace or a NoUsableFace; no other implementations exist.
type Detection interface {
	// FaceCount is the number of faces the detector reported.
	FaceCount() int
	detection()
}

// SingleFace means exactly one face was found and its embedding is usable.
type SingleFace struct {
	Embedding Embedding
}

// NoUsableFace means zero or several faces were found. Count is kept for diagnostics.
type NoUsableFace struct {
	Count int
}

func (SingleFace) FaceCount() int     { return 1 }
func (SingleFace) detection()         {}
func (n NoUsableFace) FaceCount() int { return n.Count }
func (NoUsableFace) detection()       {}

// Classify turns the raw per-face list from a detector into a Detection.
func Classify(faces []Embedding) Detection {
	if len(faces) != 1 {
		return NoUsableFace{Count: len(faces)}
	}
	return SingleFace{Embedding: faces[0]}
}
