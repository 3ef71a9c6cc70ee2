package types

import "time"

// UnknownName is the label given to faces that match no gallery entry.
const UnknownName = "Unknown"

// EncodingDim is the length of a dlib face descriptor.
const EncodingDim = 128

// Box is a face bounding box in the pixel space of the image it was found in.
type Box struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Scale maps a box found in a downsampled image back to the full frame.
func (b Box) Scale(factor int) Box {
	return Box{
		Top:    b.Top * factor,
		Right:  b.Right * factor,
		Bottom: b.Bottom * factor,
		Left:   b.Left * factor,
	}
}

// FaceResult is a face found by the engine: where it is and its encoding.
type FaceResult struct {
	Loc Box       `json:"loc"`
	Vec []float64 `json:"vec"` // 128-d face encoding
}

// GalleryEntry is one known person.
type GalleryEntry struct {
	Name string
	Vec  []float64
}

// Match is the outcome of comparing one encoding against the gallery.
// Index is -1 when the gallery was empty.
type Match struct {
	Name     string
	Distance float64
	Known    bool
	Index    int
}

// LabeledFace pairs a detected face with its gallery match.
type LabeledFace struct {
	Face  FaceResult
	Match Match
}

// Record is one attendance row.
type Record struct {
	Name string
	Time time.Time
}

// Engine detects faces in a JPEG image and encodes each of them.
type Engine interface {
	ProcessFrame(jpeg []byte) ([]FaceResult, error)
}

// Frame is a single captured video frame.
type Frame interface {
	// Downsample shrinks the frame by 1/factor and returns it JPEG encoded.
	Downsample(factor int) ([]byte, error)
	Close() error
}
