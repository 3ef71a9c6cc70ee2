package recognizer

import (
	"fmt"
	"math"

	"github.com/andresmejia3/facelog/internal/gallery"
	"github.com/andresmejia3/facelog/internal/types"
)

// DefaultThreshold is the largest encoding distance still accepted as a match.
const DefaultThreshold = 0.4

// Distance returns the Euclidean distance between two encodings.
// Vectors of different or zero length are infinitely far apart.
func Distance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.MaxFloat64
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Matcher picks the nearest gallery entry for an encoding.
type Matcher struct {
	Threshold float64
}

// Best compares vec against every entry and returns the closest one. The first
// minimum wins ties. The match is Known only when the distance is strictly
// below the threshold. An empty gallery yields an Unknown match with Index -1.
func (m Matcher) Best(vec []float64, entries []types.GalleryEntry) types.Match {
	best := types.Match{Name: types.UnknownName, Distance: math.Inf(1), Index: -1}

	for i, e := range entries {
		dist := Distance(vec, e.Vec)
		if dist < best.Distance {
			best.Distance = dist
			best.Index = i
		}
	}

	if best.Index >= 0 && best.Distance < m.Threshold {
		best.Name = entries[best.Index].Name
		best.Known = true
	}
	return best
}

// Recognizer finds faces in a frame and labels them against a gallery.
type Recognizer struct {
	Engine  types.Engine
	Gallery *gallery.Gallery
	Matcher Matcher
}

// New returns a Recognizer with the given threshold.
func New(engine types.Engine, g *gallery.Gallery, threshold float64) *Recognizer {
	return &Recognizer{Engine: engine, Gallery: g, Matcher: Matcher{Threshold: threshold}}
}

// Recognize detects every face in a JPEG frame and labels each one.
func (r *Recognizer) Recognize(jpeg []byte) ([]types.LabeledFace, error) {
	faces, err := r.Engine.ProcessFrame(jpeg)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	var entries []types.GalleryEntry
	if r.Gallery != nil {
		entries = r.Gallery.Entries()
	}

	labeled := make([]types.LabeledFace, 0, len(faces))
	for _, f := range faces {
		labeled = append(labeled, types.LabeledFace{
			Face:  f,
			Match: r.Matcher.Best(f.Vec, entries),
		})
	}
	return labeled, nil
}
