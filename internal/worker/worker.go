package worker

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/Kagami/go-face"
	"github.com/andresmejia3/facelog/internal/types"
)

// ErrNoFace is returned by EncodeSingle when the image holds no face.
var ErrNoFace = errors.New("no face detected")

// ErrClosed is returned when a worker is used after Close.
var ErrClosed = errors.New("worker is closed")

// Model files dlib needs; all of them must live in the models directory.
var requiredModels = []string{
	"shape_predictor_5_face_landmarks.dat",
	"dlib_face_recognition_resnet_model_v1.dat",
	"mmod_human_face_detector.dat",
}

// DlibWorker wraps a go-face recognizer. It turns JPEG bytes into boxes and
// 128-d encodings.
type DlibWorker struct {
	ID  int
	CNN bool // use the CNN (mmod) detector instead of HOG

	mu  sync.Mutex
	rec *face.Recognizer
}

// NewDlibWorker loads the dlib models from modelsDir.
func NewDlibWorker(id int, modelsDir string, cnn bool) (*DlibWorker, error) {
	for _, name := range requiredModels {
		if _, err := os.Stat(filepath.Join(modelsDir, name)); err != nil {
			return nil, fmt.Errorf("missing model %s in %s: %w", name, modelsDir, err)
		}
	}

	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("worker %d failed to load models: %w", id, err)
	}

	return &DlibWorker{ID: id, CNN: cnn, rec: rec}, nil
}

// ProcessFrame finds every face in a JPEG image.
func (w *DlibWorker) ProcessFrame(jpeg []byte) ([]types.FaceResult, error) {
	// dlib's recognizer is not safe for concurrent use
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.rec == nil {
		return nil, ErrClosed
	}

	var (
		faces []face.Face
		err   error
	)
	if w.CNN {
		faces, err = w.rec.RecognizeCNN(jpeg)
	} else {
		faces, err = w.rec.Recognize(jpeg)
	}
	if err != nil {
		return nil, fmt.Errorf("dlib worker %d: %w", w.ID, err)
	}

	return toResults(faces), nil
}

// EncodeSingle returns the first face found in a JPEG image.
func (w *DlibWorker) EncodeSingle(jpeg []byte) (types.FaceResult, error) {
	faces, err := w.ProcessFrame(jpeg)
	if err != nil {
		return types.FaceResult{}, err
	}
	if len(faces) == 0 {
		return types.FaceResult{}, ErrNoFace
	}
	return faces[0], nil
}

// Close frees the dlib models. It is safe to call more than once.
func (w *DlibWorker) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rec != nil {
		w.rec.Close()
		w.rec = nil
	}
}

func toResults(faces []face.Face) []types.FaceResult {
	results := make([]types.FaceResult, 0, len(faces))
	for _, f := range faces {
		results = append(results, types.FaceResult{
			Loc: rectToBox(f.Rectangle),
			Vec: descriptorToVec(f.Descriptor),
		})
	}
	return results
}

func rectToBox(r image.Rectangle) types.Box {
	return types.Box{Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y, Left: r.Min.X}
}

func descriptorToVec(d face.Descriptor) []float64 {
	vec := make([]float64, len(d))
	for i, v := range d {
		vec[i] = float64(v)
	}
	return vec
}
