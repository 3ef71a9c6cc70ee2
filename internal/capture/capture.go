// Package capture reads frames from a camera and shows annotated frames in a
// window, both through OpenCV.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/andresmejia3/facelog/internal/overlay"
	"github.com/andresmejia3/facelog/internal/types"
	"gocv.io/x/gocv"
)

// ErrCameraUnavailable is returned when the capture device cannot be opened.
var ErrCameraUnavailable = errors.New("camera unavailable")

// ErrEndOfStream is returned when the device stops producing frames.
var ErrEndOfStream = errors.New("camera returned no frame")

// Camera wraps an OpenCV video capture.
type Camera struct {
	Device string
	vc     *gocv.VideoCapture
}

// OpenCamera opens a device index ("0") or a file/stream URL.
func OpenCamera(device string) (*Camera, error) {
	var src interface{} = device
	if id, err := strconv.Atoi(device); err == nil {
		src = id
	}

	vc, err := gocv.OpenVideoCapture(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCameraUnavailable, device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrCameraUnavailable, device)
	}
	return &Camera{Device: device, vc: vc}, nil
}

// Read blocks until the next frame is available.
func (c *Camera) Read() (types.Frame, error) {
	mat := gocv.NewMat()
	if ok := c.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("%w: %s", ErrEndOfStream, c.Device)
	}
	return &Frame{Mat: mat}, nil
}

// Close releases the device.
func (c *Camera) Close() error {
	return c.vc.Close()
}

// Frame is a BGR frame owned by the caller until Close.
type Frame struct {
	Mat gocv.Mat
}

// Downsample shrinks the frame by 1/factor and encodes it as JPEG.
func (f *Frame) Downsample(factor int) ([]byte, error) {
	src := f.Mat
	if factor > 1 {
		small := gocv.NewMat()
		defer small.Close()
		scale := 1 / float64(factor)
		gocv.Resize(f.Mat, &small, image.Point{}, scale, scale, gocv.InterpolationLinear)
		src = small
	}

	// IMEncode takes care of BGR ordering, the engine gets a regular JPEG
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, src)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Close frees the frame's memory.
func (f *Frame) Close() error {
	return f.Mat.Close()
}

var (
	red   = color.RGBA{R: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Window is an OpenCV display window that draws face boxes and names.
type Window struct {
	Scale int // factor the face boxes were downsampled by
	win   *gocv.Window
}

// NewWindow opens a display window.
func NewWindow(title string, scale int) *Window {
	return &Window{Scale: scale, win: gocv.NewWindow(title)}
}

// Render draws the faces onto the frame and shows it.
func (w *Window) Render(frame types.Frame, faces []types.LabeledFace) error {
	f, ok := frame.(*Frame)
	if !ok {
		return fmt.Errorf("unsupported frame type %T", frame)
	}

	for _, it := range overlay.Layout(faces, w.Scale) {
		gocv.Rectangle(&f.Mat, it.Box, red, 2)
		gocv.Rectangle(&f.Mat, it.Strip, red, -1)
		gocv.PutText(&f.Mat, it.Label, it.Text, gocv.FontHersheyDuplex, 1.0, white, 1)
	}

	w.win.IMShow(f.Mat)
	return nil
}

// PollKey waits up to delay ms for a key press and returns it, or -1.
func (w *Window) PollKey(delay int) int {
	return w.win.WaitKey(delay)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
