package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/andresmejia3/facelog/internal/attendance"
	"github.com/andresmejia3/facelog/internal/browser"
	"github.com/andresmejia3/facelog/internal/types"
)

// QuitKey ends the session when pressed in the display window.
const QuitKey = 'q'

// State is a step in the session lifecycle.
type State int

const (
	StateInit State = iota
	StateRunning
	StateTerminating
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Camera yields frames until it fails or is closed.
type Camera interface {
	Read() (types.Frame, error)
	Close() error
}

// Display shows annotated frames and reports key presses.
type Display interface {
	Render(frame types.Frame, faces []types.LabeledFace) error
	// PollKey waits up to delay milliseconds and returns the key pressed, or -1.
	PollKey(delay int) int
	Close() error
}

// Recognizer labels the faces in a downsampled JPEG frame.
type Recognizer interface {
	Recognize(jpeg []byte) ([]types.LabeledFace, error)
}

// Options tunes a session.
type Options struct {
	Scale      int    // downsample factor before recognition
	Every      int    // recognize one frame out of Every
	Archive    bool   // move the log into ArchiveDir on quit
	ArchiveDir string // archive destination
	Browse     bool   // print the archive tree after archiving

	Status io.Writer // progress messages, usually stderr
	Out    io.Writer // archive tree, usually stdout

	Now func() time.Time
}

// Stats summarises a session.
type Stats struct {
	Frames    int
	Processed int
	Logged    []string
}

// Session owns everything one run needs. The gallery lives inside the
// recognizer and is never modified; the session log set lives in the logger
// and only Step adds to it.
type Session struct {
	ID          string
	ArchivePath string // set once the log has been archived

	camera     Camera
	display    Display
	recognizer Recognizer
	logger     *attendance.Logger
	sampler    Sampler
	opts       Options

	state     State
	frames    int
	processed int
	last      []types.LabeledFace
	startedAt time.Time
}

// New creates a session in the init state.
func New(id string, cam Camera, disp Display, rec Recognizer, logger *attendance.Logger, opts Options) *Session {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.Status == nil {
		opts.Status = io.Discard
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ArchiveDir == "" {
		opts.ArchiveDir = attendance.DefaultArchiveDir
	}

	return &Session{
		ID:         id,
		camera:     cam,
		display:    disp,
		recognizer: rec,
		logger:     logger,
		sampler:    Sampler{Every: opts.Every},
		opts:       opts,
		state:      StateInit,
	}
}

// State returns where the session is in its lifecycle.
func (s *Session) State() State { return s.state }

// StartedAt is when Run began; zero before that.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Stats returns counters for the frames seen so far.
func (s *Session) Stats() Stats {
	return Stats{Frames: s.frames, Processed: s.processed, Logged: s.logger.Logged()}
}

// Step handles one captured frame. Sampled frames are downsampled and
// recognized and first sightings are logged; other frames reuse the labels
// of the last processed frame. It returns the faces to draw.
func (s *Session) Step(ctx context.Context, frame types.Frame) ([]types.LabeledFace, error) {
	index := s.frames
	s.frames++

	if !s.sampler.ShouldProcess(index) {
		return s.last, nil
	}
	s.processed++

	small, err := frame.Downsample(s.opts.Scale)
	if err != nil {
		return nil, fmt.Errorf("downsample frame %d: %w", index, err)
	}

	faces, err := s.recognizer.Recognize(small)
	if err != nil {
		return nil, fmt.Errorf("recognize frame %d: %w", index, err)
	}

	for _, f := range faces {
		if !f.Match.Known {
			continue
		}
		wrote, err := s.logger.Log(ctx, f.Match.Name, s.opts.Now())
		if err != nil && !wrote {
			return nil, err
		}
		if err != nil {
			fmt.Fprintf(s.opts.Status, "⚠️  %v\n", err)
		}
		if wrote {
			fmt.Fprintf(s.opts.Status, "✅ %s checked in (distance %.3f)\n", f.Match.Name, f.Match.Distance)
		}
	}

	s.last = faces
	return faces, nil
}

// Run reads, recognizes and shows frames until the quit key is pressed or ctx
// is cancelled. Both count as a normal quit. Any other failure is fatal and
// returned after the camera and window have been released.
func (s *Session) Run(ctx context.Context) (err error) {
	if s.state != StateInit {
		return fmt.Errorf("session is %s, expected %s", s.state, StateInit)
	}
	s.state = StateRunning
	s.startedAt = s.opts.Now()

	quit := false
	defer func() {
		if termErr := s.terminate(quit); err == nil {
			err = termErr
		}
	}()

	for {
		if ctx.Err() != nil {
			quit = true
			return nil
		}

		frame, err := s.camera.Read()
		if err != nil {
			return err
		}

		faces, err := s.Step(ctx, frame)
		if err == nil {
			err = s.display.Render(frame, faces)
		}
		frame.Close()
		if err != nil {
			return err
		}

		if key := s.display.PollKey(1); key >= 0 && key&0xFF == QuitKey {
			quit = true
			return nil
		}
	}
}

// terminate releases the camera and window, then archives on a normal quit.
func (s *Session) terminate(archive bool) error {
	s.state = StateTerminating
	defer func() { s.state = StateTerminated }()

	camErr := s.camera.Close()
	dispErr := s.display.Close()

	if archive && s.opts.Archive {
		dest, err := attendance.Archive(s.logger.Path, s.opts.ArchiveDir, s.startedAt, s.opts.Now())
		if err != nil {
			return fmt.Errorf("archive log: %w", err)
		}
		s.ArchivePath = dest
		fmt.Fprintf(s.opts.Status, "📦 Log archived to %s\n", dest)

		if s.opts.Browse {
			if err := browser.Print(s.opts.Out, s.opts.ArchiveDir); err != nil {
				return fmt.Errorf("browse archive: %w", err)
			}
		}
	}

	if camErr != nil {
		return fmt.Errorf("release camera: %w", camErr)
	}
	if dispErr != nil {
		return fmt.Errorf("close window: %w", dispErr)
	}
	return nil
}
