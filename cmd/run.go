package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andresmejia3/facelog/internal/attendance"
	"github.com/andresmejia3/facelog/internal/capture"
	"github.com/andresmejia3/facelog/internal/config"
	"github.com/andresmejia3/facelog/internal/gallery"
	"github.com/andresmejia3/facelog/internal/recognizer"
	"github.com/andresmejia3/facelog/internal/session"
	"github.com/andresmejia3/facelog/internal/store"
	"github.com/andresmejia3/facelog/internal/utils"
	"github.com/andresmejia3/facelog/internal/worker"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// runOpts are the session switches that have no environment counterpart.
type runOpts struct {
	Archive    bool
	Browse     bool
	AllowEmpty bool
	Window     string
}

var runFlags runOpts

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recognize faces from the camera and log first sightings",
	Long: `Opens the camera, recognizes faces against the photos folder and appends
"name,YYYY-MM-DD HH:MM:SS" to the log the first time each person is seen.
Press q in the video window (or Ctrl+C) to stop.`,
	Annotations: map[string]string{dbAnnotation: dbOptional},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c := cfg
		applyFlags(cmd, &c)
		return runSession(cmd.Context(), c, runFlags)
	},
}

func init() {
	addConfigFlags(runCmd)
	addSessionFlags(runCmd)
	runCmd.Flags().BoolVarP(&runFlags.Archive, "archive", "a", false, "Move the log into the archive folder on quit")
	runCmd.Flags().BoolVarP(&runFlags.Browse, "browse", "b", false, "Print the archive folder after archiving")
	runCmd.Flags().BoolVar(&runFlags.AllowEmpty, "allow-empty", false, "Start even if the photos folder has no images")
	runCmd.Flags().StringVar(&runFlags.Window, "window", "Video", "Title of the video window")
	rootCmd.AddCommand(runCmd)
}

// runSession wires the camera, engine, gallery and log into a session and runs it.
func runSession(ctx context.Context, c config.Config, opts runOpts) error {
	if err := c.Validate(); err != nil {
		utils.ShowError("Invalid settings", err)
		return err
	}

	fmt.Fprintln(os.Stderr, "🚀 Starting face engine...")
	engine, err := worker.NewDlibWorker(0, c.ModelsDir, c.CNN)
	if err != nil {
		utils.ShowError("Failed to start face engine", err)
		return err
	}
	defer engine.Close()

	g, err := gallery.Load(c.PhotosDir, engine, gallery.Options{
		MaxImageEdge: c.MaxImageEdge,
		AllowEmpty:   opts.AllowEmpty,
		Progress:     os.Stderr,
	})
	if err != nil {
		utils.ShowError("Failed to load known faces", err)
		return err
	}
	fmt.Fprintf(os.Stderr, "👥 Loaded %d known faces from %s\n", g.Len(), c.PhotosDir)

	cam, err := capture.OpenCamera(c.Device)
	if err != nil {
		utils.ShowError("Failed to open camera", err)
		return err
	}
	win := capture.NewWindow(opts.Window, c.Scale)

	id := uuid.NewString()
	var sink attendance.Sink
	if DB != nil {
		if err := DB.EnsureSession(ctx, id, c.Device, time.Now()); err != nil {
			cam.Close()
			win.Close()
			utils.ShowError("Failed to register session", err)
			return err
		}
		sink = store.SessionSink{Store: DB, SessionID: id}
	}

	logger := attendance.NewLogger(c.LogPath, sink)
	s := session.New(id, cam, win, recognizer.New(engine, g, c.Threshold), logger, session.Options{
		Scale:      c.Scale,
		Every:      c.Every,
		Archive:    opts.Archive,
		ArchiveDir: c.ArchiveDir,
		Browse:     opts.Browse,
		Status:     os.Stderr,
		Out:        os.Stdout,
	})

	fmt.Fprintf(os.Stderr, "🎥 Session %s started on device %s. Press q to quit.\n", id[:8], c.Device)
	runErr := s.Run(ctx)

	if DB != nil {
		// The run context may already be cancelled by Ctrl+C
		if err := DB.EndSession(context.Background(), id, time.Now()); err != nil {
			utils.Warn("Failed to close session in database: %v", err)
		}
	}

	if runErr != nil {
		utils.ShowError("Session aborted", runErr)
		return runErr
	}

	printSummary(os.Stderr, s.Stats())
	fmt.Fprintf(os.Stderr, "   Duration: %s\n", time.Since(s.StartedAt()).Round(time.Second))
	return nil
}

// printSummary reports what the session saw.
func printSummary(w io.Writer, st session.Stats) {
	fmt.Fprintf(w, "\n🏁 Session Complete. Recognized %d of %d frames.\n", st.Processed, st.Frames)
	if len(st.Logged) == 0 {
		fmt.Fprintln(w, "   Nobody checked in.")
	} else {
		fmt.Fprintf(w, "   %d checked in:\n", len(st.Logged))
		for _, name := range st.Logged {
			fmt.Fprintf(w, "   - %s\n", name)
		}
	}
}
