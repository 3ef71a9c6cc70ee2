package cmd

import (
	"fmt"

	"github.com/andresmejia3/facelog/internal/config"
	"github.com/spf13/cobra"
)

// mustGetBool gets a bool flag value or panics if the flag doesn't exist.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// mustGetInt gets an int flag value or panics if the flag doesn't exist.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// mustGetString gets a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// mustGetFloat64 gets a float64 flag value or panics if the flag doesn't exist.
func mustGetFloat64(cmd *cobra.Command, name string) float64 {
	val, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// addConfigFlags registers the flags that override config.Config. Defaults
// shown in help are the built-in ones; the environment still applies when a
// flag is not given.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("photos", "photos", "Folder of reference images (<name>.jpeg|.jpg|.png)")
	f.String("log", "face_log.csv", "Attendance log file")
	f.String("models", "models", "Folder holding the dlib model files")
	f.Int("max-image-edge", 1024, "Reference images are shrunk so their longest edge fits this")
	f.BoolP("cnn", "c", false, "Use the dlib CNN face detector (slower, more accurate)")
	f.Float64P("threshold", "t", 0.4, "Face matching threshold (distance must be strictly below)")
}

// addSessionFlags registers the flags only the live session uses.
func addSessionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("device", "0", "Camera index or video file/stream URL")
	f.IntP("every", "n", 2, "Recognize one frame out of every N")
	f.Int("scale", 4, "Downsample factor applied before recognition")
	f.String("archive-dir", "csv_logs", "Folder the log is archived into")
}

// applyFlags copies every explicitly set flag over the environment config.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	set := func(name string) bool {
		return cmd.Flags().Lookup(name) != nil && cmd.Flags().Changed(name)
	}

	if set("photos") {
		c.PhotosDir = mustGetString(cmd, "photos")
	}
	if set("log") {
		c.LogPath = mustGetString(cmd, "log")
	}
	if set("models") {
		c.ModelsDir = mustGetString(cmd, "models")
	}
	if set("max-image-edge") {
		c.MaxImageEdge = mustGetInt(cmd, "max-image-edge")
	}
	if set("cnn") {
		c.CNN = mustGetBool(cmd, "cnn")
	}
	if set("threshold") {
		c.Threshold = mustGetFloat64(cmd, "threshold")
	}
	if set("device") {
		c.Device = mustGetString(cmd, "device")
	}
	if set("every") {
		c.Every = mustGetInt(cmd, "every")
	}
	if set("scale") {
		c.Scale = mustGetInt(cmd, "scale")
	}
	if set("archive-dir") {
		c.ArchiveDir = mustGetString(cmd, "archive-dir")
	}
}
