package cmd

import (
	"bufio"
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andresmejia3/facelog/internal/config"
	"github.com/andresmejia3/facelog/internal/session"
	"github.com/andresmejia3/facelog/internal/store"
	"github.com/andresmejia3/facelog/internal/types"
	"github.com/spf13/cobra"
)

func newFlagCmd() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	addConfigFlags(c)
	addSessionFlags(c)
	return c
}

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	c := newFlagCmd()
	if err := c.ParseFlags([]string{"--device", "1", "-t", "0.35", "-n", "3", "--cnn"}); err != nil {
		t.Fatal(err)
	}

	base := config.Config{
		PhotosDir: "/srv/photos",
		LogPath:   "/var/log/face_log.csv",
		Device:    "0",
		Threshold: 0.4,
		Every:     2,
		Scale:     4,
	}
	got := base
	applyFlags(c, &got)

	if got.Device != "1" || got.Threshold != 0.35 || got.Every != 3 || !got.CNN {
		t.Errorf("Changed flags not applied: %+v", got)
	}
	// Untouched flags must not clobber the environment with their defaults
	if got.PhotosDir != "/srv/photos" || got.LogPath != "/var/log/face_log.csv" || got.Scale != 4 {
		t.Errorf("Unset flags overrode config: %+v", got)
	}
}

func TestApplyFlags_MissingFlagsAreIgnored(t *testing.T) {
	c := &cobra.Command{Use: "archive"}
	c.Flags().String("log", "face_log.csv", "")
	if err := c.ParseFlags([]string{"--log", "today.csv"}); err != nil {
		t.Fatal(err)
	}

	got := config.Config{Device: "0", ArchiveDir: "csv_logs"}
	applyFlags(c, &got)
	if got.LogPath != "today.csv" || got.Device != "0" || got.ArchiveDir != "csv_logs" {
		t.Errorf("Unexpected config %+v", got)
	}
}

func TestResolveDBURL(t *testing.T) {
	env := config.DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "facelog", Port: "5432"}
	envURL := "postgres://u:p@db:5432/facelog"

	tests := []struct {
		name       string
		annotation string
		flag       string
		db         config.DatabaseConfig
		wantURL    string
		wantNeeded bool
	}{
		{"no annotation never connects", "", "postgres://x", env, "", false},
		{"optional without config", dbOptional, "", config.DatabaseConfig{}, "", false},
		{"optional from env", dbOptional, "", env, envURL, true},
		{"flag beats env", dbOptional, "postgres://flag/db", env, "postgres://flag/db", true},
		{"required falls back to default", dbRequired, "", config.DatabaseConfig{}, defaultDBURL, true},
		{"required from env", dbRequired, "", env, envURL, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &cobra.Command{Use: "x", Annotations: map[string]string{}}
			if tt.annotation != "" {
				c.Annotations[dbAnnotation] = tt.annotation
			}
			url, needed := resolveDBURL(c, tt.flag, tt.db)
			if url != tt.wantURL || needed != tt.wantNeeded {
				t.Errorf("resolveDBURL() = (%q, %v), want (%q, %v)", url, needed, tt.wantURL, tt.wantNeeded)
			}
		})
	}
}

func TestExecute_CobraDoesNotRepeatErrors(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"label", "only-one-name"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("Expected an argument error")
	}
	if strings.Contains(out.String(), "Error:") {
		t.Errorf("cobra printed the error itself:\n%s", out.String())
	}
}

func TestLargestFace(t *testing.T) {
	faces := []types.FaceResult{
		{Loc: types.Box{Top: 0, Right: 10, Bottom: 10, Left: 0}},  // 100
		{Loc: types.Box{Top: 0, Right: 30, Bottom: 20, Left: 10}}, // 400
		{Loc: types.Box{Top: 5, Right: 25, Bottom: 25, Left: 5}},  // 400, later tie loses
	}
	got := largestFace(faces)
	if got.Loc != faces[1].Loc {
		t.Errorf("Expected the second face, got %+v", got.Loc)
	}
}

func TestPrintMatch(t *testing.T) {
	entries := []types.GalleryEntry{{Name: "alice"}, {Name: "bob"}}

	tests := []struct {
		name  string
		match types.Match
		want  string
	}{
		{"known", types.Match{Name: "bob", Distance: 0.25, Known: true, Index: 1}, "✅ Found Match: bob (distance 0.250)"},
		{"unknown", types.Match{Name: types.UnknownName, Distance: 0.55, Index: 0}, "Closest was alice at distance 0.550"},
		{"empty gallery", types.Match{Name: types.UnknownName, Distance: math.Inf(1), Index: -1}, "the gallery is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printMatch(&buf, tt.match, entries)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Expected %q in %q", tt.want, buf.String())
			}
		})
	}
}

func TestPrintRecords(t *testing.T) {
	var buf bytes.Buffer
	printRecords(&buf, []types.Record{
		{Name: "alice", Time: time.Date(2026, 10, 18, 9, 1, 2, 0, time.Local)},
	})
	out := buf.String()
	if !strings.HasPrefix(out, "NAME") || !strings.Contains(out, "alice") || !strings.Contains(out, "2026-10-18 09:01:02") {
		t.Errorf("Unexpected table:\n%s", out)
	}

	buf.Reset()
	printRecords(&buf, nil)
	if !strings.Contains(buf.String(), "No check-ins") {
		t.Errorf("Expected empty message, got %q", buf.String())
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, []store.AttendanceRow{
		{SessionID: "3f2c9a10-0000-4000-8000-000000000000", Name: "bob", SeenAt: time.Now()},
	})
	out := buf.String()
	if !strings.Contains(out, "3f2c9a10") || strings.Contains(out, "3f2c9a10-") || !strings.Contains(out, "bob") {
		t.Errorf("Unexpected history table:\n%s", out)
	}
}

func TestPrintIdentities_Empty(t *testing.T) {
	var buf bytes.Buffer
	printIdentities(&buf, nil)
	if !strings.Contains(buf.String(), "No identities") {
		t.Errorf("Expected empty message, got %q", buf.String())
	}
}

func TestLogStart(t *testing.T) {
	fallback := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)
	dir := t.TempDir()

	if got := logStart(filepath.Join(dir, "missing.csv"), fallback); !got.Equal(fallback) {
		t.Errorf("Missing log should use fallback, got %v", got)
	}

	path := filepath.Join(dir, "face_log.csv")
	os.WriteFile(path, []byte("bob,2026-10-18 09:30:00\nalice,2026-10-18 09:05:00\n"), 0644)

	want := time.Date(2026, 10, 18, 9, 5, 0, 0, time.Local)
	if got := logStart(path, fallback); !got.Equal(want) {
		t.Errorf("logStart() = %v, want %v", got, want)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := confirm(&out, bufio.NewReader(strings.NewReader(tt.input)), "Delete?")
		if got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Delete? [y/N]: " {
			t.Errorf("Unexpected prompt %q", out.String())
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, session.Stats{Frames: 10, Processed: 5, Logged: []string{"alice", "bob"}})
	out := buf.String()
	if !strings.Contains(out, "Recognized 5 of 10 frames") || !strings.Contains(out, "- alice") || !strings.Contains(out, "2 checked in") {
		t.Errorf("Unexpected summary:\n%s", out)
	}

	buf.Reset()
	printSummary(&buf, session.Stats{})
	if !strings.Contains(buf.String(), "Nobody checked in") {
		t.Errorf("Unexpected empty summary:\n%s", buf.String())
	}
}
