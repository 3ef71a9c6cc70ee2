package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/andresmejia3/facelog/internal/config"
	"github.com/andresmejia3/facelog/internal/gallery"
	"github.com/andresmejia3/facelog/internal/recognizer"
	"github.com/andresmejia3/facelog/internal/types"
	"github.com/andresmejia3/facelog/internal/utils"
	"github.com/andresmejia3/facelog/internal/worker"
	"github.com/spf13/cobra"
)

var identifyFromDB bool

var identifyCmd = &cobra.Command{
	Use:   "identify <image_path>",
	Short: "Tell who is in a photo using the known faces",
	Args:  cobra.ExactArgs(1),
	// Connects only with --from-db; the check happens in RunE.
	Annotations: map[string]string{dbAnnotation: dbOptional},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c := cfg
		applyFlags(cmd, &c)
		return runIdentify(cmd.Context(), args[0], c, identifyFromDB)
	},
}

func init() {
	addConfigFlags(identifyCmd)
	identifyCmd.Flags().BoolVar(&identifyFromDB, "from-db", false, "Match against identities synced to PostgreSQL instead of the photos folder")
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(ctx context.Context, imagePath string, c config.Config, fromDB bool) error {
	if err := c.Validate(); err != nil {
		utils.ShowError("Invalid settings", err)
		return err
	}
	if fromDB && DB == nil {
		err := fmt.Errorf("no database configured")
		utils.ShowError("--from-db needs --db, DATABASE_URL or POSTGRES_HOST", err)
		return err
	}

	imgData, err := os.ReadFile(imagePath)
	if err != nil {
		utils.ShowError("Failed to read image file", err)
		return err
	}

	fmt.Fprintln(os.Stderr, "🚀 Starting face engine...")
	engine, err := worker.NewDlibWorker(0, c.ModelsDir, c.CNN)
	if err != nil {
		utils.ShowError("Failed to start face engine", err)
		return err
	}
	defer engine.Close()

	jpeg, err := gallery.PrepareImage(imgData, c.MaxImageEdge)
	if err != nil {
		utils.ShowError("Unsupported image", err)
		return err
	}

	fmt.Fprintln(os.Stderr, "🔍 Analyzing face...")
	faces, err := engine.ProcessFrame(jpeg)
	if err != nil {
		utils.ShowError("Face detection failed", err)
		return err
	}

	if len(faces) == 0 {
		fmt.Println("❌ No faces detected in the provided image.")
		return nil
	}

	best := largestFace(faces)
	if len(faces) > 1 {
		fmt.Printf("⚠️  Multiple faces detected (%d). Using the largest face.\n", len(faces))
	}

	if fromDB {
		fmt.Fprintln(os.Stderr, "🗄️  Searching database...")
		id, name, dist, err := DB.FindClosestIdentity(ctx, best.Vec, c.Threshold)
		if err != nil {
			utils.ShowError("Database search failed", err)
			return err
		}
		if id == -1 {
			fmt.Println("❌ No match found in database.")
			return nil
		}
		fmt.Printf("✅ Found Match: %s (distance %.3f)\n", name, dist)
		return nil
	}

	g, err := gallery.Load(c.PhotosDir, engine, gallery.Options{MaxImageEdge: c.MaxImageEdge, Progress: os.Stderr})
	if err != nil {
		utils.ShowError("Failed to load known faces", err)
		return err
	}

	m := recognizer.Matcher{Threshold: c.Threshold}.Best(best.Vec, g.Entries())
	printMatch(os.Stdout, m, g.Entries())
	return nil
}

// largestFace picks the face with the biggest box area.
func largestFace(faces []types.FaceResult) types.FaceResult {
	best := faces[0]
	maxArea := area(best.Loc)
	for _, f := range faces[1:] {
		if a := area(f.Loc); a > maxArea {
			maxArea = a
			best = f
		}
	}
	return best
}

func area(b types.Box) int {
	return (b.Bottom - b.Top) * (b.Right - b.Left)
}

func printMatch(w io.Writer, m types.Match, entries []types.GalleryEntry) {
	if m.Known {
		fmt.Fprintf(w, "✅ Found Match: %s (distance %.3f)\n", m.Name, m.Distance)
		return
	}
	if m.Index < 0 {
		fmt.Fprintln(w, "❌ No match found: the gallery is empty.")
		return
	}
	fmt.Fprintf(w, "❌ No match found. Closest was %s at distance %.3f.\n", entries[m.Index].Name, m.Distance)
}
