package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/andresmejia3/facelog/internal/config"
	"github.com/andresmejia3/facelog/internal/gallery"
	"github.com/andresmejia3/facelog/internal/utils"
	"github.com/andresmejia3/facelog/internal/worker"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var gallerySync bool

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Load the photos folder and list the known faces",
	Long: `Encodes every reference image in the photos folder exactly like "run" does,
so a bad photo is caught before a session starts. With --sync the encodings
are stored in PostgreSQL as known identities.`,
	Annotations: map[string]string{dbAnnotation: dbOptional},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c := cfg
		applyFlags(cmd, &c)
		return runGallery(cmd.Context(), c, gallerySync)
	},
}

func init() {
	addConfigFlags(galleryCmd)
	galleryCmd.Flags().BoolVar(&gallerySync, "sync", false, "Store the encodings in PostgreSQL")
	rootCmd.AddCommand(galleryCmd)
}

func runGallery(ctx context.Context, c config.Config, sync bool) error {
	if err := c.Validate(); err != nil {
		utils.ShowError("Invalid settings", err)
		return err
	}
	if sync && DB == nil {
		err := fmt.Errorf("no database configured")
		utils.ShowError("--sync needs --db, DATABASE_URL or POSTGRES_HOST", err)
		return err
	}

	engine, err := worker.NewDlibWorker(0, c.ModelsDir, c.CNN)
	if err != nil {
		utils.ShowError("Failed to start face engine", err)
		return err
	}
	defer engine.Close()

	g, err := gallery.Load(c.PhotosDir, engine, gallery.Options{MaxImageEdge: c.MaxImageEdge, Progress: os.Stderr})
	if err != nil {
		utils.ShowError("Failed to load known faces", err)
		return err
	}

	for _, name := range g.Names() {
		fmt.Println(name)
	}
	fmt.Fprintf(os.Stderr, "👥 %d known faces in %s\n", g.Len(), c.PhotosDir)

	if !sync {
		return nil
	}

	bar := progressbar.NewOptions(g.Len(),
		progressbar.OptionSetDescription("🗄️  Syncing identities"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)
	for _, e := range g.Entries() {
		if err := DB.UpsertIdentity(ctx, e.Name, e.Vec); err != nil {
			utils.ShowError(fmt.Sprintf("Failed to store identity %q", e.Name), err)
			return err
		}
		bar.Add(1)
	}
	bar.Finish()
	fmt.Fprintf(os.Stderr, "\n✅ Synced %d identities.\n", g.Len())
	return nil
}
