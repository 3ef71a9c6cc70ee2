package gallery

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andresmejia3/facelog/internal/types"
	"github.com/schollz/progressbar/v3"
)

var (
	// ErrEmptyGallery means the photos directory produced no entries.
	ErrEmptyGallery = errors.New("gallery is empty")
	// ErrNoFaceInReferenceImage means a reference photo has no detectable face.
	ErrNoFaceInReferenceImage = errors.New("no face in reference image")
	// ErrReservedName means a reference photo is named like the unknown-face label.
	ErrReservedName = errors.New("name is reserved for unrecognized faces")
)

// ImageError ties a load failure to the reference image that caused it.
type ImageError struct {
	Path string
	Err  error
}

func (e *ImageError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *ImageError) Unwrap() error { return e.Err }

// DefaultMaxImageEdge bounds the longest side of a reference image before encoding.
const DefaultMaxImageEdge = 1024

// Options controls how a gallery directory is loaded.
type Options struct {
	MaxImageEdge int
	AllowEmpty   bool      // return an empty gallery instead of ErrEmptyGallery
	Progress     io.Writer // progress bar output; nil disables the bar
}

// Gallery is the ordered, read-only set of known faces.
type Gallery struct {
	entries []types.GalleryEntry
}

// New builds a gallery from already computed entries.
func New(entries []types.GalleryEntry) *Gallery {
	cp := make([]types.GalleryEntry, len(entries))
	copy(cp, entries)
	return &Gallery{entries: cp}
}

// Entries returns the gallery in load order.
func (g *Gallery) Entries() []types.GalleryEntry { return g.entries }

// Len returns the number of known faces.
func (g *Gallery) Len() int { return len(g.entries) }

// Names returns the display names in load order.
func (g *Gallery) Names() []string {
	names := make([]string, len(g.entries))
	for i, e := range g.entries {
		names[i] = e.Name
	}
	return names
}

// IsReferenceImage reports whether a filename has a supported extension.
func IsReferenceImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpeg", ".jpg", ".png":
		return true
	}
	return false
}

// DisplayName derives the identity from a filename: its stem.
func DisplayName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ListImages returns the reference images in dir in lexical order.
func ListImages(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read gallery directory: %w", err)
	}

	var paths []string
	for _, de := range dirEntries {
		if de.IsDir() || !IsReferenceImage(de.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, de.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Load encodes one face per reference image in dir.
func Load(dir string, engine types.Engine, opts Options) (*Gallery, error) {
	if opts.MaxImageEdge <= 0 {
		opts.MaxImageEdge = DefaultMaxImageEdge
	}

	paths, err := ListImages(dir)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil && len(paths) > 0 {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("🖼️  Encoding gallery"),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	entries := make([]types.GalleryEntry, 0, len(paths))
	for _, path := range paths {
		entry, err := loadOne(path, engine, opts.MaxImageEdge)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if len(entries) == 0 && !opts.AllowEmpty {
		return nil, fmt.Errorf("%s: %w", dir, ErrEmptyGallery)
	}
	return New(entries), nil
}

func loadOne(path string, engine types.Engine, maxEdge int) (types.GalleryEntry, error) {
	name := DisplayName(path)
	if name == types.UnknownName {
		return types.GalleryEntry{}, &ImageError{Path: path, Err: ErrReservedName}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.GalleryEntry{}, &ImageError{Path: path, Err: err}
	}

	jpegData, err := PrepareImage(data, maxEdge)
	if err != nil {
		return types.GalleryEntry{}, &ImageError{Path: path, Err: err}
	}

	faces, err := engine.ProcessFrame(jpegData)
	if err != nil {
		return types.GalleryEntry{}, &ImageError{Path: path, Err: err}
	}
	if len(faces) == 0 {
		return types.GalleryEntry{}, &ImageError{Path: path, Err: ErrNoFaceInReferenceImage}
	}

	// Only the first face counts, extra faces in a reference photo are ignored
	return types.GalleryEntry{Name: name, Vec: faces[0].Vec}, nil
}
