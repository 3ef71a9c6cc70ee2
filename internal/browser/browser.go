// Package browser prints a directory as an expandable-looking tree so archived
// session logs can be browsed from the terminal.
package browser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/xlab/treeprint"
)

// Print writes dir and everything below it as a tree. Directories come first
// and carry a trailing slash; entries are sorted by name.
func Print(w io.Writer, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	tree := treeprint.NewWithRoot(filepath.Clean(dir) + "/")
	if err := walk(tree, dir); err != nil {
		return err
	}
	_, err = io.WriteString(w, tree.String())
	return err
}

func walk(tree treeprint.Tree, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})

	for _, e := range entries {
		if e.IsDir() {
			branch := tree.AddBranch(e.Name() + "/")
			if err := walk(branch, filepath.Join(dir, e.Name())); err != nil {
				return err
			}
			continue
		}
		tree.AddNode(e.Name())
	}
	return nil
}
