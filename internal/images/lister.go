// Package images enumerates candidate wallpapers.
package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Lister returns the candidate images in a stable listing order.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// DirLister lists the regular files of a single directory.
// Hidden files are skipped and entries are sorted by name.
type DirLister struct {
	Dir string
}

// NewDirLister creates a DirLister for dir.
func NewDirLister(dir string) *DirLister {
	return &DirLister{Dir: dir}
}

// List reads the directory and returns the paths of its files.
func (l *DirLister) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(l.Dir, name)
		if e.Type()&os.ModeSymlink != 0 {
			// Follow symlinks so linked images are eligible but linked directories are not.
			info, err := os.Stat(full)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		} else if !e.Type().IsRegular() {
			continue
		}
		paths = append(paths, full)
	}

	sort.Strings(paths)
	return paths, nil
}

// Static is a fixed in-memory listing.
type Static []string

// List returns a copy of the listing.
func (s Static) List(ctx context.Context) ([]string, error) {
	out := make([]string, len(s))
	copy(out, s)
	return out, nil
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context) ([]string, error)

// List calls f(ctx).
func (f ListerFunc) List(ctx context.Context) ([]string, error) {
	return f(ctx)
}
