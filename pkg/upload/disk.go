package upload

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sync"
)

// DiskInput is a FileInput whose selection is a list of local paths.
//
// Files are opened lazily at submission time, so a path that disappears
// between selection and submission surfaces as ErrRead.
type DiskInput struct {
	mu    sync.RWMutex
	paths []string
}

// NewDiskInput creates a DiskInput with paths selected.
func NewDiskInput(paths ...string) *DiskInput {
	in := &DiskInput{}
	in.Select(paths...)
	return in
}

// Select replaces the current selection.
func (in *DiskInput) Select(paths ...string) {
	in.mu.Lock()
	in.paths = append([]string(nil), paths...)
	in.mu.Unlock()
}

// Clear empties the selection.
func (in *DiskInput) Clear() {
	in.mu.Lock()
	in.paths = nil
	in.mu.Unlock()
}

// Paths returns the selected paths.
func (in *DiskInput) Paths() []string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return append([]string(nil), in.paths...)
}

// Files implements FileInput.
func (in *DiskInput) Files() []File {
	paths := in.Paths()
	if len(paths) == 0 {
		return nil
	}
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		files = append(files, DiskFile(p))
	}
	return files
}

// DiskFile describes the file at path. The content type is guessed from the
// extension, the way browsers fill File.type.
func DiskFile(path string) File {
	f := File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Opener: func(context.Context) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		f.Size = info.Size()
	}
	return f
}
