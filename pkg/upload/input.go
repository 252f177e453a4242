package upload

import "sync"

// Input is an in-memory FileInput.
type Input struct {
	mu    sync.RWMutex
	files []File
}

// NewInput returns an Input with files already selected.
func NewInput(files ...File) *Input {
	in := &Input{}
	in.Select(files...)
	return in
}

// Select replaces the current selection.
func (in *Input) Select(files ...File) {
	in.mu.Lock()
	in.files = append([]File(nil), files...)
	in.mu.Unlock()
}

// Clear empties the selection.
func (in *Input) Clear() {
	in.mu.Lock()
	in.files = nil
	in.mu.Unlock()
}

// Files returns a copy of the selection.
func (in *Input) Files() []File {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return append([]File(nil), in.files...)
}
