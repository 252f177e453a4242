package uploadtest

import (
	"context"
	"sync"

	"github.com/vango-dev/resumeup/pkg/upload"
)

// Form is a fake upload.Form that submits on demand.
type Form struct {
	mu       sync.Mutex
	handlers []func(*upload.SubmitEvent)
}

// OnSubmit implements upload.Form.
func (f *Form) OnSubmit(fn func(*upload.SubmitEvent)) {
	f.mu.Lock()
	f.handlers = append(f.handlers, fn)
	f.mu.Unlock()
}

// Submit dispatches a submit event to every registered handler and returns
// it once they have all run.
func (f *Form) Submit(ctx context.Context) *upload.SubmitEvent {
	f.mu.Lock()
	handlers := append(([]func(*upload.SubmitEvent))(nil), f.handlers...)
	f.mu.Unlock()

	ev := upload.NewSubmitEvent(ctx)
	for _, h := range handlers {
		h(ev)
	}
	return ev
}

// Listeners returns the number of registered submit handlers.
func (f *Form) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

// Document is a fake upload.Document backed by maps.
type Document struct {
	forms  map[string]upload.Form
	inputs map[string]upload.FileInput
}

// NewDocument returns an empty page.
func NewDocument() *Document {
	return &Document{
		forms:  make(map[string]upload.Form),
		inputs: make(map[string]upload.FileInput),
	}
}

// WithForm places a form on the page.
func (d *Document) WithForm(id string, f upload.Form) *Document {
	d.forms[id] = f
	return d
}

// WithFileInput places a file input on the page.
func (d *Document) WithFileInput(id string, in upload.FileInput) *Document {
	d.inputs[id] = in
	return d
}

// Form implements upload.Document.
func (d *Document) Form(id string) (upload.Form, bool) {
	f, ok := d.forms[id]
	return f, ok
}

// FileInput implements upload.Document.
func (d *Document) FileInput(id string) (upload.FileInput, bool) {
	in, ok := d.inputs[id]
	return in, ok
}

// Recorder captures notices and navigations.
// It implements upload.Notifier and upload.Navigator.
type Recorder struct {
	mu          sync.Mutex
	outcomes    []upload.Outcome
	navigations []string
}

// Notify implements upload.Notifier.
func (r *Recorder) Notify(_ context.Context, o upload.Outcome) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, o)
	r.mu.Unlock()
}

// Navigate implements upload.Navigator.
func (r *Recorder) Navigate(_ context.Context, path string) {
	r.mu.Lock()
	r.navigations = append(r.navigations, path)
	r.mu.Unlock()
}

// Outcomes returns the notified outcomes.
func (r *Recorder) Outcomes() []upload.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]upload.Outcome(nil), r.outcomes...)
}

// Messages returns the notified messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := make([]string, 0, len(r.outcomes))
	for _, o := range r.outcomes {
		msgs = append(msgs, o.Message)
	}
	return msgs
}

// Navigations returns the requested navigation paths.
func (r *Recorder) Navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.navigations...)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.outcomes = nil
	r.navigations = nil
	r.mu.Unlock()
}
