package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	// DefaultEndpoint is the path the selected file is posted to.
	DefaultEndpoint = "/upload_resume"

	// DefaultResultsPath is where a successful upload navigates.
	DefaultResultsPath = "/results"

	// DefaultFormID is the element id of the upload form.
	DefaultFormID = "resumeForm"

	// DefaultInputID is the element id of the file input.
	DefaultInputID = "resumeFile"

	// FieldName is the multipart field carrying the selected file.
	FieldName = "file"
)

// User-visible notices.
const (
	MessageNoFile       = "Please select a file!"
	MessageUploadFailed = "Upload failed!"
)

// ErrNoFile is returned when a submission has no selected file.
var ErrNoFile = errors.New("upload: no file selected")

// ErrServer is wrapped by StatusError for non-2xx responses.
var ErrServer = errors.New("upload: server rejected upload")

// ErrTransport is wrapped around connection-level failures.
var ErrTransport = errors.New("upload: transport failure")

// ErrRead is returned when the selected file cannot be read.
var ErrRead = errors.New("upload: cannot read selected file")

// StatusError reports a non-2xx response to the upload request.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("upload: server responded %s", e.Status)
	}
	return fmt.Sprintf("upload: server responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap makes errors.Is(err, ErrServer) hold.
func (e *StatusError) Unwrap() error {
	return ErrServer
}

// File is a file chosen through a file input.
type File struct {
	// Name is the original filename sent in the multipart part.
	Name string

	// ContentType is sent as the part's Content-Type.
	// Empty means application/octet-stream.
	ContentType string

	// Size is the file size in bytes, or 0 when unknown.
	Size int64

	// Opener returns the file contents. It is called once per submission.
	Opener func(ctx context.Context) (io.ReadCloser, error)
}

// NewFile returns a File backed by an in-memory byte slice.
func NewFile(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		Opener: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Open returns a reader over the file contents.
func (f File) Open(ctx context.Context) (io.ReadCloser, error) {
	if f.Opener == nil {
		return nil, fmt.Errorf("%w: %q has no content", ErrRead, f.Name)
	}
	rc, err := f.Opener(ctx)
	if err != nil {
		return nil, readError(err)
	}
	return rc, nil
}

func readError(err error) error {
	if errors.Is(err, ErrRead) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRead, err)
}

// FileInput is a file-picker control.
type FileInput interface {
	// Files returns the current selection, in selection order.
	Files() []File
}

// Form is a form element that dispatches submit events.
type Form interface {
	// OnSubmit registers fn to run on every submission.
	OnSubmit(fn func(*SubmitEvent))
}

// Document resolves page elements by id.
type Document interface {
	Form(id string) (Form, bool)
	FileInput(id string) (FileInput, bool)
}

// SubmitEvent is a single form submission.
type SubmitEvent struct {
	ctx       context.Context
	prevented bool
}

// NewSubmitEvent creates a submit event bound to ctx.
func NewSubmitEvent(ctx context.Context) *SubmitEvent {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SubmitEvent{ctx: ctx}
}

// Context returns the context the submission runs under.
func (e *SubmitEvent) Context() context.Context {
	if e == nil || e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// PreventDefault suppresses the form's native submission.
func (e *SubmitEvent) PreventDefault() {
	e.prevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *SubmitEvent) DefaultPrevented() bool {
	return e.prevented
}

// Kind classifies the outcome of a submission.
type Kind string

const (
	KindRedirected     Kind = "redirected"
	KindNoFile         Kind = "no-file"
	KindServerError    Kind = "server-error"
	KindTransportError Kind = "transport-error"
	KindReadError      Kind = "read-error"
)

// Outcome is the result of one submission.
type Outcome struct {
	Kind Kind

	// Message is the user-facing notice. Empty for KindRedirected.
	Message string

	// StatusCode is the HTTP status, or 0 when no response arrived.
	StatusCode int

	// Location is the navigation target for KindRedirected.
	Location string

	// SubmissionID identifies the submission in logs and traces.
	SubmissionID string

	// FileName is the name of the uploaded file, if one was selected.
	FileName string

	// Err is the error returned by Submit, nil on success.
	Err error
}

// OK reports whether the upload succeeded.
func (o Outcome) OK() bool {
	return o.Kind == KindRedirected
}

// Notifier presents outcomes to the user.
type Notifier interface {
	Notify(ctx context.Context, o Outcome)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, o Outcome)

// Notify calls f(ctx, o).
func (f NotifierFunc) Notify(ctx context.Context, o Outcome) {
	f(ctx, o)
}

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

// Navigate calls f(ctx, path).
func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}
