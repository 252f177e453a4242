package upload

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

var errNoResponse = errors.New("upload: transport returned no response")

// Messages holds the user-visible notices.
type Messages struct {
	NoFile       string
	UploadFailed string
}

// DefaultMessages returns the stock notices.
func DefaultMessages() Messages {
	return Messages{
		NoFile:       MessageNoFile,
		UploadFailed: MessageUploadFailed,
	}
}

// Config holds configuration for the submit handler.
type Config struct {
	// Endpoint is the path the file is posted to.
	// Default: /upload_resume.
	Endpoint string

	// ResultsPath is the navigation target after a successful upload.
	// Default: /results.
	ResultsPath string

	// FormID and InputID are the element ids used by Install.
	// Defaults: resumeForm, resumeFile.
	FormID  string
	InputID string

	// Messages overrides the user-visible notices.
	Messages Messages

	// SilentTransportErrors skips the notice for transport failures.
	// The error is still returned and logged.
	SilentTransportErrors bool

	// Logger is used when no WithLogger option is given.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the stock endpoint, paths and notices.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:    DefaultEndpoint,
		ResultsPath: DefaultResultsPath,
		FormID:      DefaultFormID,
		InputID:     DefaultInputID,
		Messages:    DefaultMessages(),
	}
}

func (c *Config) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.ResultsPath == "" {
		c.ResultsPath = DefaultResultsPath
	}
	if c.FormID == "" {
		c.FormID = DefaultFormID
	}
	if c.InputID == "" {
		c.InputID = DefaultInputID
	}
	if c.Messages.NoFile == "" {
		c.Messages.NoFile = MessageNoFile
	}
	if c.Messages.UploadFailed == "" {
		c.Messages.UploadFailed = MessageUploadFailed
	}
}

// Option configures a Handler.
type Option func(*Handler)

// WithConfig replaces the handler configuration. Empty fields take defaults.
func WithConfig(cfg *Config) Option {
	return func(h *Handler) {
		if cfg != nil {
			h.config = *cfg
		}
	}
}

// WithNotifier sets where outcome notices go.
func WithNotifier(n Notifier) Option {
	return func(h *Handler) {
		h.notifier = n
	}
}

// WithNavigator sets what happens on a successful upload.
func WithNavigator(n Navigator) Option {
	return func(h *Handler) {
		h.navigator = n
	}
}

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithMiddleware wraps the transport. The first middleware is the outermost.
func WithMiddleware(mws ...Middleware) Option {
	return func(h *Handler) {
		h.middleware = append(h.middleware, mws...)
	}
}

// Handler runs the upload contract for submit events.
// It holds no per-submission state and is safe for concurrent use.
type Handler struct {
	input      FileInput
	transport  Transport
	middleware []Middleware
	notifier   Notifier
	navigator  Navigator
	config     Config
	logger     *slog.Logger
	newID      func() string
}

// New creates a handler reading from input and sending through transport.
func New(input FileInput, transport Transport, opts ...Option) *Handler {
	h := &Handler{
		input:     input,
		transport: transport,
		config:    *DefaultConfig(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.config.applyDefaults()

	if h.logger == nil {
		h.logger = h.config.Logger
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.logger = h.logger.With("component", "upload")

	if h.notifier == nil {
		h.notifier = logNotifier{logger: h.logger}
	}
	if h.navigator == nil {
		h.navigator = logNavigator{logger: h.logger}
	}
	h.transport = Chain(h.transport, h.middleware...)

	return h
}

// Install looks up the form and file input by their configured ids and
// attaches a new handler. When either element is missing nothing is
// installed and ok is false.
func Install(doc Document, transport Transport, opts ...Option) (h *Handler, ok bool) {
	h = New(nil, transport, opts...)

	form, ok := doc.Form(h.config.FormID)
	if !ok || form == nil {
		h.logger.Debug("upload form not on page", "id", h.config.FormID)
		return nil, false
	}
	input, ok := doc.FileInput(h.config.InputID)
	if !ok || input == nil {
		h.logger.Debug("file input not on page", "id", h.config.InputID)
		return nil, false
	}

	h.input = input
	h.Attach(form)
	return h, true
}

// Attach registers the handler on form's submit event.
func (h *Handler) Attach(form Form) {
	form.OnSubmit(func(ev *SubmitEvent) {
		_, _ = h.Submit(ev.Context(), ev)
	})
}

// Config returns a copy of the effective configuration.
func (h *Handler) Config() Config {
	return h.config
}

// Submit runs the upload contract for one submission.
//
// The returned error is nil only when the upload succeeded and navigation
// to the results page was requested. It wraps ErrNoFile, ErrServer (via
// *StatusError), ErrTransport or ErrRead otherwise.
func (h *Handler) Submit(ctx context.Context, ev *SubmitEvent) (Outcome, error) {
	if ev != nil {
		ev.PreventDefault()
	}

	id := h.newID()
	logger := h.logger.With("submission_id", id)

	var files []File
	if h.input != nil {
		files = h.input.Files()
	}
	if len(files) == 0 {
		logger.Debug("submission without a selected file")
		return h.fail(ctx, Outcome{
			Kind:         KindNoFile,
			Message:      h.config.Messages.NoFile,
			SubmissionID: id,
			Err:          ErrNoFile,
		}, true)
	}
	file := files[0]

	body, contentType, err := NewBody(ctx, file)
	if err != nil {
		logger.Warn("reading selected file failed", "file", file.Name, "error", err)
		return h.fail(ctx, Outcome{
			Kind:         KindReadError,
			Message:      h.config.Messages.UploadFailed,
			SubmissionID: id,
			FileName:     file.Name,
			Err:          err,
		}, true)
	}

	logger.Info("uploading file",
		"file", file.Name,
		"bytes", body.Len(),
		"endpoint", h.config.Endpoint,
	)

	resp, err := h.transport.RoundTrip(ctx, &Request{
		Method:      http.MethodPost,
		Path:        h.config.Endpoint,
		ContentType: contentType,
		Body:        body,
		Size:        int64(body.Len()),
		FileName:    file.Name,
	})
	if err == nil && resp == nil {
		err = errNoResponse
	}
	if err != nil {
		err = transportError(err)
		logger.Warn("upload did not reach the server", "error", err)
		return h.fail(ctx, Outcome{
			Kind:         KindTransportError,
			Message:      h.config.Messages.UploadFailed,
			SubmissionID: id,
			FileName:     file.Name,
			Err:          err,
		}, !h.config.SilentTransportErrors)
	}

	if !resp.OK() {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		logger.Warn("upload rejected", "status", resp.StatusCode)
		return h.fail(ctx, Outcome{
			Kind:         KindServerError,
			Message:      h.config.Messages.UploadFailed,
			StatusCode:   resp.StatusCode,
			SubmissionID: id,
			FileName:     file.Name,
			Err:          statusErr,
		}, true)
	}

	logger.Info("upload accepted", "status", resp.StatusCode, "redirect", h.config.ResultsPath)
	h.navigator.Navigate(ctx, h.config.ResultsPath)

	return Outcome{
		Kind:         KindRedirected,
		StatusCode:   resp.StatusCode,
		Location:     h.config.ResultsPath,
		SubmissionID: id,
		FileName:     file.Name,
	}, nil
}

func (h *Handler) fail(ctx context.Context, o Outcome, notify bool) (Outcome, error) {
	if notify {
		h.notifier.Notify(ctx, o)
	}
	return o, o.Err
}

type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Notify(_ context.Context, o Outcome) {
	n.logger.Warn(o.Message, "kind", string(o.Kind), "submission_id", o.SubmissionID)
}

type logNavigator struct {
	logger *slog.Logger
}

func (n logNavigator) Navigate(_ context.Context, path string) {
	n.logger.Info("navigate", "path", path)
}
