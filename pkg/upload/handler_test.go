package upload_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/vango-dev/resumeup/pkg/upload"
	"github.com/vango-dev/resumeup/pkg/uploadtest"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	srv       *uploadtest.Server
	input     *upload.Input
	form      *uploadtest.Form
	rec       *uploadtest.Recorder
	handler   *upload.Handler
	transport *upload.HTTPTransport
}

func newFixture(t *testing.T, opts ...uploadtest.Option) *fixture {
	t.Helper()

	srv := uploadtest.NewServer(opts...)
	t.Cleanup(srv.Close)

	transport, err := upload.NewHTTPTransport(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewHTTPTransport: %v", err)
	}

	f := &fixture{
		srv:       srv,
		input:     upload.NewInput(),
		form:      &uploadtest.Form{},
		rec:       &uploadtest.Recorder{},
		transport: transport,
	}
	f.handler = upload.New(f.input, transport,
		upload.WithNotifier(f.rec),
		upload.WithNavigator(f.rec),
		upload.WithLogger(quietLogger),
	)
	f.handler.Attach(f.form)
	return f
}

func TestSubmit_NoFileSendsNothing(t *testing.T) {
	f := newFixture(t)

	ev := f.form.Submit(context.Background())

	if !ev.DefaultPrevented() {
		t.Error("expected default submission to be prevented")
	}
	if got := len(f.srv.Uploads()); got != 0 {
		t.Fatalf("uploads = %d, want 0", got)
	}
	msgs := f.rec.Messages()
	if len(msgs) != 1 || msgs[0] != "Please select a file!" {
		t.Fatalf("messages = %q, want [\"Please select a file!\"]", msgs)
	}
	if got := f.rec.Outcomes()[0].Kind; got != upload.KindNoFile {
		t.Errorf("kind = %q, want %q", got, upload.KindNoFile)
	}
	if navs := f.rec.Navigations(); len(navs) != 0 {
		t.Errorf("navigations = %v, want none", navs)
	}
}

func TestSubmit_NoFileReturnsErrNoFile(t *testing.T) {
	f := newFixture(t)

	out, err := f.handler.Submit(context.Background(), nil)
	if !errors.Is(err, upload.ErrNoFile) {
		t.Fatalf("err = %v, want ErrNoFile", err)
	}
	if out.OK() {
		t.Error("expected outcome not OK")
	}
}

func TestSubmit_PostsSingleFilePart(t *testing.T) {
	f := newFixture(t)
	content := []byte("%PDF-1.4 jane doe resume")
	f.input.Select(upload.File{
		Name:        "jane.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(content)),
		Opener: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	})

	f.form.Submit(context.Background())

	ups := f.srv.Uploads()
	if len(ups) != 1 {
		t.Fatalf("uploads = %d, want 1", len(ups))
	}
	up := ups[0]
	if up.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", up.Method)
	}
	if up.Path != "/upload_resume" {
		t.Errorf("path = %s, want /upload_resume", up.Path)
	}
	if !strings.HasPrefix(up.ContentType, "multipart/form-data; boundary=") {
		t.Errorf("content type = %q, want multipart/form-data with boundary", up.ContentType)
	}
	if len(up.Parts) != 1 {
		t.Fatalf("parts = %d, want 1", len(up.Parts))
	}

	part, ok := up.File()
	if !ok {
		t.Fatal("expected a part named file")
	}
	if part.FileName != "jane.pdf" {
		t.Errorf("filename = %q, want jane.pdf", part.FileName)
	}
	if part.ContentType != "application/pdf" {
		t.Errorf("part content type = %q, want application/pdf", part.ContentType)
	}
	if !bytes.Equal(part.Data, content) {
		t.Errorf("part data = %q, want %q", part.Data, content)
	}
}

func TestSubmit_SendsNoExtraHeaders(t *testing.T) {
	f := newFixture(t)
	f.input.Select(upload.NewFile("cv.txt", []byte("hello")))

	f.form.Submit(context.Background())

	ups := f.srv.Uploads()
	if len(ups) != 1 {
		t.Fatalf("uploads = %d, want 1", len(ups))
	}

	// Everything here is added by net/http itself.
	allowed := map[string]bool{
		"Content-Type":    true,
		"Content-Length":  true,
		"User-Agent":      true,
		"Accept-Encoding": true,
	}
	for name := range ups[0].Header {
		if !allowed[name] {
			t.Errorf("unexpected request header %q", name)
		}
	}
}

func TestSubmit_UsesFirstSelectedFileOnly(t *testing.T) {
	f := newFixture(t)
	f.input.Select(
		upload.NewFile("first.pdf", []byte("one")),
		upload.NewFile("second.pdf", []byte("two")),
	)

	f.form.Submit(context.Background())

	ups := f.srv.Uploads()
	if len(ups) != 1 || len(ups[0].Parts) != 1 {
		t.Fatalf("expected one upload with one part, got %+v", ups)
	}
	if got := ups[0].Parts[0].FileName; got != "first.pdf" {
		t.Errorf("filename = %q, want first.pdf", got)
	}
}

func TestSubmit_SuccessNavigatesToResults(t *testing.T) {
	f := newFixture(t)
	f.input.Select(upload.NewFile("cv.pdf", []byte("data")))

	ev := upload.NewSubmitEvent(context.Background())
	out, err := f.handler.Submit(ev.Context(), ev)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if !ev.DefaultPrevented() {
		t.Error("expected default submission to be prevented")
	}
	if !out.OK() || out.Kind != upload.KindRedirected {
		t.Errorf("outcome = %+v, want redirected", out)
	}
	if out.Location != "/results" {
		t.Errorf("location = %q, want /results", out.Location)
	}
	if navs := f.rec.Navigations(); len(navs) != 1 || navs[0] != "/results" {
		t.Errorf("navigations = %v, want [/results]", navs)
	}
	if msgs := f.rec.Messages(); len(msgs) != 0 {
		t.Errorf("messages = %q, want none", msgs)
	}
	// The 303 from the backend was followed to the results page.
	if hits := f.srv.ResultsHits(); hits != 1 {
		t.Errorf("results hits = %d, want 1", hits)
	}
}

func TestSubmit_Plain2xxNavigates(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusNoContent} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newFixture(t, uploadtest.WithStatus(status))
			f.input.Select(upload.NewFile("cv.pdf", []byte("data")))

			out, err := f.handler.Submit(context.Background(), nil)
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if out.StatusCode != status {
				t.Errorf("status = %d, want %d", out.StatusCode, status)
			}
			if navs := f.rec.Navigations(); len(navs) != 1 {
				t.Errorf("navigations = %v, want one", navs)
			}
			if hits := f.srv.ResultsHits(); hits != 0 {
				t.Errorf("results hits = %d, want 0", hits)
			}
		})
	}
}

func TestSubmit_Non2xxAlerts(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"bad request", http.StatusBadRequest},
		{"payload too large", http.StatusRequestEntityTooLarge},
		{"server error", http.StatusInternalServerError},
		{"unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, uploadtest.WithStatus(tt.status))
			f.input.Select(upload.NewFile("cv.pdf", []byte("data")))

			ev := f.form.Submit(context.Background())

			if !ev.DefaultPrevented() {
				t.Error("expected default submission to be prevented")
			}
			msgs := f.rec.Messages()
			if len(msgs) != 1 || msgs[0] != "Upload failed!" {
				t.Fatalf("messages = %q, want [\"Upload failed!\"]", msgs)
			}
			out := f.rec.Outcomes()[0]
			if out.Kind != upload.KindServerError {
				t.Errorf("kind = %q, want %q", out.Kind, upload.KindServerError)
			}
			if out.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", out.StatusCode, tt.status)
			}
			var statusErr *upload.StatusError
			if !errors.As(out.Err, &statusErr) || statusErr.StatusCode != tt.status {
				t.Errorf("err = %v, want *StatusError with %d", out.Err, tt.status)
			}
			if !errors.Is(out.Err, upload.ErrServer) {
				t.Errorf("err = %v, want errors.Is ErrServer", out.Err)
			}
			if navs := f.rec.Navigations(); len(navs) != 0 {
				t.Errorf("navigations = %v, want none", navs)
			}
		})
	}
}

func TestSubmit_SequentialSubmissionsAreIndependent(t *testing.T) {
	f := newFixture(t)
	f.input.Select(upload.NewFile("a.pdf", []byte("first body")))
	f.form.Submit(context.Background())

	f.input.Select(upload.NewFile("b.pdf", []byte("second")))
	f.form.Submit(context.Background())

	ups := f.srv.Uploads()
	if len(ups) != 2 {
		t.Fatalf("uploads = %d, want 2", len(ups))
	}
	want := []struct {
		name string
		data string
	}{
		{"a.pdf", "first body"},
		{"b.pdf", "second"},
	}
	for i, w := range want {
		if len(ups[i].Parts) != 1 {
			t.Fatalf("upload %d parts = %d, want 1", i, len(ups[i].Parts))
		}
		p, _ := ups[i].File()
		if p.FileName != w.name || string(p.Data) != w.data {
			t.Errorf("upload %d = %s %q, want %s %q", i, p.FileName, p.Data, w.name, w.data)
		}
	}
	if ups[0].ContentType == ups[1].ContentType {
		t.Error("expected a fresh multipart boundary per submission")
	}
	if navs := f.rec.Navigations(); len(navs) != 2 {
		t.Errorf("navigations = %v, want two", navs)
	}
}

func TestSubmit_SameFileTwice(t *testing.T) {
	f := newFixture(t)
	f.input.Select(upload.NewFile("cv.pdf", []byte("same")))

	f.form.Submit(context.Background())
	f.form.Submit(context.Background())

	ups := f.srv.Uploads()
	if len(ups) != 2 {
		t.Fatalf("uploads = %d, want 2", len(ups))
	}
	for i, up := range ups {
		p, ok := up.File()
		if !ok || string(p.Data) != "same" || len(up.Parts) != 1 {
			t.Errorf("upload %d malformed: %+v", i, up)
		}
	}

	outs := []upload.Outcome{}
	for range 2 {
		out, err := f.handler.Submit(context.Background(), nil)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		outs = append(outs, out)
	}
	if outs[0].SubmissionID == outs[1].SubmissionID {
		t.Error("expected distinct submission ids")
	}
}

func TestSubmit_ConcurrentSubmissionsAreNotDebounced(t *testing.T) {
	f := newFixture(t)
	f.input.Select(upload.NewFile("cv.pdf", []byte("data")))

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.form.Submit(context.Background())
		}()
	}
	wg.Wait()

	if got := len(f.srv.Uploads()); got != 2 {
		t.Errorf("uploads = %d, want 2", got)
	}
}

func TestSubmit_TransportErrorNotifiesByDefault(t *testing.T) {
	wantErr := errors.New("connection refused")
	rec := &uploadtest.Recorder{}
	h := upload.New(
		upload.NewInput(upload.NewFile("cv.pdf", []byte("data"))),
		upload.TransportFunc(func(context.Context, *upload.Request) (*upload.Response, error) {
			return nil, wantErr
		}),
		upload.WithNotifier(rec),
		upload.WithNavigator(rec),
		upload.WithLogger(quietLogger),
	)

	ev := upload.NewSubmitEvent(context.Background())
	out, err := h.Submit(ev.Context(), ev)

	if !ev.DefaultPrevented() {
		t.Error("expected default submission to be prevented")
	}
	if !errors.Is(err, upload.ErrTransport) || !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want ErrTransport wrapping %v", err, wantErr)
	}
	if out.Kind != upload.KindTransportError {
		t.Errorf("kind = %q, want %q", out.Kind, upload.KindTransportError)
	}
	if msgs := rec.Messages(); len(msgs) != 1 || msgs[0] != "Upload failed!" {
		t.Errorf("messages = %q, want [\"Upload failed!\"]", msgs)
	}
	if navs := rec.Navigations(); len(navs) != 0 {
		t.Errorf("navigations = %v, want none", navs)
	}
}

func TestSubmit_TransportWithoutResponse(t *testing.T) {
	rec := &uploadtest.Recorder{}
	h := upload.New(
		upload.NewInput(upload.NewFile("cv.pdf", []byte("data"))),
		upload.TransportFunc(func(context.Context, *upload.Request) (*upload.Response, error) {
			return nil, nil
		}),
		upload.WithNotifier(rec),
		upload.WithNavigator(rec),
		upload.WithLogger(quietLogger),
	)

	out, err := h.Submit(context.Background(), upload.NewSubmitEvent(context.Background()))

	if !errors.Is(err, upload.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if out.Kind != upload.KindTransportError || out.StatusCode != 0 {
		t.Errorf("outcome = %+v, want transport-error without status", out)
	}
	if msgs := rec.Messages(); len(msgs) != 1 || msgs[0] != "Upload failed!" {
		t.Errorf("messages = %q, want [\"Upload failed!\"]", msgs)
	}
	if navs := rec.Navigations(); len(navs) != 0 {
		t.Errorf("navigations = %v, want none", navs)
	}
}

func TestSubmit_SilentTransportErrors(t *testing.T) {
	rec := &uploadtest.Recorder{}
	cfg := upload.DefaultConfig()
	cfg.SilentTransportErrors = true

	h := upload.New(
		upload.NewInput(upload.NewFile("cv.pdf", []byte("data"))),
		upload.TransportFunc(func(context.Context, *upload.Request) (*upload.Response, error) {
			return nil, errors.New("no route to host")
		}),
		upload.WithConfig(cfg),
		upload.WithNotifier(rec),
		upload.WithNavigator(rec),
		upload.WithLogger(quietLogger),
	)

	_, err := h.Submit(context.Background(), nil)
	if !errors.Is(err, upload.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if msgs := rec.Messages(); len(msgs) != 0 {
		t.Errorf("messages = %q, want none", msgs)
	}
}

func TestSubmit_UnreachableServer(t *testing.T) {
	srv := uploadtest.NewServer()
	transport, err := upload.NewHTTPTransport(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewHTTPTransport: %v", err)
	}
	srv.Close()

	rec := &uploadtest.Recorder{}
	h := upload.New(
		upload.NewInput(upload.NewFile("cv.pdf", []byte("data"))),
		transport,
		upload.WithNotifier(rec),
		upload.WithNavigator(rec),
		upload.WithLogger(quietLogger),
	)

	out, err := h.Submit(context.Background(), nil)
	if !errors.Is(err, upload.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if out.StatusCode != 0 {
		t.Errorf("status = %d, want 0", out.StatusCode)
	}
	if len(rec.Navigations()) != 0 {
		t.Error("expected no navigation")
	}
}

func TestSubmit_CanceledContext(t *testing.T) {
	f := newFixture(t)
	f.input.Select(upload.NewFile("cv.pdf", []byte("data")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.handler.Submit(ctx, nil)
	if !errors.Is(err, upload.ErrTransport) || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want ErrTransport wrapping context.Canceled", err)
	}
}

func TestSubmit_ReadErrorSendsNothing(t *testing.T) {
	f := newFixture(t)
	f.input.Select(upload.File{
		Name: "broken.pdf",
		Opener: func(context.Context) (io.ReadCloser, error) {
			return nil, errors.New("permission denied")
		},
	})

	out, err := f.handler.Submit(context.Background(), nil)
	if !errors.Is(err, upload.ErrRead) {
		t.Fatalf("err = %v, want ErrRead", err)
	}
	if out.Kind != upload.KindReadError {
		t.Errorf("kind = %q, want %q", out.Kind, upload.KindReadError)
	}
	if got := len(f.srv.Uploads()); got != 0 {
		t.Errorf("uploads = %d, want 0", got)
	}
	if msgs := f.rec.Messages(); len(msgs) != 1 || msgs[0] != "Upload failed!" {
		t.Errorf("messages = %q", msgs)
	}
}

func TestSubmit_CustomConfig(t *testing.T) {
	f := newFixture(t,
		uploadtest.WithUploadPath("/api/resume"),
		uploadtest.WithResultsPath("/done"),
	)
	rec := &uploadtest.Recorder{}
	h := upload.New(upload.NewInput(), f.transport,
		upload.WithConfig(&upload.Config{
			Endpoint:    "/api/resume",
			ResultsPath: "/done",
			Messages:    upload.Messages{NoFile: "Choose a resume first"},
		}),
		upload.WithNotifier(rec),
		upload.WithNavigator(rec),
		upload.WithLogger(quietLogger),
	)

	if _, err := h.Submit(context.Background(), nil); !errors.Is(err, upload.ErrNoFile) {
		t.Fatalf("err = %v, want ErrNoFile", err)
	}
	if msgs := rec.Messages(); len(msgs) != 1 || msgs[0] != "Choose a resume first" {
		t.Errorf("messages = %q", msgs)
	}

	cfg := h.Config()
	if cfg.Messages.UploadFailed != "Upload failed!" {
		t.Errorf("UploadFailed = %q, want default", cfg.Messages.UploadFailed)
	}
	if cfg.FormID != "resumeForm" || cfg.InputID != "resumeFile" {
		t.Errorf("ids = %q/%q, want defaults", cfg.FormID, cfg.InputID)
	}
}

func TestSubmit_MiddlewareWrapsTransport(t *testing.T) {
	f := newFixture(t)
	var seen []string
	mw := func(name string) upload.Middleware {
		return func(next upload.Transport) upload.Transport {
			return upload.TransportFunc(func(ctx context.Context, req *upload.Request) (*upload.Response, error) {
				seen = append(seen, name)
				return next.RoundTrip(ctx, req)
			})
		}
	}

	h := upload.New(upload.NewInput(upload.NewFile("cv.pdf", []byte("x"))), f.transport,
		upload.WithMiddleware(mw("outer"), mw("inner")),
		upload.WithNavigator(f.rec),
		upload.WithLogger(quietLogger),
	)
	if _, err := h.Submit(context.Background(), nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if strings.Join(seen, ",") != "outer,inner" {
		t.Errorf("middleware order = %v, want [outer inner]", seen)
	}
}

func TestInstall(t *testing.T) {
	srv := uploadtest.NewServer()
	defer srv.Close()
	transport, err := upload.NewHTTPTransport(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewHTTPTransport: %v", err)
	}

	t.Run("both elements present", func(t *testing.T) {
		form := &uploadtest.Form{}
		input := upload.NewInput(upload.NewFile("cv.pdf", []byte("data")))
		rec := &uploadtest.Recorder{}
		doc := uploadtest.NewDocument().
			WithForm("resumeForm", form).
			WithFileInput("resumeFile", input)

		h, ok := upload.Install(doc, transport, upload.WithNavigator(rec), upload.WithLogger(quietLogger))
		if !ok || h == nil {
			t.Fatal("expected handler to be installed")
		}
		if form.Listeners() != 1 {
			t.Fatalf("listeners = %d, want 1", form.Listeners())
		}

		form.Submit(context.Background())
		if navs := rec.Navigations(); len(navs) != 1 || navs[0] != "/results" {
			t.Errorf("navigations = %v, want [/results]", navs)
		}
	})

	t.Run("form missing", func(t *testing.T) {
		doc := uploadtest.NewDocument().WithFileInput("resumeFile", upload.NewInput())

		h, ok := upload.Install(doc, transport, upload.WithLogger(quietLogger))
		if ok || h != nil {
			t.Fatal("expected nothing to be installed")
		}
	})

	t.Run("input missing", func(t *testing.T) {
		form := &uploadtest.Form{}
		doc := uploadtest.NewDocument().WithForm("resumeForm", form)

		_, ok := upload.Install(doc, transport, upload.WithLogger(quietLogger))
		if ok {
			t.Fatal("expected nothing to be installed")
		}
		if form.Listeners() != 0 {
			t.Errorf("listeners = %d, want 0", form.Listeners())
		}
	})

	t.Run("custom ids", func(t *testing.T) {
		form := &uploadtest.Form{}
		doc := uploadtest.NewDocument().
			WithForm("cvForm", form).
			WithFileInput("cvFile", upload.NewInput())

		_, ok := upload.Install(doc, transport,
			upload.WithConfig(&upload.Config{FormID: "cvForm", InputID: "cvFile"}),
			upload.WithLogger(quietLogger),
		)
		if !ok {
			t.Fatal("expected handler to be installed under custom ids")
		}
	})
}

func TestStatusError(t *testing.T) {
	err := &upload.StatusError{StatusCode: http.StatusBadGateway}
	if got := err.Error(); got != "upload: server responded 502 Bad Gateway" {
		t.Errorf("Error() = %q", got)
	}

	err = &upload.StatusError{StatusCode: 500, Status: "500 Internal Server Error"}
	if got := err.Error(); got != "upload: server responded 500 Internal Server Error" {
		t.Errorf("Error() = %q", got)
	}
}
