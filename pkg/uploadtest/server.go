package uploadtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/resumeup/pkg/upload"
)

// Part is one recorded multipart part.
type Part struct {
	FormName    string
	FileName    string
	ContentType string
	Data        []byte
}

// Upload is one recorded request to the upload endpoint.
type Upload struct {
	Method      string
	Path        string
	ContentType string
	Header      http.Header
	Parts       []Part

	// ParseError is set when the body was not valid multipart.
	ParseError error
}

// File returns the part named upload.FieldName.
func (u Upload) File() (Part, bool) {
	for _, p := range u.Parts {
		if p.FormName == upload.FieldName {
			return p, true
		}
	}
	return Part{}, false
}

// Server is a recording stand-in for the resume backend.
type Server struct {
	*httptest.Server

	uploadPath  string
	resultsPath string

	mu          sync.Mutex
	statuses    []int
	uploads     []Upload
	resultsHits int
}

// Option configures a Server.
type Option func(*Server)

// WithStatus sets the statuses returned for successive uploads. The last
// status repeats. A 3xx status redirects to the results path.
func WithStatus(codes ...int) Option {
	return func(s *Server) {
		if len(codes) > 0 {
			s.statuses = append([]int(nil), codes...)
		}
	}
}

// WithUploadPath changes the upload route.
func WithUploadPath(path string) Option {
	return func(s *Server) {
		s.uploadPath = path
	}
}

// WithResultsPath changes the results route.
func WithResultsPath(path string) Option {
	return func(s *Server) {
		s.resultsPath = path
	}
}

// NewServer starts a recording server. Call Close when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		uploadPath:  upload.DefaultEndpoint,
		resultsPath: upload.DefaultResultsPath,
		statuses:    []int{http.StatusSeeOther},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post(s.uploadPath, s.handleUpload)
	r.Get(s.resultsPath, s.handleResults)

	s.Server = httptest.NewServer(r)
	return s
}

// Uploads returns the recorded uploads in arrival order.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// ResultsHits returns how many times the results page was served.
func (s *Server) ResultsHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultsHits
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	up := Upload{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Header:      r.Header.Clone(),
	}
	up.Parts, up.ParseError = readParts(r)

	status := s.record(up)

	if up.ParseError != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	// The reference backend declares the file field as required.
	if _, ok := up.File(); !ok {
		http.Error(w, "Field required: file", http.StatusUnprocessableEntity)
		return
	}

	if status >= 300 && status < 400 {
		http.Redirect(w, r, s.resultsPath, status)
		return
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, http.StatusText(status))
}

func (s *Server) handleResults(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.resultsHits++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, "<!doctype html><title>Results</title><h1>Results</h1>")
}

func (s *Server) record(up Upload) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.uploads)
	s.uploads = append(s.uploads, up)

	if n >= len(s.statuses) {
		return s.statuses[len(s.statuses)-1]
	}
	return s.statuses[n]
}

func readParts(r *http.Request) ([]Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	var parts []Part
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			return parts, nil
		}
		if err != nil {
			return parts, err
		}
		data, err := io.ReadAll(p)
		if err != nil {
			return parts, err
		}
		parts = append(parts, Part{
			FormName:    p.FormName(),
			FileName:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
			Data:        data,
		})
	}
}
