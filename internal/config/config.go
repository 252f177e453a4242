package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/resumeup/internal/errors"
	"github.com/vango-dev/resumeup/pkg/upload"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "resumeup.json"

	// DefaultServer is the default upload server base URL.
	DefaultServer = "http://localhost:8000"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = "30s"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "resumeup"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "resumeup"

	// Environment overrides.
	EnvServer  = "RESUMEUP_SERVER"
	EnvTimeout = "RESUMEUP_TIMEOUT"
)

// Config represents the complete resumeup.json configuration.
type Config struct {
	// Server is the base URL the upload endpoint is resolved against.
	Server string `json:"server,omitempty"`

	// Timeout bounds a whole submission (e.g., "30s").
	Timeout string `json:"timeout,omitempty"`

	// Upload contains the submit handler settings.
	Upload UploadConfig `json:"upload,omitempty"`

	// Messages overrides the user-visible notices.
	Messages MessagesConfig `json:"messages,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// S3 contains settings for s3:// selections.
	S3 S3Config `json:"s3,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// UploadConfig contains the submit handler settings.
type UploadConfig struct {
	Endpoint    string `json:"endpoint,omitempty"`
	ResultsPath string `json:"resultsPath,omitempty"`
	FormID      string `json:"formId,omitempty"`
	InputID     string `json:"inputId,omitempty"`

	// SilentTransportErrors skips the notice when the server is unreachable.
	SilentTransportErrors bool `json:"silentTransportErrors,omitempty"`
}

// MessagesConfig contains the user-visible notices.
type MessagesConfig struct {
	NoFile       string `json:"noFile,omitempty"`
	UploadFailed string `json:"uploadFailed,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	TracerName      string `json:"tracerName,omitempty"`
	IncludeFileName bool   `json:"includeFileName,omitempty"`
}

// S3Config contains settings for reading selections from S3.
type S3Config struct {
	// Region is the bucket region. Falls back to AWS_REGION.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, e.g. for MinIO or LocalStack.
	Endpoint string `json:"endpoint,omitempty"`

	// UsePathStyle addresses buckets as path segments.
	UsePathStyle bool `json:"usePathStyle,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server:  DefaultServer,
		Timeout: DefaultTimeout,
		Upload: UploadConfig{
			Endpoint:    upload.DefaultEndpoint,
			ResultsPath: upload.DefaultResultsPath,
			FormID:      upload.DefaultFormID,
			InputID:     upload.DefaultInputID,
		},
		Messages: MessagesConfig{
			NoFile:       upload.MessageNoFile,
			UploadFailed: upload.MessageUploadFailed,
		},
		Metrics: MetricsConfig{Namespace: DefaultNamespace},
		Tracing: TracingConfig{TracerName: DefaultTracerName},
	}
}

// Load reads configuration from the specified directory.
// It looks for resumeup.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No resumeup.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'resumeup init' to create one")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, parseError(path, data, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// parseError points the error at the offending position when the decoder
// reports one.
func parseError(path string, data []byte, err error) error {
	e := errors.New("E120").
		WithDetail("Failed to parse resumeup.json: " + err.Error()).
		WithSuggestion("Check that resumeup.json is valid JSON")

	var offset int64 = -1
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case stderrors.As(err, &typeErr):
		offset = typeErr.Offset
	}
	if offset >= 0 {
		line, col := position(data, offset)
		e.WithLocation(path, line, col)
	}
	return e
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = int(offset) - (bytes.LastIndexByte(before, '\n') + 1)
	if col < 1 {
		col = 1
	}
	return line, col
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server == "" {
		c.Server = DefaultServer
	}
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout
	}

	if c.Upload.Endpoint == "" {
		c.Upload.Endpoint = upload.DefaultEndpoint
	}
	if c.Upload.ResultsPath == "" {
		c.Upload.ResultsPath = upload.DefaultResultsPath
	}
	if c.Upload.FormID == "" {
		c.Upload.FormID = upload.DefaultFormID
	}
	if c.Upload.InputID == "" {
		c.Upload.InputID = upload.DefaultInputID
	}

	if c.Messages.NoFile == "" {
		c.Messages.NoFile = upload.MessageNoFile
	}
	if c.Messages.UploadFailed == "" {
		c.Messages.UploadFailed = upload.MessageUploadFailed
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
}

// ApplyEnv overrides fields from RESUMEUP_SERVER and RESUMEUP_TIMEOUT.
func (c *Config) ApplyEnv() {
	c.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvServer)); v != "" {
		c.Server = v
	}
	if v := strings.TrimSpace(getenv(EnvTimeout)); v != "" {
		c.Timeout = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("E122").
			WithDetail("Server must be an absolute http or https URL, got " + quote(c.Server)).
			WithSuggestion("Set \"server\": \"" + DefaultServer + "\" or pass --server")
	}

	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return errors.New("E123").
			WithDetail("Timeout must be a positive duration such as 30s, got " + quote(c.Timeout))
	}

	for name, p := range map[string]string{
		"upload.endpoint":    c.Upload.Endpoint,
		"upload.resultsPath": c.Upload.ResultsPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return errors.New("E124").
				WithDetail(name + " must start with /, got " + quote(p))
		}
	}

	return nil
}

// TimeoutDuration returns the parsed timeout, or the default on error.
func (c *Config) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultTimeout)
	return d
}

// UploadConfig converts the file settings into a handler configuration.
func (c *Config) UploadConfig() *upload.Config {
	return &upload.Config{
		Endpoint:    c.Upload.Endpoint,
		ResultsPath: c.Upload.ResultsPath,
		FormID:      c.Upload.FormID,
		InputID:     c.Upload.InputID,
		Messages: upload.Messages{
			NoFile:       c.Messages.NoFile,
			UploadFailed: c.Messages.UploadFailed,
		},
		SilentTransportErrors: c.Upload.SilentTransportErrors,
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing resumeup.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No resumeup.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'resumeup init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent that has one.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

func quote(s string) string {
	if s == "" {
		return "an empty value"
	}
	return `"` + s + `"`
}
