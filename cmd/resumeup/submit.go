package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/vango-dev/resumeup/internal/config"
	"github.com/vango-dev/resumeup/internal/errors"
	"github.com/vango-dev/resumeup/pkg/middleware"
	"github.com/vango-dev/resumeup/pkg/toast"
	"github.com/vango-dev/resumeup/pkg/upload"
)

type submitOptions struct {
	configPath  string
	server      string
	timeout     string
	verbose     bool
	metrics     bool
	trace       bool
	silentFails bool
}

func submitCmd() *cobra.Command {
	var opts submitOptions

	cmd := &cobra.Command{
		Use:   "submit [file | s3://bucket/key]",
		Short: "Upload a resume",
		Long: `Upload a resume and report where the results are.

Without a file argument nothing is sent and the "Please select a file!"
notice is shown, as on the page.

Settings come from resumeup.json (found in this or a parent directory),
then RESUMEUP_SERVER / RESUMEUP_TIMEOUT, then flags.

Examples:
  resumeup submit jane-doe.pdf
  resumeup submit --server https://careers.example.com cv.docx
  resumeup submit s3://resumes/jane/cv.pdf --metrics
  resumeup submit cv.pdf --trace`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var selection string
			if len(args) == 1 {
				selection = args[0]
			}
			return runSubmit(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), selection, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to resumeup.json")
	cmd.Flags().StringVar(&opts.server, "server", "", "Upload server base URL")
	cmd.Flags().StringVar(&opts.timeout, "timeout", "", "Request timeout (e.g. 30s)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log each step to stderr")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print upload metrics after submitting")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Print the upload span to stderr")
	cmd.Flags().BoolVar(&opts.silentFails, "silent-transport-errors", false, "Do not show a notice when the server is unreachable")

	return cmd
}

func runSubmit(ctx context.Context, out, errOut io.Writer, selection string, opts submitOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	level := slog.LevelError
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	input, err := newInput(selection, cfg.S3)
	if err != nil {
		return err
	}

	transport, err := upload.NewHTTPTransport(cfg.Server, &http.Client{Timeout: cfg.TimeoutDuration()})
	if err != nil {
		return errors.New("E122").Wrap(err)
	}

	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(
		middleware.WithRegistry(registry),
		middleware.WithNamespace(cfg.Metrics.Namespace),
	)

	tracing := []middleware.OTelOption{
		middleware.WithTracerName(cfg.Tracing.TracerName),
		middleware.WithIncludeFileName(cfg.Tracing.IncludeFileName),
	}
	if opts.trace {
		tp, err := newTracerProvider(errOut, cfg.Tracing.TracerName)
		if err != nil {
			return err
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()
		tracing = append(tracing, middleware.WithTracerProvider(tp))
	}

	var resultsURL string
	navigator := upload.NavigatorFunc(func(_ context.Context, path string) {
		resultsURL, _ = transport.Resolve(path)
	})

	handler := upload.New(input, transport,
		upload.WithConfig(cfg.UploadConfig()),
		upload.WithLogger(logger),
		upload.WithNotifier(toast.NewNotifier(printer(out))),
		upload.WithNavigator(navigator),
		upload.WithMiddleware(
			middleware.OpenTelemetry(tracing...),
			metrics.Middleware(),
		),
	)

	ctx, cancel := context.WithTimeout(ctx, cfg.TimeoutDuration())
	defer cancel()

	outcome, err := handler.Submit(ctx, upload.NewSubmitEvent(ctx))

	if opts.metrics {
		if merr := dumpMetrics(out, registry); merr != nil {
			toast.Error(printer(errOut), "Writing metrics failed: "+merr.Error())
		}
	}

	if err != nil {
		return submitError(err, cfg)
	}

	success(out, "Uploaded %s", outcome.FileName)
	toast.Info(printer(out), "Results: "+resultsURL)
	return nil
}

// loadConfig applies file, environment and flag settings in that order.
// A missing resumeup.json is not an error.
func loadConfig(opts submitOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		var e *errors.Error
		if stderrors.As(err, &e) && e.Code == "E141" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	if opts.server != "" {
		cfg.Server = opts.server
	}
	if opts.timeout != "" {
		cfg.Timeout = opts.timeout
	}
	if opts.silentFails {
		cfg.Upload.SilentTransportErrors = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newInput(selection string, s3cfg config.S3Config) (upload.FileInput, error) {
	switch {
	case selection == "":
		return upload.NewInput(), nil
	case upload.IsS3URL(selection):
		obj, err := upload.ParseS3URL(selection)
		if err != nil {
			return nil, errors.New("E005").Wrap(err)
		}
		return upload.NewS3Input(newS3Client(s3cfg), obj), nil
	default:
		return upload.NewDiskInput(selection), nil
	}
}

// newS3Client builds a client from resumeup.json and the standard AWS
// environment variables. Without an access key requests are anonymous,
// which is enough for public buckets.
func newS3Client(cfg config.S3Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	var creds aws.CredentialsProvider = aws.AnonymousCredentials{}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		creds = aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     key,
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				Source:          "EnvironmentVariables",
			}, nil
		}))
	}

	opts := s3.Options{
		Region:       region,
		Credentials:  creds,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// submitError maps handler errors onto CLI error codes.
func submitError(err error, cfg *config.Config) error {
	var statusErr *upload.StatusError
	switch {
	case stderrors.Is(err, upload.ErrNoFile):
		return errors.New("E001").
			WithSuggestion("Pass the resume to upload: resumeup submit cv.pdf")
	case stderrors.As(err, &statusErr):
		return errors.New("E002").
			Wrap(err).
			WithDetail(fmt.Sprintf("The server answered %d to POST %s.", statusErr.StatusCode, cfg.Upload.Endpoint))
	case stderrors.Is(err, upload.ErrTransport):
		return errors.New("E003").
			Wrap(err).
			WithSuggestion("Check that " + cfg.Server + " is running or pass --server")
	case stderrors.Is(err, upload.ErrRead):
		return errors.New("E004").Wrap(err)
	default:
		return err
	}
}

func dumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
