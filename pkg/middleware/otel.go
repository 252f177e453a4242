package middleware

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/resumeup/pkg/upload"
)

// Default tracer name for resume uploads.
const defaultTracerName = "resumeup"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "resumeup").
	TracerName string

	// TracerProvider supplies the tracer.
	// If nil, the global provider is used.
	TracerProvider trace.TracerProvider

	// IncludeFileName records the uploaded file name on the span.
	// File names can identify a person, so this is off by default.
	IncludeFileName bool

	// Filter determines which requests to trace.
	// If nil, all requests are traced.
	Filter func(req *upload.Request) bool

	// AttributeExtractor adds custom attributes for each traced request.
	AttributeExtractor func(req *upload.Request) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeFileName enables recording the file name.
func WithIncludeFileName(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeFileName = include
	}
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(req *upload.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(req *upload.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that wraps every upload in a client span.
//
// The span records the method, path, body size and response status. It is
// marked as an error on transport failures and non-2xx responses. Trace
// context is not propagated to the server: the upload carries no headers
// beyond its Content-Type.
//
// Example:
//
//	h := upload.New(input, transport,
//	    upload.WithMiddleware(middleware.OpenTelemetry(
//	        middleware.WithTracerName("careers-site"),
//	    )),
//	)
func OpenTelemetry(opts ...OTelOption) upload.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return func(next upload.Transport) upload.Transport {
		return upload.TransportFunc(func(ctx context.Context, req *upload.Request) (*upload.Response, error) {
			if config.Filter != nil && !config.Filter(req) {
				return next.RoundTrip(ctx, req)
			}

			method := req.Method
			if method == "" {
				method = http.MethodPost
			}

			attrs := []attribute.KeyValue{
				attribute.String("http.request.method", method),
				attribute.String("url.path", req.Path),
				attribute.Int64("http.request.body.size", req.Size),
			}
			if config.IncludeFileName && req.FileName != "" {
				attrs = append(attrs, attribute.String("resumeup.file_name", req.FileName))
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(req)...)
			}

			ctx, span := tracer.Start(ctx, fmt.Sprintf("%s %s", method, req.Path),
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			resp, err := next.RoundTrip(ctx, req)
			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			case resp == nil:
				span.SetStatus(codes.Error, "no response")
			case !resp.OK():
				span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
				span.SetStatus(codes.Error, resp.Status)
			default:
				span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
				span.SetStatus(codes.Ok, "")
			}
			return resp, err
		})
	}
}
