// Package middleware provides observability middleware for upload transports.
//
// Each middleware is an upload.Middleware and is installed with
// upload.WithMiddleware. The first middleware given is the outermost.
//
// # OpenTelemetry Middleware
//
// OpenTelemetry wraps every upload in a client span:
//
//	h := upload.New(input, transport,
//	    upload.WithMiddleware(middleware.OpenTelemetry()),
//	)
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("careers-site"),
//	    middleware.WithIncludeFileName(true),
//	)
//
// # Prometheus Metrics
//
// The Prometheus middleware collects:
//   - resumeup_uploads_total: Uploads by status
//   - resumeup_upload_duration_seconds: Round trip duration histogram
//   - resumeup_upload_errors_total: Failures by error type
//   - resumeup_upload_request_bytes: Body size histogram
//
// A long-running host exposes them the usual way:
//
//	http.Handle("/metrics", promhttp.Handler())
package middleware
