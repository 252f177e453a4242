// Package upload turns a resume form submission into a single multipart
// file upload.
//
// The handler never queries a global page. The form, the file input, the
// network transport, and the user-feedback channels are all handed to it,
// which keeps every branch testable without a browser or a server.
//
// # Flow
//
// For every submit event the handler:
//
//  1. Prevents the form's default navigation.
//  2. Reads the file input. An empty selection produces a "Please select a
//     file!" notice and no request.
//  3. Encodes the first selected file as the only part, named "file", of a
//     multipart/form-data body.
//  4. POSTs the body to /upload_resume through the Transport.
//  5. Navigates to /results on a 2xx response, or notifies "Upload failed!"
//     otherwise.
//
// Each submission is independent. Nothing is retained between submissions and
// concurrent submissions are not debounced.
//
// # Usage
//
// Attach to an explicit form and input:
//
//	transport, err := upload.NewHTTPTransport("http://localhost:8000", nil)
//	if err != nil {
//	    return err
//	}
//
//	input := upload.NewDiskInput("resume.pdf")
//	h := upload.New(input, transport,
//	    upload.WithNotifier(toast.NewNotifier(emitter)),
//	    upload.WithNavigator(nav),
//	)
//	h.Attach(form)
//
// Or install by element id, the way a page script would:
//
//	h, ok := upload.Install(doc, transport, upload.WithNotifier(n))
//	if !ok {
//	    // resumeForm or resumeFile is not on this page; nothing to do
//	}
//
// # Transport Failures
//
// Connection-level failures are reported like server failures ("Upload
// failed!", outcome kind transport-error) and returned as errors wrapping
// ErrTransport. Set Config.SilentTransportErrors to skip the notice and only
// return the error.
package upload
