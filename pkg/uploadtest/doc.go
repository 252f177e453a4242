// Package uploadtest provides test doubles for the upload package.
//
// # Recording Server
//
// Server mirrors the resume backend: POST /upload_resume answers 303 to
// /results, and GET /results answers 200. Every upload is recorded with its
// parts so tests can assert on the exact multipart payload:
//
//	srv := uploadtest.NewServer()
//	defer srv.Close()
//
//	transport, _ := upload.NewHTTPTransport(srv.URL, srv.Client())
//	h := upload.New(upload.NewInput(upload.NewFile("cv.pdf", data)), transport)
//	h.Submit(ctx, nil)
//
//	ups := srv.Uploads()
//	part, _ := ups[0].File()
//
// Force failures with WithStatus:
//
//	srv := uploadtest.NewServer(uploadtest.WithStatus(http.StatusInternalServerError))
//
// # Page Fakes
//
// Form, Document and Recorder stand in for the page:
//
//	form := &uploadtest.Form{}
//	rec := &uploadtest.Recorder{}
//	upload.New(input, transport, upload.WithNotifier(rec), upload.WithNavigator(rec)).Attach(form)
//
//	ev := form.Submit(ctx)
//	ev.DefaultPrevented() // true
//	rec.Navigations()     // ["/results"]
package uploadtest
