// Package toast turns upload outcomes into user-facing notifications.
//
// Toasts are dispatched as named events through an Emitter, so the page
// (or terminal) decides how to render them. Nothing here knows about a
// particular toast library.
//
// # Page-Side Handler
//
// When the emitter forwards events to a browser, a listener renders them:
//
//	window.addEventListener("resumeup:toast", (e) => {
//	    const { level, message, title } = e.detail;
//	    showToast(level, message);
//	});
//
// # Upload Notices
//
// Notifier adapts an Emitter to upload.Notifier:
//
//	h := upload.New(input, transport,
//	    upload.WithNotifier(toast.NewNotifier(emitter)),
//	)
//
// A missing selection is shown as a warning. Every failed upload is shown
// as an error carrying the same "Upload failed!" text.
//
// # Direct Usage
//
//	toast.Success(emitter, "Resume uploaded")
//	toast.Custom(emitter, map[string]any{"level": "error", "title": "Upload", "message": "Upload failed!"})
package toast
