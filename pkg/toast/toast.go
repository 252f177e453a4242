package toast

// EventName is the event name dispatched for toasts.
// Page-side code should listen for this event.
const EventName = "resumeup:toast"

// Type represents the toast notification type.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Emitter dispatches a named event with a payload.
type Emitter interface {
	Emit(name string, data any)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(name string, data any)

// Emit calls f(name, data).
func (f EmitterFunc) Emit(name string, data any) {
	f(name, data)
}

// Show displays a toast notification.
//
// The emitted payload is:
//
//	{ level: "success|error|warning|info", message: "..." }
func Show(e Emitter, level Type, message string) {
	e.Emit(EventName, map[string]any{
		"level":   string(level),
		"message": message,
	})
}

// Success shows a success toast.
func Success(e Emitter, message string) {
	Show(e, TypeSuccess, message)
}

// Error shows an error toast.
//
//	toast.Error(e, "Upload failed!")
func Error(e Emitter, message string) {
	Show(e, TypeError, message)
}

// Warning shows a warning toast.
func Warning(e Emitter, message string) {
	Show(e, TypeWarning, message)
}

// Info shows an info toast.
func Info(e Emitter, message string) {
	Show(e, TypeInfo, message)
}

// Custom shows a toast with arbitrary data. The Printer reads the level,
// message and optional title keys.
func Custom(e Emitter, data map[string]any) {
	e.Emit(EventName, data)
}
