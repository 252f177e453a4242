package toast

import (
	"context"

	"github.com/vango-dev/resumeup/pkg/upload"
)

// LevelFor returns the toast level used for an outcome kind.
func LevelFor(kind upload.Kind) Type {
	switch kind {
	case upload.KindRedirected:
		return TypeSuccess
	case upload.KindNoFile:
		return TypeWarning
	default:
		return TypeError
	}
}

// Notifier implements upload.Notifier by emitting toasts.
type Notifier struct {
	emitter Emitter
	title   string
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithNoticeTitle sets a title on every toast.
func WithNoticeTitle(title string) NotifierOption {
	return func(n *Notifier) {
		n.title = title
	}
}

// NewNotifier creates a Notifier that emits through e.
func NewNotifier(e Emitter, opts ...NotifierOption) *Notifier {
	n := &Notifier{emitter: e}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify implements upload.Notifier.
func (n *Notifier) Notify(_ context.Context, o upload.Outcome) {
	data := map[string]any{
		"level":   string(LevelFor(o.Kind)),
		"message": o.Message,
		"kind":    string(o.Kind),
	}
	if o.StatusCode != 0 {
		data["status"] = o.StatusCode
	}
	if n.title != "" {
		data["title"] = n.title
	}
	Custom(n.emitter, data)
}
