package toast

import (
	"fmt"
	"io"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Printer is an Emitter that renders toasts as terminal lines.
type Printer struct {
	W     io.Writer
	Color bool
}

// Emit implements Emitter. Events other than EventName are ignored.
func (p *Printer) Emit(name string, data any) {
	if name != EventName {
		return
	}
	m, ok := data.(map[string]any)
	if !ok {
		return
	}

	level, _ := m["level"].(string)
	message, _ := m["message"].(string)
	title, _ := m["title"].(string)

	icon, color := "•", colorCyan
	switch Type(level) {
	case TypeSuccess:
		icon, color = "✓", colorGreen
	case TypeWarning:
		icon, color = "⚠", colorYellow
	case TypeError:
		icon, color = "✗", colorRed
	}
	if title != "" {
		message = title + ": " + message
	}

	if p.Color {
		fmt.Fprintf(p.W, "%s%s%s %s\n", color, icon, colorReset, message)
		return
	}
	fmt.Fprintf(p.W, "%s %s\n", icon, message)
}
