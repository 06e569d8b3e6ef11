package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	headerColor  = color.New(color.Bold)
	goodColor    = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	badColor     = color.New(color.FgRed)
	mutedColor   = color.New(color.FgHiBlack)
	leadingColor = color.New(color.FgCyan, color.Bold)
)

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Header prints a bold heading line.
func Header(w io.Writer, format string, args ...any) {
	headerColor.Fprintf(w, format+"\n", args...)
}

// Good prints a green line.
func Good(w io.Writer, format string, args ...any) {
	goodColor.Fprintf(w, format+"\n", args...)
}

// Warn prints a yellow line.
func Warn(w io.Writer, format string, args ...any) {
	warnColor.Fprintf(w, format+"\n", args...)
}

// Bad prints a red line.
func Bad(w io.Writer, format string, args ...any) {
	badColor.Fprintf(w, format+"\n", args...)
}

// Muted prints a grey line.
func Muted(w io.Writer, format string, args ...any) {
	mutedColor.Fprintf(w, format+"\n", args...)
}

// Leading highlights the best entry of a list.
func Leading(w io.Writer, format string, args ...any) {
	leadingColor.Fprintf(w, format+"\n", args...)
}

// Line prints an uncoloured line.
func Line(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
