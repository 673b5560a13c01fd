// Package diag holds parse/compile diagnostics and renders them the way
// spec.md §7 asks for: a span, a caret under the offending source text, and
// the set of tokens the parser expected. The rendering style is modeled on
// ariadne's report output (see original_source/compiler-core/src/lib.rs),
// the nearest idiomatic Go equivalent being a highlighted caret line built
// with github.com/fatih/color.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"

	"toyc/internal/ast"
)

// Diagnostic is a single recoverable parse or compile error.
type Diagnostic struct {
	Span     ast.Span
	Message  string
	Expected []string // Expected-token set, empty if not applicable.
	Found    string   // Offending token text, or "<eof>".
	Label    string   // Optional grammar-production label, e.g. "unclosed string".
}

func (d Diagnostic) Error() string {
	if len(d.Expected) == 0 {
		return d.Message
	}
	return fmt.Sprintf("%s (expected one of: %s)", d.Message, strings.Join(d.Expected, ", "))
}

// Bag collects diagnostics from one parse pass. It is single-writer and
// non-concurrent, matching the frontend's single-pass contract (spec §5).
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Len reports the number of collected diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the collected diagnostics in report order.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Err folds the bag into a single error suitable for returning from Parse,
// or nil if the bag is empty. Multiple diagnostics are combined with
// go-multierror so callers see every recoverable error, not just the first
// (spec §7: "parse errors are collected and all reported before exit").
func (b *Bag) Err() error {
	if len(b.items) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, d := range b.items {
		merr = multierror.Append(merr, d)
	}
	return merr.ErrorOrNil()
}

// Render pretty-prints a diagnostic with source context: the source line
// containing Span.Start, followed by a caret line pointing at the span and
// a message listing what was expected.
func Render(src string, d Diagnostic) string {
	line, col, text := lineAt(src, d.Span.Start)

	var b strings.Builder
	red := color.New(color.FgRed, color.Bold)
	cyan := color.New(color.FgCyan)

	fmt.Fprintf(&b, "%s: %s\n", red.Sprint("error"), d.Message)
	if d.Label != "" {
		fmt.Fprintf(&b, "  %s %s\n", cyan.Sprint("label:"), d.Label)
	}
	fmt.Fprintf(&b, "  --> line %d, col %d\n", line, col)
	fmt.Fprintf(&b, "   | %s\n", text)
	fmt.Fprintf(&b, "   | %s%s\n", strings.Repeat(" ", col-1), red.Sprint("^"))
	if len(d.Expected) > 0 {
		fmt.Fprintf(&b, "  expected: %s\n", strings.Join(d.Expected, ", "))
	}
	if d.Found != "" {
		fmt.Fprintf(&b, "  found: %s\n", d.Found)
	}
	return b.String()
}

// lineAt returns the 1-based line and column of byte offset pos within src,
// along with the full text of that line.
func lineAt(src string, pos int) (line, col int, text string) {
	if pos > len(src) {
		pos = len(src)
	}
	line = 1
	lineStart := 0
	for i := 0; i < pos; i++ {
		if src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	col = pos - lineStart + 1

	end := strings.IndexByte(src[lineStart:], '\n')
	if end < 0 {
		text = src[lineStart:]
	} else {
		text = src[lineStart : lineStart+end]
	}
	return
}
