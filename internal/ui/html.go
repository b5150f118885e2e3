package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Writer writes markup for hand-written components and keeps the first
// error, so a component can write straight through and check once.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes s unescaped. Only for markup literals.
func (hw *Writer) Raw(s string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
}

// Text writes s HTML-escaped.
func (hw *Writer) Text(s string) {
	hw.Raw(templ.EscapeString(s))
}

// Printf formats into a markup literal; every string argument is escaped.
func (hw *Writer) Printf(format string, args ...any) {
	escaped := make([]any, len(args))
	for i, arg := range args {
		if s, ok := arg.(string); ok {
			escaped[i] = templ.EscapeString(s)
		} else {
			escaped[i] = arg
		}
	}
	hw.Raw(fmt.Sprintf(format, escaped...))
}

func (hw *Writer) Render(ctx context.Context, c templ.Component) {
	if hw.err == nil && c != nil {
		hw.err = c.Render(ctx, hw.w)
	}
}

func (hw *Writer) Err() error {
	return hw.err
}

// Component adapts a write function into a templ.Component.
func Component(fn func(ctx context.Context, hw *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		fn(ctx, hw)
		return hw.Err()
	})
}

// Group renders components one after another.
func Group(components ...templ.Component) templ.Component {
	return Component(func(ctx context.Context, hw *Writer) {
		for _, c := range components {
			hw.Render(ctx, c)
		}
	})
}
