// Package ui prints one-line status messages for the CLI.
package ui

import (
	"fmt"
	"io"
	"os"
)

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	yellow = "\033[33m"
	green  = "\033[32m"
	red    = "\033[31m"
	cyan   = "\033[36m"
)

// Printer writes status lines, colored unless disabled.
type Printer struct {
	w     io.Writer
	plain bool
}

// New returns a colored printer on stderr.
func New() *Printer {
	return &Printer{w: os.Stderr}
}

// NewPlain returns a printer on w without ANSI codes.
func NewPlain(w io.Writer) *Printer {
	return &Printer{w: w, plain: true}
}

func (p *Printer) line(color, icon, msg string) {
	if p.plain {
		fmt.Fprintf(p.w, "%s %s\n", icon, msg)
		return
	}
	fmt.Fprintf(p.w, "%s%s%s %s\n", color, icon, reset, msg)
}

// Success prints a check-marked line.
func (p *Printer) Success(format string, args ...any) {
	p.line(green+bold, "✓", fmt.Sprintf(format, args...))
}

// Error prints a failure line.
func (p *Printer) Error(format string, args ...any) {
	p.line(red+bold, "✗", fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	p.line(yellow, "!", fmt.Sprintf(format, args...))
}

// Info prints a neutral line.
func (p *Printer) Info(format string, args ...any) {
	p.line(cyan, "·", fmt.Sprintf(format, args...))
}

// Detail prints an indented, de-emphasized line.
func (p *Printer) Detail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.plain {
		fmt.Fprintf(p.w, "  %s\n", msg)
		return
	}
	fmt.Fprintf(p.w, "  %s%s%s\n", dim, msg, reset)
}
