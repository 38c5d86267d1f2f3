// Package render converts HTML response units into plain text.
//
// A Backend is chosen once per session from a priority list of Specs. External
// tools are driven either through a stdin/stdout pipe or through a temporary
// file; the native backend renders in-process and is always available.
package render

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Backend converts one unit of markup into normalized plain text.
type Backend interface {
	Name() string
	Convert(ctx context.Context, markup []byte) (string, error)
}

// Mode selects how a backend hands markup to its renderer.
type Mode string

const (
	ModePipe   Mode = "pipe"
	ModeFile   Mode = "file"
	ModeNative Mode = "native"
)

// Spec describes a backend. Args may contain the {width} and {file}
// placeholders; {file} is only meaningful for ModeFile.
type Spec struct {
	Name    string   `yaml:"name" json:"name"`
	Mode    Mode     `yaml:"mode" json:"mode" jsonschema:"enum=pipe,enum=file,enum=native"`
	Command string   `yaml:"command,omitempty" json:"command,omitempty"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
	// Indent is the number of leading spaces the tool prefixes to every line.
	Indent int `yaml:"indent,omitempty" json:"indent,omitempty"`
}

// Options are shared by every backend of a session.
type Options struct {
	// Width is the target line width in columns.
	Width int
}

// DefaultWidth is used when Options.Width is not positive.
const DefaultWidth = 80

func (o Options) width() int {
	if o.Width > 0 {
		return o.Width
	}
	return DefaultWidth
}

// Sentinel errors.
var (
	ErrBackendUnavailable = errors.New("no renderer backend available")
	ErrUnknownMode        = errors.New("unknown backend mode")
)

// RenderError reports a failed conversion.
type RenderError struct {
	Backend string
	Stderr  string
	Cause   error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("render %s: %v", e.Backend, e.Cause)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + firstLine(s)
	}
	return msg
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// expandArgs substitutes {width} and {file} in args.
func expandArgs(args []string, width int, file string) []string {
	out := make([]string, len(args))
	w := strconv.Itoa(width)
	for i, a := range args {
		a = strings.ReplaceAll(a, "{width}", w)
		a = strings.ReplaceAll(a, "{file}", file)
		out[i] = a
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
