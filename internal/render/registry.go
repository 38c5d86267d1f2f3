package render

import (
	"fmt"
	"strings"

	clog "github.com/charmbracelet/log"

	"htmlpipe/internal/system"
)

// Builtins lists the bundled backends in default priority order: fastest and
// most faithful first, the in-process renderer last.
var Builtins = []Spec{
	{Name: "w3m", Mode: ModePipe, Command: "w3m", Args: []string{"-dump", "-T", "text/html", "-cols", "{width}", "-O", "UTF-8"}},
	{Name: "lynx", Mode: ModeFile, Command: "lynx", Args: []string{"-dump", "-nolist", "-width={width}", "-display_charset=utf-8", "{file}"}, Indent: 3},
	{Name: "links", Mode: ModeFile, Command: "links", Args: []string{"-dump", "-width", "{width}", "{file}"}},
	{Name: "pandoc", Mode: ModePipe, Command: "pandoc", Args: []string{"-f", "html", "-t", "plain", "--columns={width}"}},
	{Name: "native", Mode: ModeNative},
}

// DefaultPriority returns the builtin names in priority order.
func DefaultPriority() []string {
	names := make([]string, 0, len(Builtins))
	for _, s := range Builtins {
		names = append(names, s.Name)
	}
	return names
}

// Registry maps backend names to their specs.
type Registry map[string]Spec

// NewRegistry returns the builtins overlaid with extra specs; an extra spec
// replaces a builtin of the same name.
func NewRegistry(extra ...Spec) Registry {
	r := make(Registry, len(Builtins)+len(extra))
	for _, s := range Builtins {
		r[s.Name] = s
	}
	for _, s := range extra {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		s.Name = name
		r[name] = s
	}
	return r
}

// Probe reports whether an external command can be run.
type Probe func(command string) bool

type constructor func(Spec, Options, *clog.Logger) Backend

var constructors = map[Mode]constructor{
	ModePipe: func(s Spec, o Options, _ *clog.Logger) Backend { return newPipeBackend(s, o) },
	ModeFile: newFileBackend,
	ModeNative: func(_ Spec, o Options, _ *clog.Logger) Backend {
		return newNativeBackend(o)
	},
}

// New builds the backend described by spec.
func New(spec Spec, opts Options, logger *clog.Logger) (Backend, error) {
	if logger == nil {
		logger = system.Logger
	}
	ctor, ok := constructors[spec.Mode]
	if !ok {
		return nil, fmt.Errorf("%w %q for backend %q", ErrUnknownMode, spec.Mode, spec.Name)
	}
	if spec.Mode != ModeNative && strings.TrimSpace(spec.Command) == "" {
		return nil, fmt.Errorf("backend %q: empty command", spec.Name)
	}
	return ctor(spec, opts, logger), nil
}

// Available reports whether spec can run on this machine.
func Available(spec Spec, probe Probe) bool {
	if spec.Mode == ModeNative {
		return true
	}
	return probe != nil && probe(spec.Command)
}

// Select commits to the first backend in priority whose tool is available.
// It fails with ErrBackendUnavailable when none is.
func (r Registry) Select(priority []string, probe Probe, opts Options, logger *clog.Logger) (Backend, error) {
	if logger == nil {
		logger = system.Logger
	}
	tried := make([]string, 0, len(priority))
	for _, name := range priority {
		name = strings.TrimSpace(name)
		spec, ok := r[name]
		if !ok {
			logger.Debug("skipping unknown backend", "backend", name)
			continue
		}
		tried = append(tried, name)
		if !Available(spec, probe) {
			logger.Debug("backend tool not found", "backend", name, "command", spec.Command)
			continue
		}
		b, err := New(spec, opts, logger)
		if err != nil {
			logger.Warn("invalid backend", "backend", name, "err", err)
			continue
		}
		logger.Debug("selected backend", "backend", name, "mode", spec.Mode)
		return b, nil
	}
	return nil, fmt.Errorf("%w (tried: %s)", ErrBackendUnavailable, strings.Join(tried, ", "))
}
