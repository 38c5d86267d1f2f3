package cli

import (
	"context"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	cfgpkg "htmlpipe/internal/config"
	"htmlpipe/internal/proxy"
	"htmlpipe/internal/render"
	"htmlpipe/internal/segment"
	"htmlpipe/internal/system"
	"htmlpipe/internal/tools"
)

// addSessionFlags registers the flags that shape a rendering session.
func addSessionFlags(fs *pflag.FlagSet) {
	fs.String("prompt", "", "prompt pattern (RE2) that ends a response (default \"SQL> \")")
	fs.String("backend", "", "renderer priority list, e.g. w3m,lynx,native")
	fs.Int("width", 0, "render width in columns (default: terminal width)")
	fs.Duration("render-timeout", 0, "limit for a single render (default 30s)")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (cfgpkg.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := cfgpkg.File()
		if err != nil {
			return cfgpkg.Config{}, err
		}
		path = p
	}
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := system.SetLevel(cfg.LogLevel); err != nil {
		system.Logger.Warn("invalid log level", "level", cfg.LogLevel, "err", err)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		system.Logger.SetLevel(clog.DebugLevel)
	}

	fs := cmd.Flags()
	if fs.Lookup("prompt") != nil {
		if v, _ := fs.GetString("prompt"); fs.Changed("prompt") {
			cfg.Prompt = v
		}
		if v, _ := fs.GetString("backend"); fs.Changed("backend") && len(splitList(v)) > 0 {
			cfg.Backends = splitList(v)
		}
		if v, _ := fs.GetInt("width"); fs.Changed("width") {
			cfg.Width = v
		}
		if v, _ := fs.GetDuration("render-timeout"); fs.Changed("render-timeout") {
			cfg.RenderTimeout = v
		}
	}
	return cfg, cfg.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// renderWidth picks the configured width, else the terminal's, else the default.
func renderWidth(cfg cfgpkg.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return render.DefaultWidth
}

// newSessionFactory resolves everything that stays fixed for a session: the
// prompt detector and the backend registry. Backend selection itself runs on
// each session start so a newly installed tool is picked up on re-enable.
func newSessionFactory(cfg cfgpkg.Config, logger *clog.Logger) (proxy.SessionFactory, error) {
	det, err := segment.NewDetector(cfg.Prompt)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = system.Logger
	}
	reg := cfg.Registry()
	opts := render.Options{Width: renderWidth(cfg)}
	return func() (*segment.Engine, error) {
		b, err := reg.Select(cfg.Backends, tools.Installed, opts, logger)
		if err != nil {
			return nil, err
		}
		var prog *segment.Progress
		if cfg.Progress.Enabled {
			prog = &segment.Progress{
				Step:      cfg.Progress.Step,
				Threshold: cfg.Progress.Threshold,
				Emit:      func(s segment.Status) { logger.Info(s.String()) },
			}
		}
		return segment.New(segment.Config{
			Detector:      det,
			Backend:       b,
			RenderTimeout: cfg.RenderTimeout,
			Progress:      prog,
			Logger:        logger,
		})
	}, nil
}

// renderOnce pushes one document through a fresh session and returns what
// the terminal would show. Render failures fall back to the raw markup.
func renderOnce(ctx context.Context, factory proxy.SessionFactory, markup []byte) (string, error) {
	e, err := factory()
	if err != nil {
		return "", err
	}
	u, ok, err := e.Accept(ctx, markup)
	if err != nil {
		return "", err
	}
	if ok {
		_, _, _ = e.Close(ctx)
		return u.Display(), nil
	}
	u, ok, err = e.Close(ctx)
	if err != nil || !ok {
		return "", err
	}
	return u.Display(), nil
}
