package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	fsnotify "github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"htmlpipe/internal/proxy"
	"htmlpipe/internal/system"
)

func init() {
	rootCmd.AddCommand(renderCmd)
	addSessionFlags(renderCmd.Flags())
	renderCmd.Flags().BoolP("watch", "w", false, "re-render the file whenever it changes")
}

var renderCmd = &cobra.Command{
	Use:   "render [file...]",
	Short: "Render HTML files (or stdin) as text",
	Long:  "Render each HTML file through the selected backend and print the text. With no file, or with -, stdin is read.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		factory, err := newSessionFactory(cfg, system.Logger)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			if len(args) != 1 || args[0] == "-" {
				return errors.New("--watch needs exactly one file")
			}
			ctx, cancel := signalContext()
			defer cancel()
			return watchRender(ctx, factory, args[0], out)
		}
		if len(args) == 0 {
			args = []string{"-"}
		}
		for _, name := range args {
			if err := renderFile(cmd.Context(), factory, name, cmd.InOrStdin(), out); err != nil {
				return err
			}
		}
		return nil
	},
}

func renderFile(ctx context.Context, factory proxy.SessionFactory, name string, stdin io.Reader, out io.Writer) error {
	var (
		b   []byte
		err error
	)
	if name == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	text, err := renderOnce(ctx, factory, b)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	_, err = fmt.Fprintln(out, text)
	return err
}

// watchRender renders path once, then again after every change until ctx ends.
func watchRender(ctx context.Context, factory proxy.SessionFactory, path string, out io.Writer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Watch the directory: editors often replace the file instead of writing it.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	if err := renderFile(ctx, factory, abs, nil, out); err != nil {
		system.Logger.Warn("render failed", "file", path, "err", err)
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			debounce = time.After(120 * time.Millisecond)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			system.Logger.Warn("watch error", "err", err)
		case <-debounce:
			debounce = nil
			fmt.Fprintf(out, "\n--- %s (%s) ---\n", filepath.Base(abs), time.Now().Format("15:04:05"))
			if err := renderFile(ctx, factory, abs, nil, out); err != nil {
				system.Logger.Warn("render failed", "file", path, "err", err)
			}
		}
	}
}
