package system

import (
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

// Logger is the shared application logger.
// It prints to stderr so rendered output on stdout stays clean.
var Logger = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
	Prefix:          "htmlpipe",
})

// SetLevel applies a textual level ("debug", "info", "warn", "error").
// HTMLPIPE_LOG_LEVEL, when set, wins over the argument.
func SetLevel(level string) error {
	if env := strings.TrimSpace(os.Getenv("HTMLPIPE_LOG_LEVEL")); env != "" {
		level = env
	}
	if strings.TrimSpace(level) == "" {
		return nil
	}
	lvl, err := clog.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}
