package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"htmlpipe/internal/proxy"
	"htmlpipe/internal/system"
)

var rootCmd = &cobra.Command{
	Use:   "htmlpipe [flags] command [args...]",
	Short: "htmlpipe – render HTML output of interactive programs as text",
	Long: `htmlpipe runs an interactive program (such as sqlplus with SET MARKUP HTML ON),
collects the HTML it prints until the prompt comes back, and shows each
response as plain text rendered by w3m, lynx, links, pandoc or a built-in
renderer.`,
	Example: `  htmlpipe sqlplus -S scott/tiger
  htmlpipe --init "SET MARKUP HTML ON" --backend lynx,native sqlplus scott/tiger`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runProxy(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().SetInterspersed(false)
	addSessionFlags(rootCmd.Flags())
	rootCmd.Flags().Bool("pty", false, "run the program on a pseudo-terminal")
	rootCmd.Flags().StringArray("init", nil, "command sent to the program at start (repeatable)")
	rootCmd.Flags().Bool("progress", false, "log progress while a large response arrives")
	rootCmd.PersistentFlags().String("config", "", "config file (default: <user config dir>/htmlpipe/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

// Execute runs the CLI. A failed subprocess exits with its own status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runProxy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetBool("progress"); cmd.Flags().Changed("progress") {
		cfg.Progress.Enabled = v
	}
	if inits, _ := cmd.Flags().GetStringArray("init"); len(inits) > 0 {
		cfg.InitCommands = append(cfg.InitCommands, inits...)
	}
	usePTY, _ := cmd.Flags().GetBool("pty")

	runner := &proxy.Runner{
		Command:      args[0],
		Args:         args[1:],
		PTY:          usePTY,
		InitCommands: cfg.InitCommands,
		Stdin:        os.Stdin,
		Stderr:       os.Stderr,
		Logger:       system.Logger,
	}
	var sink io.Writer = os.Stdout
	if runner.WantsCRLF() {
		sink = proxy.NewCRLFWriter(os.Stdout)
	}

	factory, err := newSessionFactory(cfg, system.Logger)
	if err != nil {
		return err
	}
	filter := proxy.NewFilter(sink, factory, system.Logger)
	if err := filter.Enable(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()
	// Ctrl+C belongs to the program (e.g. to cancel a query); keep it from
	// killing the proxy while still letting the child see default handling.
	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	defer signal.Stop(intr)

	stopToggle := watchToggle(ctx, filter)
	defer stopToggle()

	return runner.Run(ctx, filter)
}
