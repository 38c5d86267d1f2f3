package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"htmlpipe/internal/render"
	"htmlpipe/internal/tools"
)

func init() {
	rootCmd.AddCommand(backendsCmd)
	addSessionFlags(backendsCmd.Flags())
}

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List renderer backends and whether their tools are installed",
	Long:  "Shows every known backend in priority order with its mode, tool version and availability. The backend a new session would use is marked with *.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		reg := cfg.Registry()
		out := cmd.OutOrStdout()
		chosen := ""
		for _, name := range backendOrder(reg, cfg.Backends) {
			spec := reg[name]
			var line strings.Builder
			inPriority := contains(cfg.Backends, name)
			avail := false
			detail := "built in"
			if spec.Mode != render.ModeNative {
				res := tools.CheckCommand(cmd.Context(), spec.Command)
				avail = res.Installed
				switch {
				case !res.Installed:
					detail = fmt.Sprintf("%s: %s", spec.Command, res.Err)
				case strings.TrimSpace(res.Version) != "":
					detail = fmt.Sprintf("%s %s", res.Path, res.Version)
				default:
					detail = res.Path
				}
			} else {
				avail = true
			}
			mark := " "
			if chosen == "" && avail && inPriority {
				chosen = name
				mark = "*"
			}
			state := "missing"
			if avail {
				state = "ok"
			}
			if !inPriority {
				state += ", not in priority list"
			}
			line.WriteString(fmt.Sprintf("%s %-8s %-6s %-7s %s", mark, name, spec.Mode, state, detail))
			fmt.Fprintln(out, strings.TrimRight(line.String(), " "))
		}
		if chosen == "" {
			return fmt.Errorf("%w (priority: %s)", render.ErrBackendUnavailable, strings.Join(cfg.Backends, ", "))
		}
		return nil
	},
}

// backendOrder lists priority names first, then the remaining registry
// entries alphabetically.
func backendOrder(reg render.Registry, priority []string) []string {
	out := make([]string, 0, len(reg))
	seen := map[string]bool{}
	for _, n := range priority {
		if _, ok := reg[n]; ok && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	rest := make([]string, 0, len(reg))
	for n := range reg {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
