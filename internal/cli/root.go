package cli

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/inkdash/internal/logger"
	"github.com/rileyhilliard/inkdash/internal/util"
)

// Global flags
var (
	cfgFile   string
	debugMode bool
)

// rootCmd is the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inkdash",
	Short: "Host telemetry dashboard for e-paper displays",
	Long: `inkdash samples host telemetry (hostname, IP, temperature, memory, disk,
uptime, Wi-Fi signal, time) and renders it as a fixed-layout monochrome frame
for a small e-paper panel.

A metric that cannot be read shows a short error token instead of its value;
the rest of the frame is still drawn. When the panel rejects a frame it is
saved as PNG to the fallback path.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetDefault(logger.New("inkdash",
			logger.WithOutput(cmd.ErrOrStderr()),
			logger.WithDebug(debugMode)))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./inkdash.yaml, ~/.config/inkdash/config.yaml, /etc/inkdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "log every metric and field")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if isUnknownCommandError(err) {
			if hint := suggestCommand(extractUnknownCommand(err)); hint != "" {
				fmt.Fprintln(os.Stderr, hint)
			}
			fmt.Fprintln(os.Stderr, "Run 'inkdash --help' for usage.")
		}
		os.Exit(1)
	}
}

var unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)

// isUnknownCommandError reports whether cobra rejected the command line itself.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the offending word out of cobra's message.
func extractUnknownCommand(err error) string {
	if m := unknownCommandPattern.FindStringSubmatch(err.Error()); len(m) > 1 {
		return m[1]
	}
	return ""
}

// suggestCommand returns a "did you mean" line for a mistyped subcommand.
func suggestCommand(name string) string {
	if name == "" {
		return ""
	}
	var names []string
	for _, c := range rootCmd.Commands() {
		if !c.Hidden {
			names = append(names, c.Name())
		}
	}
	matches := util.SuggestSimilar(name, names, 3)
	if len(matches) == 0 {
		return ""
	}
	return "Did you mean: " + util.JoinOrNone(matches) + "?"
}
