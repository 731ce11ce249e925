package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/inkdash/internal/errors"
)

// Command-specific flags
var (
	runFlags       CycleFlags
	onceFlags      CycleFlags
	previewFlags   CycleFlags
	previewWatch   bool
	configInitPath string
	configForce    bool
)

// runCmd renders on a timer until interrupted
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Render the dashboard every interval",
	Long: `Collect metrics and redraw the panel immediately, then every interval,
until interrupted with Ctrl+C or SIGTERM.

A failed cycle is logged and the loop carries on. With clear_on_exit set the
panel is blanked before the process stops.

Examples:
  inkdash run
  inkdash run --interval 1m
  inkdash run --driver png --fallback /var/lib/inkdash/last.png
  inkdash run --metrics-addr :9273`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, runFlags)
	},
}

// onceCmd renders a single frame
var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Render a single frame and exit",
	Long: `Run exactly one render cycle. Handy from cron or a systemd timer
when the process should not stay resident.

Examples:
  inkdash once
  inkdash once --driver png`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return onceCommand(cmd, onceFlags)
	},
}

// previewCmd renders to the terminal
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the frame in the terminal",
	Long: `Render one frame and print it with half-block characters, two pixel
rows per line. The configured panel is not touched.

With --watch, keep re-rendering in a full-screen view.

Examples:
  inkdash preview
  inkdash preview --watch --interval 10s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return previewCommand(cmd, previewFlags, previewWatch)
	},
}

// validateCmd checks config, layout and sources
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check config, layout and metric sources",
	Long: `Load the config and check it the way 'run' would at startup, then look
for the programs and files each metric reads from.

Missing sources are warnings: the field will show its error token.

Examples:
  inkdash validate
  inkdash validate --config /etc/inkdash/config.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateCommand(cmd)
	},
}

// layoutCmd prints the bound text for each field
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print what each field would show",
	Long: `Collect metrics once and print the text bound to every layout field,
in paint order, without drawing anything.

Examples:
  inkdash layout
  inkdash layout --debug`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return layoutCommand(cmd)
	},
}

// configCmd groups config subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the inkdash config file",
}

// configInitCmd writes the default config
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config",
	Long: `Write the built-in configuration, including the reference layout, to
inkdash.yaml in the current directory (or --path).

Examples:
  inkdash config init
  inkdash config init --path ~/.config/inkdash/config.yaml
  inkdash config init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitCommand(cmd, configInitPath, configForce)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for inkdash.

Examples:
  # Bash
  inkdash completion bash > /etc/bash_completion.d/inkdash

  # Zsh
  inkdash completion zsh > "${fpath[1]}/_inkdash"

  # Fish
  inkdash completion fish > ~/.config/fish/completions/inkdash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	AddCycleFlags(runCmd, &runFlags)
	AddLoopFlags(runCmd, &runFlags)

	AddCycleFlags(onceCmd, &onceFlags)

	previewCmd.Flags().DurationVar(&previewFlags.MetricTimeout, "metric-timeout", 0, "deadline for each metric (e.g., 5s)")
	previewCmd.Flags().DurationVar(&previewFlags.Interval, "interval", defaultWatchInterval, "refresh interval with --watch")
	previewCmd.Flags().BoolVarP(&previewWatch, "watch", "w", false, "keep re-rendering in a full-screen view")

	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "where to write the config (default: ./inkdash.yaml)")
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
}
