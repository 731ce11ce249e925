package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/inkdash/internal/config"
	"github.com/rileyhilliard/inkdash/internal/errors"
	"github.com/rileyhilliard/inkdash/internal/ui"
)

// confirmOverwrite asks before replacing an existing file. Swapped out in tests.
var confirmOverwrite = func(path string) (bool, error) {
	var overwrite bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("'%s' already exists. Overwrite?", path)).
				Value(&overwrite),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return overwrite, nil
}

// stdinIsTerminal reports whether prompts can be shown. Swapped out in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func configInitCommand(cmd *cobra.Command, path string, force bool) error {
	if path == "" {
		path = config.ConfigFileName
	}
	path = config.ExpandPath(path)

	if _, err := os.Stat(path); err == nil && !force {
		if !stdinIsTerminal() {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}
		overwrite, err := confirmOverwrite(path)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Can't create %s", dir),
				"Check permissions or choose another --path.")
		}
	}
	if err := os.WriteFile(path, config.DefaultYAML(), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't write %s", path),
			"Check permissions or choose another --path.")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", ui.SuccessStyle.Render(ui.SymbolSuccess), path)
	fmt.Fprintln(cmd.OutOrStdout(), ui.MutedStyle.Render("  Edit the layout and sources, then run 'inkdash validate'."))
	return nil
}
