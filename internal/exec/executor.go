package exec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rileyhilliard/inkdash/internal/errors"
)

// commandNotFoundPatterns extract the missing program from shell diagnostics.
// They only apply with exit code 127.
var commandNotFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)zsh: command not found: (\S+)`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?i)sh: (\S+): No such file or directory`),
	regexp.MustCompile(`(?i)(\S+): not found`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
}

// IsCommandNotFound checks if the error output indicates a missing command.
// Returns the command name (if extractable) and whether it's a command-not-found error.
func IsCommandNotFound(stderr string, exitCode int) (string, bool) {
	if exitCode != 127 {
		return "", false
	}

	for _, pattern := range commandNotFoundPatterns {
		if matches := pattern.FindStringSubmatch(stderr); len(matches) > 1 {
			return matches[1], true
		}
	}

	// Exit code is 127 but couldn't extract command name
	return "", true
}

// HandleExecError turns a failed metric command into an error. A missing
// program gets its own message, since it is by far the most common cause
// (vcgencmd off a Pi, iwconfig on a wired host).
func HandleExecError(cmd string, stderr string, exitCode int) error {
	if exitCode == 0 {
		return nil
	}

	if name, notFound := IsCommandNotFound(stderr, exitCode); notFound {
		if name == "" {
			name = "command"
			if parts := strings.Fields(cmd); len(parts) > 0 {
				name = parts[0]
			}
		}
		return errors.New(errors.ErrExec,
			fmt.Sprintf("'%s' not found in PATH", name),
			fmt.Sprintf("Install '%s' or point the matching sources.*_command at the right binary.", name))
	}

	return errors.New(errors.ErrExec,
		fmt.Sprintf("'%s' exited with status %d", cmd, exitCode),
		strings.TrimSpace(stderr))
}
