package exec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rileyhilliard/inkdash/internal/errors"
)

const waitDelay = 500 * time.Millisecond

// Result holds the captured output of a single local command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ExecuteLocalCapture runs a command through the shell and captures its output.
// The command gets no stdin. It is killed when ctx expires, and in that case the
// returned error wraps ctx.Err(). A non-zero exit is reported through
// Result.ExitCode with a nil error, so callers decide whether that is a failure.
func ExecuteLocalCapture(ctx context.Context, cmd string) (*Result, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	command := exec.CommandContext(ctx, shell, "-c", cmd)
	command.Stdin = nil
	// Children of the shell can hold the output pipes open after it is killed.
	command.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	runErr := command.Run()
	result := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, errors.WrapWithCode(ctxErr, errors.ErrExec,
			fmt.Sprintf("'%s' did not finish in time", cmd),
			"Raise metric_timeout or check the command is not waiting for input.")
	}

	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		result.ExitCode = -1
		return result, errors.WrapWithCode(runErr, errors.ErrExec,
			"Couldn't run the command locally",
			"Make sure the command exists and is executable.")
	}

	return result, nil
}

// Output runs cmd and returns its stdout, treating a non-zero exit as an error.
func Output(ctx context.Context, cmd string) (string, error) {
	result, err := ExecuteLocalCapture(ctx, cmd)
	if err != nil {
		return "", err
	}
	if err := HandleExecError(cmd, string(result.Stderr), result.ExitCode); err != nil {
		return "", err
	}
	return string(result.Stdout), nil
}

// LookProgram resolves the program a shell command line would run: its first
// word, searched on PATH unless it contains a slash.
func LookProgram(cmdline string) (name, path string, err error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return "", "", errors.New(errors.ErrConfig,
			"Empty command",
			"Set the command in the sources section of the config.")
	}
	name = fields[0]
	path, err = exec.LookPath(name)
	if err != nil {
		return name, "", errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("'%s' not found in PATH", name),
			fmt.Sprintf("Install '%s' or point the matching sources.*_command at the right binary.", name))
	}
	return name, path, nil
}
