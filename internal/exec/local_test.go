package exec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/inkdash/internal/errors"
)

func TestExecuteLocalCapture_SimpleCommand(t *testing.T) {
	result, err := ExecuteLocalCapture(context.Background(), "echo hello")

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", string(result.Stdout))
	assert.Empty(t, result.Stderr)
}

func TestExecuteLocalCapture_CommandWithPipe(t *testing.T) {
	result, err := ExecuteLocalCapture(context.Background(), "echo 'hello world' | tr ' ' '_'")

	require.NoError(t, err)
	assert.Equal(t, "hello_world\n", string(result.Stdout))
}

func TestExecuteLocalCapture_NonZeroExitCode(t *testing.T) {
	result, err := ExecuteLocalCapture(context.Background(), "echo oops >&2; exit 42")

	require.NoError(t, err) // command ran, just had non-zero exit
	assert.Equal(t, 42, result.ExitCode)
	assert.Equal(t, "oops\n", string(result.Stderr))
}

func TestExecuteLocalCapture_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ExecuteLocalCapture(ctx, "sleep 5")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestOutput(t *testing.T) {
	out, err := Output(context.Background(), "printf 'Mem: 1024 512 400'")
	require.NoError(t, err)
	assert.Equal(t, "Mem: 1024 512 400", out)
}

func TestOutput_NonZeroExitIsError(t *testing.T) {
	_, err := Output(context.Background(), "echo 'no such device' >&2; exit 1")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
	assert.Contains(t, err.Error(), "no such device")
}

func TestOutput_MissingCommand(t *testing.T) {
	_, err := Output(context.Background(), "definitely-not-a-real-binary-inkdash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'definitely-not-a-real-binary-inkdash' not found in PATH")
}

func TestLookProgram(t *testing.T) {
	name, path, err := LookProgram("sh -c 'echo hi'")
	require.NoError(t, err)
	assert.Equal(t, "sh", name)
	assert.NotEmpty(t, path)

	name, _, err = LookProgram("/nonexistent/vcgencmd measure_temp")
	require.Error(t, err)
	assert.Equal(t, "/nonexistent/vcgencmd", name)
	assert.True(t, errors.IsCode(err, errors.ErrExec))

	_, _, err = LookProgram("   ")
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
