package search

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartProcessCapturesOutput(t *testing.T) {
	p, err := StartProcess("sh", []string{"-c", "echo out; echo err 1>&2"}, "")
	require.NoError(t, err)

	result, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.Equal(t, 0, result.ExitCode)
}

func TestNonZeroExitIsAnOutcome(t *testing.T) {
	p, err := StartProcess("sh", []string{"-c", "exit 1"}, "")
	require.NoError(t, err)

	result, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitCode)
}

func TestKillYieldsErrTerminated(t *testing.T) {
	p, err := StartProcess("sleep", []string{"10"}, "")
	require.NoError(t, err)

	assert.True(t, p.Kill())
	assert.False(t, p.Kill(), "second kill should report nothing to do")

	_, err = p.Wait()
	assert.ErrorIs(t, err, ErrTerminated)

	// Wait is idempotent and keeps reporting the same outcome.
	_, err = p.Wait()
	assert.ErrorIs(t, err, ErrTerminated)
}

func TestStartProcessSpawnFailure(t *testing.T) {
	_, err := StartProcess("definitely-not-a-real-command-xyz", nil, "")
	require.Error(t, err)
}

func TestIsTermination(t *testing.T) {
	assert.False(t, IsTermination(nil))
	assert.True(t, IsTermination(ErrTerminated))
	assert.True(t, IsTermination(fmt.Errorf("await: %w", ErrTerminated)))
	assert.True(t, IsTermination(errors.New("signal: killed")))
	assert.True(t, IsTermination(errors.New(`exec: "rg": executable file not found in $PATH`)))
	assert.False(t, IsTermination(errors.New("permission denied")))
}
