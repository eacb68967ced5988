package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"testing"

	"github.com/nim-pymod/pmgen/internal/msg"
	"github.com/stretchr/testify/require"
)

func needSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}
}

func newTestExec(t *testing.T) (*Exec, *bytes.Buffer) {
	t.Helper()
	old := msg.Stdout
	msg.Stdout = io.Discard
	t.Cleanup(func() { msg.Stdout = old })

	var out bytes.Buffer
	return &Exec{Stdout: &out, Stderr: &out}, &out
}

func TestRunSuccess(t *testing.T) {
	needSh(t)
	e, out := newTestExec(t)
	require.NoError(t, e.Run(context.Background(), []string{"sh", "-c", "echo hello"}))
	require.Equal(t, "hello\n", out.String())
}

func TestRunExitStatus(t *testing.T) {
	needSh(t)
	e, _ := newTestExec(t)
	err := e.Run(context.Background(), []string{"sh", "-c", "exit 3"})

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 3, exitErr.Code)
	require.Contains(t, exitErr.Error(), "exit status 3")
}

func TestRunMissingBinary(t *testing.T) {
	e, _ := newTestExec(t)
	err := e.Run(context.Background(), []string{"pmgen-no-such-binary"})
	require.Error(t, err)

	var exitErr *ExitError
	require.False(t, errors.As(err, &exitErr))
}

func TestRunEchoesCommand(t *testing.T) {
	needSh(t)
	e, _ := newTestExec(t)
	var echoed bytes.Buffer
	msg.Stdout = &echoed
	require.NoError(t, e.Run(context.Background(), []string{"sh", "-c", "true"}))
	require.Contains(t, echoed.String(), "sh -c true")
}

func TestOutput(t *testing.T) {
	needSh(t)
	e, _ := newTestExec(t)
	out, err := e.Output(context.Background(), []string{"sh", "-c", "echo -I/usr/include; echo oops >&2"})
	require.NoError(t, err)
	require.Equal(t, "-I/usr/include\n", string(out))

	_, err = e.Output(context.Background(), []string{"sh", "-c", "echo broken >&2; exit 1"})
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	require.ErrorContains(t, err, "broken")

	_, err = e.Output(context.Background(), nil)
	require.Error(t, err)
}
