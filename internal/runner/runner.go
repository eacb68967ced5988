// Package runner executes child processes for pmgen.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/nim-pymod/pmgen/internal/msg"
)

// ExitError reports a child process that ran and exited non-zero.
type ExitError struct {
	Argv []string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command `%s` failed with exit status %d", strings.Join(e.Argv, " "), e.Code)
}

// Runner runs commands to completion.
type Runner interface {
	// Run echoes argv, runs it with the runner's stdio and waits for it.
	Run(ctx context.Context, argv []string) error
	// Output runs argv quietly and returns its standard output.
	Output(ctx context.Context, argv []string) ([]byte, error)
}

// Exec runs commands with os/exec.
type Exec struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

var _ Runner = (*Exec)(nil)

func New() *Exec {
	return &Exec{
		Stdout: &msg.IndentWriter{Indent: "  ", W: os.Stdout},
		Stderr: &msg.IndentWriter{Indent: "  ", W: os.Stderr},
	}
}

func (e *Exec) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("runner: empty command")
	}
	msg.Command(argv)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	return wrap(argv, cmd.Run())
}

func (e *Exec) Output(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("runner: empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return out, fmt.Errorf("%w: %s", wrap(argv, err), s)
		}
		return out, wrap(argv, err)
	}
	return out, nil
}

func wrap(argv []string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Argv: argv, Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("run %s: %w", argv[0], err)
}
