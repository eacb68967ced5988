package msg

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr, oldNoColor := Stdout, Stderr, color.NoColor
	Stdout, Stderr, color.NoColor = &out, &errOut, true
	t.Cleanup(func() {
		Stdout, Stderr, color.NoColor = oldOut, oldErr, oldNoColor
	})
	return &out, &errOut
}

func TestInfoAndDetail(t *testing.T) {
	out, _ := capture(t)
	Info("found %d files", 2)
	Detail("includes = %v", []string{"-I/a"})
	require.Equal(t, "info: found 2 files\n - includes = [-I/a]\n", out.String())
}

func TestFatalPrefixesProgramAndExits(t *testing.T) {
	_, errOut := capture(t)
	code := -1
	oldExit := exit
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = oldExit })

	Fatal("file not found: %s", "a.nim")

	require.Equal(t, 1, code)
	require.Equal(t, ProgramName()+": file not found: a.nim\nAborted.\n", errOut.String())
}

func TestIndentWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &IndentWriter{Indent: "  ", W: &buf}
	_, err := w.Write([]byte("one\ntwo\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("three"))
	require.NoError(t, err)
	require.Equal(t, "  one\n  two\n  three", buf.String())
}
