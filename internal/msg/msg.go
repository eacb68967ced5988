package msg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Stdout and Stderr are where messages go; tests swap them out.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

var exit = os.Exit

// ProgramName is the invocation name used to prefix fatal diagnostics.
func ProgramName() string {
	if len(os.Args) == 0 {
		return "pmgen"
	}
	basename := filepath.Base(os.Args[0])
	return strings.TrimSuffix(basename, filepath.Ext(basename))
}

func Error(format string, a ...any) {
	fmt.Fprint(Stderr, color.HiRedString("error"))
	fmt.Fprint(Stderr, ": ")
	fmt.Fprintf(Stderr, format, a...)
	fmt.Fprint(Stderr, "\n")
}

func Warn(format string, a ...any) {
	fmt.Fprint(Stdout, color.YellowString("warn"))
	fmt.Fprint(Stdout, ": ")
	fmt.Fprintf(Stdout, format, a...)
	fmt.Fprint(Stdout, "\n")
}

// Fatal prints "<program>: <message>" followed by "Aborted." on Stderr and
// exits with status 1.
func Fatal(format string, a ...any) {
	fmt.Fprint(Stderr, color.RedString(ProgramName()))
	fmt.Fprint(Stderr, ": ")
	fmt.Fprintf(Stderr, format, a...)
	fmt.Fprint(Stderr, "\nAborted.\n")
	exit(1)
}

func Info(format string, a ...any) {
	fmt.Fprint(Stdout, color.HiGreenString("info"))
	fmt.Fprint(Stdout, ": ")
	fmt.Fprintf(Stdout, format, a...)
	fmt.Fprint(Stdout, "\n")
}

// Detail prints an indented " - " line under the previous Info line.
func Detail(format string, a ...any) {
	fmt.Fprint(Stdout, " - ")
	fmt.Fprintf(Stdout, format, a...)
	fmt.Fprint(Stdout, "\n")
}

// Command echoes a command line before it is executed.
func Command(argv []string) {
	fmt.Fprintln(Stdout, color.HiCyanString(strings.Join(argv, " ")))
}

// IndentWriter prefixes every line written through it with Indent.
type IndentWriter struct {
	Indent    string
	W         io.Writer
	didIndent bool
}

func (w *IndentWriter) Write(p []byte) (int, error) {
	buf := make([]byte, 0, len(p)+len(w.Indent))
	for _, c := range p {
		if !w.didIndent {
			buf = append(buf, w.Indent...)
			w.didIndent = true
		}
		buf = append(buf, c)
		if c == '\n' || c == '\r' {
			w.didIndent = false
		}
	}
	if _, err := w.W.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
