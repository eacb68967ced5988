// Package platform discovers the host's Python C-API build settings.
package platform

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/nim-pymod/pmgen/internal/msg"
)

var ErrDependencyMissing = errors.New("required dependency is missing")

// Executor runs a command and returns its standard output.
type Executor interface {
	Output(ctx context.Context, argv []string) ([]byte, error)
}

// Flags holds the compiler include flags and linker flags for the Python
// C-API, plus the name of the strategy that produced them.
type Flags struct {
	Include []string
	Link    []string
	Tier    string
}

// Interpreter describes the Python installation being built against.
type Interpreter struct {
	Prefix  string
	Version string // "X.Y"
	Major   int
}

type Probe struct {
	Python string // interpreter path or name
	Exec   Executor

	interp *Interpreter
}

func New(python string, exec Executor) *Probe {
	return &Probe{Python: python, Exec: exec}
}

type strategy struct {
	name string
	run  func(ctx context.Context) (Flags, bool)
}

// Discover tries the config helper, then sysconfig, then a guess from the
// interpreter's prefix and version. It never fails.
func (p *Probe) Discover(ctx context.Context) Flags {
	strategies := []strategy{
		{"config-helper", p.fromConfigHelper},
		{"sysconfig", p.fromSysconfig},
	}
	for _, s := range strategies {
		flags, ok := s.run(ctx)
		if !ok || len(flags.Include) == 0 || len(flags.Link) == 0 {
			continue
		}
		flags.Tier = s.name
		report(flags)
		return flags
	}

	flags := p.guess(ctx)
	report(flags)
	return flags
}

func report(flags Flags) {
	switch flags.Tier {
	case "guess":
		msg.Info("last resort: guessed Python C-API includes & ldflags from the interpreter prefix and version")
	default:
		msg.Info("determined Python C-API includes & ldflags using %s", flags.Tier)
	}
	msg.Detail("includes = %v", flags.Include)
	msg.Detail("ldflags = %v", flags.Link)
}

// ConfigHelper is the name of the interpreter's configuration helper, e.g.
// "python3.12-config" for "/usr/bin/python3.12".
func (p *Probe) ConfigHelper() string {
	if p.Python == "" {
		return ""
	}
	return filepath.Base(p.Python) + "-config"
}

func (p *Probe) fromConfigHelper(ctx context.Context) (Flags, bool) {
	helper := p.ConfigHelper()
	if helper == "" {
		return Flags{}, false
	}
	includes, err := p.Exec.Output(ctx, []string{helper, "--includes"})
	if err != nil {
		msg.Warn("%s --includes: %v", helper, err)
		return Flags{}, false
	}
	ldflags, err := p.Exec.Output(ctx, []string{helper, "--ldflags"})
	if err != nil {
		msg.Warn("%s --ldflags: %v", helper, err)
		return Flags{}, false
	}
	return Flags{
		Include: strings.Fields(string(includes)),
		Link:    strings.Fields(string(ldflags)),
	}, true
}

func (p *Probe) guess(ctx context.Context) Flags {
	interp := p.Interpreter(ctx)
	lib := "python" + interp.Version
	return Flags{
		Include: []string{"-I" + filepath.Join(interp.Prefix, "include", lib)},
		Link:    []string{"-l" + lib},
		Tier:    "guess",
	}
}

const interpreterScript = `import sys
print(sys.prefix)
print("%d.%d" % sys.version_info[:2])`

var versionRegex = regexp.MustCompile(`(\d+)(?:\.(\d+))?`)

// Interpreter reports the interpreter's prefix and version. When the
// interpreter can't be asked, the prefix defaults to /usr and the version is
// taken from its file name, e.g. "python3.11", or "3".
func (p *Probe) Interpreter(ctx context.Context) Interpreter {
	if p.interp != nil {
		return *p.interp
	}
	interp := Interpreter{Prefix: "/usr", Version: "3"}
	if m := versionRegex.FindStringSubmatch(filepath.Base(p.Python)); m != nil {
		interp.Version = m[1]
		if m[2] != "" {
			interp.Version += "." + m[2]
		}
	}
	if out, err := p.python(ctx, interpreterScript); err == nil {
		lines := nonEmptyLines(out)
		if len(lines) == 2 {
			interp.Prefix, interp.Version = lines[0], lines[1]
		}
	}
	major, _, _ := strings.Cut(interp.Version, ".")
	interp.Major, _ = strconv.Atoi(major)
	p.interp = &interp
	return interp
}

func (p *Probe) python(ctx context.Context, script string) ([]byte, error) {
	if p.Python == "" {
		return nil, errors.New("no Python interpreter configured")
	}
	return p.Exec.Output(ctx, []string{p.Python, "-c", script})
}

// PackagePath asks nimble where the Nim package pkg is installed.
func (p *Probe) PackagePath(ctx context.Context, nimble, pkg string) (string, error) {
	out, err := p.Exec.Output(ctx, []string{nimble, "path", pkg})
	if err != nil {
		return "", fmt.Errorf("%w: can not find %s through nimble: %v", ErrDependencyMissing, pkg, err)
	}
	lines := nonEmptyLines(out)
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: can not find %s through nimble", ErrDependencyMissing, pkg)
	}
	path := lines[len(lines)-1]
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return "", fmt.Errorf("%w: can not find %s through nimble: %s is not a directory", ErrDependencyMissing, pkg, path)
	}
	return path, nil
}

func nonEmptyLines(out []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
