package render

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/nim-pymod/pmgen/internal/msg"
	"github.com/nim-pymod/pmgen/internal/platform"
	"github.com/nim-pymod/pmgen/internal/settings"
)

// ConfigFile is the compiler configuration written into the work directory.
const ConfigFile = "nim.cfg"

type ConfigOptions struct {
	Symbols        []string // define:"..." entries, in order
	NumericEnabled bool
	ModulePaths    []string // added after the settings file's nimAddModulePath
	PackagePath    string   // pymod package directory, added to cincludes
	BaseDir        string   // directory the file is written to
	Time           time.Time
}

// Config renders nim.cfg. The output depends only on its arguments and the
// filesystem (numeric include dirs must exist, module paths are resolved).
func Config(flags platform.Flags, s *settings.Settings, numericPaths []string, opts ConfigOptions) string {
	includes := slices.Clone(flags.Include)
	if opts.NumericEnabled {
		includes = append(includes, numericIncludes(numericPaths)...)
	}

	var sb strings.Builder
	header(&sb, opts.Time)
	for _, dir := range uniqueIncludeDirs(includes) {
		writeln(&sb, `cincludes:"`, dir, `"`)
	}
	if opts.PackagePath != "" {
		writeln(&sb, `cincludes:"`, opts.PackagePath, `"`)
	}
	for _, sym := range opts.Symbols {
		writeln(&sb, `define:"`, sym, `"`)
	}
	writeln(&sb, "listCmd")
	writeln(&sb, `nimcache:"nimcache"`)
	writeln(&sb, `parallelBuild:"1"`)
	writeln(&sb, `passC:"-Wall -O3 -fPIC"`)
	writeln(&sb, `passL:"`, strings.Join(append(append([]string{"-O3"}, uniqueInOrder(flags.Link)...), "-fPIC"), " "), `"`)

	modulePaths := append(s.Get(settings.SectionAll, settings.KeyAddModulePath), opts.ModulePaths...)
	for _, p := range modulePaths {
		writeln(&sb, `path:"`, resolveModulePath(p, opts.BaseDir), `"`)
	}
	writeln(&sb, `verbosity:"2"`)
	return sb.String()
}

// WriteConfig renders nim.cfg into dir, replacing any existing file.
func WriteConfig(dir string, flags platform.Flags, s *settings.Settings, numericPaths []string, opts ConfigOptions) (string, error) {
	return writeFile(dir, ConfigFile, Config(flags, s, numericPaths, opts))
}

func numericIncludes(numericPaths []string) []string {
	var out []string
	for _, p := range numericPaths {
		dir := filepath.Join(p, filepath.FromSlash(platform.NumericIncludeDir))
		if stat, err := os.Stat(dir); err == nil && stat.IsDir() {
			out = append(out, "-I"+dir)
		}
	}
	msg.Info("determined NumPy C-API includes")
	msg.Detail("includes = %v", out)
	return out
}

// uniqueIncludeDirs strips any leading "-I" and returns the sorted set.
func uniqueIncludeDirs(flags []string) []string {
	dirs := make([]string, 0, len(flags))
	for _, f := range flags {
		dirs = append(dirs, strings.TrimPrefix(f, "-I"))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

// uniqueInOrder drops repeated flags but keeps link order.
func uniqueInOrder(flags []string) []string {
	seen := make(map[string]bool, len(flags))
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// resolveModulePath strips quotes, re-roots relative paths at the parent of
// baseDir and resolves symlinks where the path exists.
func resolveModulePath(p, baseDir string) string {
	p = settings.StripQuotes(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, "..", p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
