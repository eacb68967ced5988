package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/nim-pymod/pmgen/internal/builder/gen"
	"github.com/nim-pymod/pmgen/internal/module"
	"github.com/nim-pymod/pmgen/internal/msg"
	"github.com/nim-pymod/pmgen/internal/platform"
	"github.com/nim-pymod/pmgen/internal/render"
	"github.com/nim-pymod/pmgen/internal/runner"
	"github.com/nim-pymod/pmgen/internal/settings"
)

const (
	// WorkDir holds everything pmgen generates except the final binaries.
	WorkDir = render.Prefix
	// PackageName is the Nim package whose C headers the wrappers include.
	PackageName = "pymod"
)

// Options are the user-facing knobs of a build. Empty tool fields are looked
// up in the environment and on PATH.
type Options struct {
	Modules        []string // module references as given on the command line
	PymodName      string
	PyarrayEnabled bool
	Release        bool
	Generator      string   // gen.GeneratorMake or gen.GeneratorNinja
	ConfigFile     string   // settings file; found automatically when empty
	ModulePaths    []string // extra module search paths, after the settings file's

	Python  string
	Nim     string
	Nimble  string
	Tool    string // make or ninja
	Program string // pmgen itself, for regenerating the aggregator
}

type Builder struct {
	opts   Options
	runner runner.Runner
	gen    gen.Generator
	now    func() time.Time
}

func NewBuilder(opts Options, r runner.Runner) (*Builder, error) {
	g, err := gen.New(opts.Generator)
	if err != nil {
		return nil, err
	}
	if opts.Python == "" {
		opts.Python = platform.FindPython()
	}
	if opts.Nim == "" {
		opts.Nim = platform.FindTool("NIM", "nim")
	}
	if opts.Nimble == "" {
		opts.Nimble = platform.FindTool("NIMBLE", "nimble")
	}
	if opts.Tool == "" {
		opts.Tool = platform.FindTool(g.Tool())
	}
	if opts.Program == "" && len(os.Args) > 0 {
		opts.Program = os.Args[0]
	}
	return &Builder{opts: opts, runner: r, gen: g, now: time.Now}, nil
}

// Build generates the wrappers for every module and compiles them into
// Python extension modules next to the sources.
func (b *Builder) Build(ctx context.Context) error {
	refs, err := module.Resolve(b.opts.Modules)
	if err != nil {
		return err
	}

	cfgPath := settings.Find(".", b.opts.ConfigFile)
	s, err := settings.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfgPath, err)
	}

	release := b.opts.Release
	if !release {
		release, err = s.Any(settings.SectionAll, settings.KeySetIsRelease)
		if err != nil {
			return fmt.Errorf("%s: %w", cfgPath, err)
		}
	}
	if release {
		msg.Info("building in release mode")
	}

	return WithDir(WorkDir, func() error {
		return b.build(ctx, refs, s, release)
	})
}

func (b *Builder) build(ctx context.Context, refs []module.Reference, s *settings.Settings, release bool) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	now := b.now()

	probe := platform.New(b.opts.Python, b.runner)
	flags := probe.Discover(ctx)
	interp := probe.Interpreter(ctx)

	var numericPaths []string
	if b.opts.PyarrayEnabled {
		if numericPaths, err = probe.NumericPaths(ctx); err != nil {
			return err
		}
	}

	pkgPath, err := probe.PackagePath(ctx, b.opts.Nimble, PackageName)
	if err != nil {
		return err
	}

	cfgFile, err := render.WriteConfig(dir, flags, s, numericPaths, render.ConfigOptions{
		Symbols:        b.configSymbols(release),
		NumericEnabled: b.opts.PyarrayEnabled,
		ModulePaths:    b.opts.ModulePaths,
		PackagePath:    pkgPath,
		BaseDir:        dir,
		Time:           now,
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", render.ConfigFile, err)
	}
	msg.Info("wrote %s", filepath.ToSlash(filepath.Join(WorkDir, filepath.Base(cfgFile))))

	basename, err := render.WriteAggregator(dir, refs, b.opts.PymodName, now)
	if err != nil {
		return fmt.Errorf("write aggregator: %w", err)
	}

	plan := &Plan{
		Modules:  refs,
		Basename: basename,
		Compiler: b.compiler(release),
		Symbols:  generateSymbols(interp),
		Self:     b.self(refs),
	}

	if err := b.invoke(ctx, b.gen.FirstFile(basename), FirstGeneration(plan), RuleTarget); err != nil {
		return err
	}

	wrappers, err := DiscoverWrappers(os.DirFS(dir))
	if err != nil {
		return fmt.Errorf("find wrappers: %w", err)
	}
	if len(wrappers) == 0 {
		msg.Warn("no wrappers were generated; is anything marked exportpy?")
	}
	for _, w := range wrappers {
		msg.Detail("%s -> %s", w.Source, w.Binary)
	}

	return b.invoke(ctx, b.gen.SecondFile(), SecondGeneration(plan, wrappers), "")
}

// Clean runs the clean rules of the generated build file. all also removes
// the compiled binaries.
func (b *Builder) Clean(ctx context.Context, all bool) error {
	if _, err := os.Stat(WorkDir); err != nil {
		if os.IsNotExist(err) {
			msg.Info("nothing to clean")
			return nil
		}
		return err
	}
	goal := "clean"
	if all {
		goal = "allclean"
	}
	return WithDir(WorkDir, func() error {
		file := b.gen.SecondFile()
		if _, err := os.Stat(file); err != nil {
			// only generation 1 ran
			matches, gerr := doublestar.Glob(os.DirFS("."), b.gen.FirstFile("*"), doublestar.WithFilesOnly())
			if gerr != nil {
				return gerr
			}
			if len(matches) == 0 {
				msg.Info("nothing to clean")
				return nil
			}
			file = matches[0]
		}
		return b.runner.Run(ctx, b.gen.Command(b.opts.Tool, file, goal))
	})
}

// invoke writes the graph to file and runs the build tool on it.
func (b *Builder) invoke(ctx context.Context, file string, g *gen.Graph, goal string) error {
	if err := os.WriteFile(file, []byte(b.gen.Generate(g, b.now())), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return b.runner.Run(ctx, b.gen.Command(b.opts.Tool, file, goal))
}

func (b *Builder) compiler(release bool) []string {
	argv := []string{b.opts.Nim, "compile"}
	if release {
		argv = append(argv, "-d:release")
	}
	return argv
}

func (b *Builder) configSymbols(release bool) []string {
	symbols := []string{"pymodEnabled"}
	if b.opts.PymodName != "" {
		symbols = append(symbols, "pymodName="+b.opts.PymodName)
	}
	if b.opts.PyarrayEnabled {
		symbols = append(symbols, "pyarrayEnabled")
	}
	if release {
		symbols = append(symbols, "release")
	}
	return symbols
}

func generateSymbols(interp platform.Interpreter) []string {
	symbols := []string{"pmgen"}
	if interp.Major >= 3 {
		symbols = append(symbols, "python3")
	}
	return symbols
}

// self is the command line that regenerates the aggregator from the
// invocation directory.
func (b *Builder) self(refs []module.Reference) []string {
	argv := []string{b.opts.Program}
	for _, ref := range refs {
		argv = append(argv, ref.Arg)
	}
	if b.opts.PymodName != "" {
		argv = append(argv, "--pymodName", b.opts.PymodName)
	}
	if b.opts.PyarrayEnabled {
		argv = append(argv, "--pyarrayEnabled")
	}
	if b.opts.Release {
		argv = append(argv, "--release")
	}
	if b.opts.Generator != "" && b.opts.Generator != gen.GeneratorMake {
		argv = append(argv, "--gen", b.opts.Generator)
	}
	if b.opts.ConfigFile != "" {
		argv = append(argv, "--config", b.opts.ConfigFile)
	}
	for _, p := range b.opts.ModulePaths {
		argv = append(argv, "--path", p)
	}
	argv = append(argv, "--python", b.opts.Python)
	return argv
}
