package builder

import (
	"io/fs"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kballard/go-shellquote"
	"github.com/nim-pymod/pmgen/internal/builder/gen"
	"github.com/nim-pymod/pmgen/internal/module"
	"github.com/nim-pymod/pmgen/internal/msg"
	"github.com/nim-pymod/pmgen/internal/render"
)

const (
	// RuleTarget is the only target of the generation-1 build file.
	RuleTarget = "pmgen"
	// BinaryExt is the extension of the compiled Python extension modules.
	BinaryExt = ".so"
	// WrapperPattern matches the wrapper sources the compiler emits; the
	// wildcard is the name of the resulting binary.
	WrapperPattern = render.Prefix + "*_wrap" + module.Ext
)

// Plan is everything the build graphs are generated from.
type Plan struct {
	Modules  []module.Reference
	Basename string   // aggregator basename
	Compiler []string // e.g. nim compile -d:release
	Symbols  []string // --define symbols for generate-only runs
	Self     []string // argv that re-runs pmgen from the invocation directory
}

// Aggregator is the aggregator file name.
func (p *Plan) Aggregator() string {
	return render.AggregatorFile(p.Basename)
}

func (p *Plan) compiler() string {
	return strings.Join(p.Compiler, " ")
}

func (p *Plan) variables() []gen.Variable {
	flags := make([]string, 0, len(p.Symbols)+2)
	for _, sym := range p.Symbols {
		flags = append(flags, "--define:"+sym)
	}
	flags = append(flags, "--noLinking", "--noMain")
	return []gen.Variable{{Name: "PMGEN", Value: strings.Join(flags, " ")}}
}

// generateWrappers is the generate-only compiler run over the aggregator.
func (p *Plan) generateWrappers() string {
	return p.compiler() + " $(PMGEN) " + p.Aggregator()
}

func (p *Plan) moduleFiles() []string {
	files := make([]string, len(p.Modules))
	for i, ref := range p.Modules {
		files[i] = ref.Parent()
	}
	return files
}

// FirstGeneration builds the graph whose single target makes the compiler
// emit wrapper sources for the aggregator.
func FirstGeneration(p *Plan) *gen.Graph {
	return &gen.Graph{
		Variables: p.variables(),
		Targets: []gen.Target{{
			Name:          RuleTarget,
			Prerequisites: append([]string{p.Aggregator()}, p.moduleFiles()...),
			Recipe:        []string{p.generateWrappers()},
			Phony:         true,
		}},
		Clean: cleanTargets(),
	}
}

// Wrapper is a wrapper source found after generation 1 and the binary it
// compiles to.
type Wrapper struct {
	Source string
	Binary string
}

var wrapperRegex = regexp.MustCompile("^" + strings.Replace(regexp.QuoteMeta(WrapperPattern), `\*`, "(.+)", 1) + "$")

// DiscoverWrappers globs fsys for wrapper sources, sorted by name. Finding
// none is not an error.
func DiscoverWrappers(fsys fs.FS) ([]Wrapper, error) {
	matches, err := doublestar.Glob(fsys, WrapperPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	slices.Sort(matches)

	wrappers := make([]Wrapper, 0, len(matches))
	for _, match := range matches {
		m := wrapperRegex.FindStringSubmatch(match)
		if m == nil {
			msg.Warn("ignoring wrapper %s: no module name in file name", match)
			continue
		}
		wrappers = append(wrappers, Wrapper{Source: match, Binary: m[1] + BinaryExt})
	}
	return wrappers, nil
}

// SecondGeneration builds the compilation graph: "all" depends on every
// binary; each binary is compiled from its wrapper and moved up a directory;
// each wrapper is regenerated from the aggregator; the aggregator is
// regenerated by re-running pmgen when a module changes.
func SecondGeneration(p *Plan, wrappers []Wrapper) *gen.Graph {
	all := gen.Target{Name: "all", Phony: true}
	for _, w := range wrappers {
		all.Prerequisites = append(all.Prerequisites, w.Binary)
	}
	targets := []gen.Target{all}

	for _, w := range wrappers {
		targets = append(targets, gen.Target{
			Name:          w.Binary,
			Prerequisites: []string{w.Source},
			Recipe: []string{
				p.compiler() + " " + w.Source,
				"mv -f " + w.Binary + " ../",
			},
		})
	}
	// TODO: skip wrappers left over from a run with a different --pymodName.
	for _, w := range wrappers {
		targets = append(targets, gen.Target{
			Name:          w.Source,
			Prerequisites: []string{p.Aggregator()},
			Recipe:        []string{p.generateWrappers()},
		})
	}
	targets = append(targets, gen.Target{
		Name:          p.Aggregator(),
		Prerequisites: p.moduleFiles(),
		Recipe:        []string{"cd .. ; " + shellquote.Join(p.Self...)},
	})

	return &gen.Graph{
		Variables: p.variables(),
		Targets:   targets,
		Clean:     cleanTargets(),
	}
}

func cleanTargets() []gen.Target {
	prefix := render.Prefix
	return []gen.Target{
		{Name: "allclean", Prerequisites: []string{"clean", "soclean"}, Phony: true},
		{Name: "soclean", Recipe: []string{"rm -f *" + BinaryExt}, Phony: true},
		{
			Name: "clean",
			Recipe: []string{
				"rm -rf nimcache",
				"rm -f " + render.ConfigFile,
				"rm -f " + prefix + "*_capi.c",
				"rm -f " + prefix + "*_incl" + module.Ext,
				"rm -f " + WrapperPattern,
				"rm -f " + WrapperPattern + ".cfg",
			},
			Phony: true,
		},
	}
}
