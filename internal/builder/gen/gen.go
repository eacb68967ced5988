package gen

import (
	"fmt"
	"strings"
	"time"

	"github.com/nim-pymod/pmgen/internal/render"
)

// Variable is a build-file variable. Recipes refer to it as $(Name).
type Variable struct {
	Name  string
	Value string
}

// Target is one rule of a build graph.
type Target struct {
	Name          string
	Prerequisites []string
	Recipe        []string // shell command lines
	Phony         bool     // not a file
}

// Graph is one generated build file. The first target is the default goal.
type Graph struct {
	Variables []Variable
	Targets   []Target
	Clean     []Target // appended after Targets; never the default goal
}

// Default returns the default goal, or nil for an empty graph.
func (g *Graph) Default() *Target {
	if len(g.Targets) == 0 {
		return nil
	}
	return &g.Targets[0]
}

// Lookup returns the target called name, searching Targets then Clean.
func (g *Graph) Lookup(name string) *Target {
	for i := range g.Targets {
		if g.Targets[i].Name == name {
			return &g.Targets[i]
		}
	}
	for i := range g.Clean {
		if g.Clean[i].Name == name {
			return &g.Clean[i]
		}
	}
	return nil
}

// Generator renders graphs for one build tool.
type Generator interface {
	Name() string
	// Tool returns the environment variable and default name of the build tool.
	Tool() (env, name string)
	// FirstFile is the generation-1 build file for an aggregator basename.
	FirstFile(basename string) string
	// SecondFile is the generation-2 build file.
	SecondFile() string
	Generate(g *Graph, t time.Time) string
	// Command is the argv that builds goal from file; an empty goal builds
	// the default target.
	Command(tool, file, goal string) []string
}

const (
	GeneratorMake  = "make"
	GeneratorNinja = "ninja"
)

// New returns the generator called name.
func New(name string) (Generator, error) {
	switch name {
	case GeneratorMake, "":
		return Makefile{}, nil
	case GeneratorNinja:
		return Ninja{}, nil
	default:
		return nil, fmt.Errorf("unknown generator %q", name)
	}
}

func header(t time.Time) string {
	return `# Auto-generated by "` + render.Prefix + `" on ` + render.Datestamp(t) + ".\n" +
		`# Any changes will be overwritten by the next run of "` + render.Prefix + `".` + "\n"
}

func write(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
}

func writeln(sb *strings.Builder, s ...string) {
	write(sb, s...)
	sb.WriteByte('\n')
}
