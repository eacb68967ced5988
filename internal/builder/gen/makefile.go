package gen

import (
	"strings"
	"time"
)

// Makefile renders graphs for GNU make.
type Makefile struct{}

func (Makefile) Name() string                     { return GeneratorMake }
func (Makefile) Tool() (string, string)           { return "MAKE", "make" }
func (Makefile) FirstFile(basename string) string { return "Makefile.pmgen-" + basename }
func (Makefile) SecondFile() string               { return "Makefile" }

func (Makefile) Command(tool, file, goal string) []string {
	argv := []string{tool, "-f", file}
	if goal != "" {
		argv = append(argv, goal)
	}
	return argv
}

func (Makefile) Generate(g *Graph, t time.Time) string {
	var sb strings.Builder

	writeln(&sb, header(t))
	for _, v := range g.Variables {
		writeln(&sb, v.Name, " = ", v.Value)
	}
	if len(g.Variables) > 0 {
		writeln(&sb)
	}

	var phony []string
	for _, target := range append(append([]Target{}, g.Targets...), g.Clean...) {
		if target.Phony {
			phony = append(phony, target.Name)
		}
	}
	if len(phony) > 0 {
		writeln(&sb, ".PHONY: ", strings.Join(phony, " "))
		writeln(&sb)
	}

	writeRules(&sb, g.Targets)
	writeln(&sb)
	writeRules(&sb, g.Clean)
	return sb.String()
}

func writeRules(sb *strings.Builder, targets []Target) {
	for i, target := range targets {
		if i > 0 {
			writeln(sb)
		}
		write(sb, target.Name, ":")
		for _, prereq := range target.Prerequisites {
			write(sb, " ", prereq)
		}
		writeln(sb)
		for _, line := range target.Recipe {
			writeln(sb, "\t", line)
		}
	}
}
