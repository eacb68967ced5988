package gen

import (
	"fmt"
	"strings"
	"time"
)

// Ninja renders graphs as ninja build files. Every target with a recipe gets
// its own rule; targets without one become phony edges.
type Ninja struct{}

func (Ninja) Name() string                     { return GeneratorNinja }
func (Ninja) Tool() (string, string)           { return "NINJA", "ninja" }
func (Ninja) FirstFile(basename string) string { return "build.pmgen-" + basename + ".ninja" }
func (Ninja) SecondFile() string               { return "build.ninja" }

func (Ninja) Command(tool, file, goal string) []string {
	argv := []string{tool, "-f", file}
	if goal != "" {
		argv = append(argv, goal)
	}
	return argv
}

var ninjaPathEscaper = strings.NewReplacer("$", "$$", ":", "$:", " ", "$ ")

func quote(s string) string { return ninjaPathEscaper.Replace(s) }

func (Ninja) Generate(g *Graph, t time.Time) string {
	var sb strings.Builder

	writeln(&sb, header(t))
	writeln(&sb, "ninja_required_version = 1.1")
	for _, v := range g.Variables {
		writeln(&sb, v.Name, " = ", v.Value)
	}
	writeln(&sb)

	all := append(append([]Target{}, g.Targets...), g.Clean...)
	for i, target := range all {
		if len(target.Recipe) == 0 {
			continue
		}
		rule := fmt.Sprintf("r%d", i)
		commands := make([]string, len(target.Recipe))
		for j, line := range target.Recipe {
			commands[j] = ninjaCommand(line, g.Variables)
		}
		writeln(&sb, "rule ", rule)
		writeln(&sb, "  command = ", strings.Join(commands, " && "))
		writeln(&sb, "  description = ", target.Name)
		writeln(&sb)
	}

	for i, target := range all {
		write(&sb, "build ", quote(target.Name), ": ")
		if len(target.Recipe) == 0 {
			write(&sb, "phony")
		} else {
			write(&sb, fmt.Sprintf("r%d", i))
		}
		for _, prereq := range target.Prerequisites {
			write(&sb, " ", quote(prereq))
		}
		writeln(&sb)
	}

	if d := g.Default(); d != nil {
		writeln(&sb)
		writeln(&sb, "default ", quote(d.Name))
	}
	return sb.String()
}

// ninjaCommand escapes '$' for ninja and turns make-style $(NAME) references
// to known variables into ${NAME}.
func ninjaCommand(line string, vars []Variable) string {
	var sb strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] != '$' {
			sb.WriteByte(line[i])
			continue
		}
		matched := false
		for _, v := range vars {
			ref := "$(" + v.Name + ")"
			if strings.HasPrefix(line[i:], ref) {
				sb.WriteString("${" + v.Name + "}")
				i += len(ref) - 1
				matched = true
				break
			}
		}
		if !matched {
			sb.WriteString("$$")
		}
	}
	return sb.String()
}
