// pmgen <module>...
package cmd

import (
	"os"
	"strings"

	"github.com/nim-pymod/pmgen/internal/builder"
	"github.com/nim-pymod/pmgen/internal/builder/gen"
	"github.com/nim-pymod/pmgen/internal/msg"
	"github.com/nim-pymod/pmgen/internal/runner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flagPymodName      string
	flagPyarrayEnabled bool
	flagRelease        bool
	flagConfig         string
	flagPython         string
	flagPaths          []string
	flagGenerator      EnumValue = NewEnumValue(gen.GeneratorMake, map[string]string{
		gen.GeneratorMake:  "Generates Makefiles and builds with make (default)",
		gen.GeneratorNinja: "Generates build.ninja files and builds with ninja",
	})
)

func buildOptions(modules []string) builder.Options {
	return builder.Options{
		Modules:        modules,
		PymodName:      flagPymodName,
		PyarrayEnabled: flagPyarrayEnabled,
		Release:        flagRelease,
		Generator:      flagGenerator.Value(),
		ConfigFile:     flagConfig,
		ModulePaths:    flagPaths,
		Python:         flagPython,
	}
}

func doBuild(cmd *cobra.Command, args []string) {
	b, err := builder.NewBuilder(buildOptions(args), runner.New())
	if err != nil {
		msg.Fatal("%v", err)
	}
	if err := b.Build(cmd.Context()); err != nil {
		msg.Fatal("%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pmgen <module.nim>...",
	Short: "Build Python extension modules from Nim modules",
	Long: `Generate Python C-API wrappers for the given Nim modules and compile each
into a Python extension module in the current directory. Intermediate files
go into the pmgen/ subdirectory.

A module named like a subcommand (clean, init, help, completion) must be given
with its extension, e.g. "pmgen clean.nim".`,
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	SilenceErrors:      true,
	SilenceUsage:       true,
	Run:                doBuild,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagPymodName, "pymodName", "", "Name of the combined Python module")
	f.BoolVar(&flagPyarrayEnabled, "pyarrayEnabled", false, "Enable NumPy array support")
	f.BoolVarP(&flagRelease, "release", "r", false, "Build in release mode")
	f.StringVarP(&flagConfig, "config", "c", "", "Settings file (default pymod.cfg, then pymod.toml)")
	f.StringArrayVar(&flagPaths, "path", nil, "Extra module search path for the Nim compiler (repeatable)")
	f.StringVar(&flagPython, "python", "", "Python interpreter to build against (default $PYTHON or python3)")
	addGenFlag(rootCmd)
}

func addGenFlag(cmd *cobra.Command) {
	cmd.Flags().VarP(&flagGenerator, "gen", "g", "Generator to build with, one of "+flagGenerator.HelpString())
	cmd.RegisterFlagCompletionFunc("gen", flagGenerator.CompletionFunc())
}

// knownArgs drops the flags the selected command does not define. pflag would
// otherwise take the argument after an unknown flag as its value.
func knownArgs(root *cobra.Command, args []string) []string {
	if len(args) > 0 && strings.HasPrefix(args[0], "__complete") {
		return args
	}
	target, _, err := root.Find(args)
	if err != nil {
		target = root
	}
	target.InitDefaultHelpFlag()
	flags := target.Flags()

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if len(arg) < 2 || arg[0] != '-' {
			out = append(out, arg)
			continue
		}

		var fl *pflag.Flag
		var inline bool
		if strings.HasPrefix(arg, "--") {
			var name string
			name, _, inline = strings.Cut(arg[2:], "=")
			fl = flags.Lookup(name)
		} else {
			fl = flags.ShorthandLookup(arg[1:2])
			inline = len(arg) > 2
		}
		if fl == nil {
			continue
		}
		out = append(out, arg)
		if !inline && fl.NoOptDefVal == "" && i+1 < len(args) {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

func Execute() {
	rootCmd.SetArgs(knownArgs(rootCmd, os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		msg.Fatal("%v", err)
	}
}
