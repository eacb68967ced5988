// pmgen init
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/nim-pymod/pmgen/internal/builder"
	"github.com/nim-pymod/pmgen/internal/msg"
	"github.com/nim-pymod/pmgen/internal/settings"
	"github.com/spf13/cobra"
)

// writefile creates the file unless it already exists.
func writefile(content string, elem ...string) bool {
	path := filepath.Join(elem...)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
			msg.Fatal("create file %s: %v", path, err)
		}
		fmt.Fprintf(msg.Stdout, "%s file: %s\n", color.HiGreenString("Created"), filepath.ToSlash(path))
		return true
	}
	msg.Warn("%s already exists, leaving it alone", filepath.ToSlash(path))
	return false
}

const sampleINI = `; Settings for pmgen. Keys may be repeated; every value is used.

[` + settings.SectionAll + `]
; Build in release mode (same as --release).
` + settings.KeySetIsRelease + ` = false

; Extra directories for the Nim compiler to search for imported modules,
; relative to the directory pmgen is run from.
; ` + settings.KeyAddModulePath + ` = "../shared"
`

const sampleTOML = `# Settings for pmgen.

[` + settings.SectionAll + `]
# Build in release mode (same as --release).
` + settings.KeySetIsRelease + ` = false

# Extra directories for the Nim compiler to search for imported modules,
# relative to the directory pmgen is run from.
` + settings.KeyAddModulePath + ` = []

# Conditional sections apply when their expression is true.
# Available: target_os, target_arch, environ.
[` + settings.SectionAll + `."target_os == 'darwin'"]
` + settings.KeyAddModulePath + ` = []
`

// initIn writes a sample settings file and a .gitignore into dir.
func initIn(dir string, toml bool) {
	if toml {
		writefile(sampleTOML, dir, settings.TOMLFile)
	} else {
		writefile(sampleINI, dir, settings.DefaultFile)
	}

	// .gitignore
	writefile(builder.WorkDir+"/\n*"+builder.BinaryExt+"\n", dir, ".gitignore")

	programName := msg.ProgramName()
	fmt.Fprintf(msg.Stdout, "You can now do %s to build, and %s to clean up.\n",
		color.HiCyanString(programName+" <module.nim>"), color.HiCyanString(programName+" clean"))
}

var initTOML bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a sample settings file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
			if err := os.MkdirAll(dir, 0o755); err != nil {
				msg.Fatal("mkdir %s: %v", dir, err)
			}
		}
		initIn(dir, initTOML)
	},
}

func init() {
	// pmgen init subcommand
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initTOML, "toml", false, "Write "+settings.TOMLFile+" instead of "+settings.DefaultFile)
}
