// pmgen clean
package cmd

import (
	"github.com/nim-pymod/pmgen/internal/builder"
	"github.com/nim-pymod/pmgen/internal/msg"
	"github.com/nim-pymod/pmgen/internal/runner"
	"github.com/spf13/cobra"
)

var cleanAll bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated files from the pmgen/ directory",
	Long: `Remove the files pmgen generated in the pmgen/ directory.
With --all, also remove the compiled extension modules.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		b, err := builder.NewBuilder(builder.Options{Generator: flagGenerator.Value()}, runner.New())
		if err != nil {
			msg.Fatal("%v", err)
		}
		if err := b.Clean(cmd.Context(), cleanAll); err != nil {
			msg.Fatal("%v", err)
		}
	},
}

func init() {
	// pmgen clean subcommand
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanAll, "all", "a", false, "Also remove the compiled .so files")
	addGenFlag(cleanCmd)
}
