package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaobogaga/jmm/compiler/internal"
)

// ollir: print the intermediate representation
var OllirCmd = &cobra.Command{
	Use:   "ollir <tree.json>",
	Short: "Print the OLLIR of a syntax tree",
	Args:  cobra.ExactArgs(1),
	RunE:  ollirRun,
}

func ollirRun(cmd *cobra.Command, args []string) error {
	prog, err := decodeFile(args[0])
	if err != nil {
		return err
	}
	result, err := internal.Compile(prog, options(cmd))
	printDiagnostics(cmd.ErrOrStderr(), result)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), result.IR)
	return nil
}
