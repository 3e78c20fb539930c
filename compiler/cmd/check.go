package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaobogaga/jmm/compiler/internal"
)

// check: report semantic errors
var CheckCmd = &cobra.Command{
	Use:   "check <tree.json>",
	Short: "Report semantic errors of a syntax tree",
	Args:  cobra.ExactArgs(1),
	RunE:  checkRun,
}

func checkRun(cmd *cobra.Command, args []string) error {
	prog, err := decodeFile(args[0])
	if err != nil {
		return err
	}
	result, _, err := internal.Check(prog, options(cmd))
	printDiagnostics(cmd.OutOrStdout(), result)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✔︎ %s: no semantic errors\n", args[0])
	return nil
}
