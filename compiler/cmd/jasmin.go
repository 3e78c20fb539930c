package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xiaobogaga/jmm/compiler/internal"
)

// jasmin: compile a syntax tree into a .j file
var JasminCmd = &cobra.Command{
	Use:   "jasmin <tree.json>",
	Short: "Compile a syntax tree into a .j file",
	Args:  cobra.ExactArgs(1),
	RunE:  jasminRun,
}

func jasminRun(cmd *cobra.Command, args []string) error {
	prog, err := decodeFile(args[0])
	if err != nil {
		return err
	}
	result, err := internal.Compile(prog, options(cmd))
	printDiagnostics(cmd.ErrOrStderr(), result)
	if err != nil {
		return err
	}
	outFile, err := writeJasmin(result.Class.Name, result.Jasmin)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✔︎ wrote Jasmin to %s\n", outFile)
	return nil
}

func writeJasmin(className, code string) (string, error) {
	err := os.MkdirAll(outDir, 0755)
	if err != nil {
		return "", err
	}
	outFile := filepath.Join(outDir, className+".j")
	return outFile, os.WriteFile(outFile, []byte(code), 0644)
}
