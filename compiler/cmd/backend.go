package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xiaobogaga/jmm/compiler/internal"
)

// backend: OLLIR -> .j
var BackendCmd = &cobra.Command{
	Use:   "backend <file.ollir>",
	Short: "Turn an OLLIR file into a .j file",
	Args:  cobra.ExactArgs(1),
	RunE:  backendRun,
}

func backendRun(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	class, code, err := internal.Backend(f, options(cmd))
	if err != nil {
		return err
	}
	outFile, err := writeJasmin(class.Name, code)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✔︎ wrote Jasmin to %s\n", outFile)
	return nil
}
