package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/xiaobogaga/jmm/compiler/internal"
	"github.com/xiaobogaga/jmm/compiler/internal/ast"
)

var (
	outDir    string
	verbose   bool
	skipCheck bool
)

var rootCmd = &cobra.Command{
	Use:   "jmmc",
	Short: "jmmc compiles Java-- syntax trees to Jasmin assembly",
	Long: `jmmc is the back half of a Java-- compiler. It reads the syntax tree produced by the
parser as JSON, checks it, lowers it to OLLIR and emits Jasmin assembly.

Commands:
  check    Report semantic errors of a syntax tree
  ollir    Print the OLLIR of a syntax tree
  jasmin   Compile a syntax tree into a .j file
  backend  Turn an OLLIR file into a .j file
`,
	SilenceUsage: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "out", "output directory for .j files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every stage with details")
	rootCmd.PersistentFlags().BoolVar(&skipCheck, "skip-check", false, "skip semantic analysis")

	rootCmd.AddCommand(CheckCmd, OllirCmd, JasminCmd, BackendCmd)
}

func options(cmd *cobra.Command) internal.Options {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return internal.Options{SkipCheck: skipCheck, Logger: logger}
}

func decodeFile(path string) (*ast.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ast.Decode(f)
}

func printDiagnostics(w io.Writer, result *internal.Result) {
	for _, diag := range result.Diagnostics {
		io.WriteString(w, diag.String()+"\n")
	}
}
