package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xiaobogaga/jmm/compiler/internal/analysis"
	"github.com/xiaobogaga/jmm/compiler/internal/ast"
	"github.com/xiaobogaga/jmm/compiler/internal/ir"
	"github.com/xiaobogaga/jmm/compiler/internal/irgen"
	"github.com/xiaobogaga/jmm/compiler/internal/jasmin"
	"github.com/xiaobogaga/jmm/compiler/internal/symboltable"
	"github.com/xiaobogaga/jmm/compiler/internal/types"
)

var ErrSemantic = errors.New("semantic errors")

type Options struct {
	// SkipCheck bypasses semantic analysis and lowers the program as is.
	SkipCheck bool
	Logger    *slog.Logger
}

func (opts Options) logger() *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Result holds what each stage produced. Later fields stay empty when an earlier stage fails.
type Result struct {
	Table       *symboltable.SymbolTable
	Diagnostics []analysis.Diagnostic
	IR          string
	Class       *ir.ClassUnit
	Jasmin      string
}

// Check builds the symbol table and runs semantic analysis only.
func Check(prog *ast.Program, opts Options) (*Result, *types.Resolver, error) {
	logger := opts.logger()
	result := &Result{}
	logger.Info("compiler: start building symbol table")
	table, err := symboltable.Build(prog)
	if err != nil {
		return result, nil, err
	}
	result.Table = table
	res := types.NewResolver(prog, table)
	if opts.SkipCheck {
		return result, res, nil
	}
	logger.Info("compiler: start semantic analysis")
	for _, analyzer := range analysis.Analyzers() {
		diags := analysis.RunAnalyzers(prog, res, analyzer)
		logger.Debug("compiler: analyzer done", "analyzer", analyzer.Name(), "diagnostics", len(diags))
		result.Diagnostics = append(result.Diagnostics, diags...)
	}
	logger.Debug("compiler: semantic analysis done", "diagnostics", len(result.Diagnostics))
	if len(result.Diagnostics) > 0 {
		return result, res, fmt.Errorf("%w: %d found", ErrSemantic, len(result.Diagnostics))
	}
	return result, res, nil
}

// Compile runs the whole pipeline: symbol table, semantic analysis, IR text, IR model and
// bytecode text.
func Compile(prog *ast.Program, opts Options) (*Result, error) {
	logger := opts.logger()
	result, res, err := Check(prog, opts)
	if err != nil {
		return result, err
	}
	logger.Info("compiler: start generating ir")
	result.IR, err = irgen.Generate(prog, res)
	if err != nil {
		return result, err
	}
	logger.Debug("compiler: ir generated", "bytes", len(result.IR))
	result.Class, result.Jasmin, err = backend(strings.NewReader(result.IR), logger)
	return result, err
}

// Backend turns IR text into bytecode text.
func Backend(rd io.Reader, opts Options) (*ir.ClassUnit, string, error) {
	return backend(rd, opts.logger())
}

func backend(rd io.Reader, logger *slog.Logger) (*ir.ClassUnit, string, error) {
	logger.Info("compiler: start parsing ir")
	class, err := ir.Parse(rd)
	if err != nil {
		return nil, "", err
	}
	logger.Debug("compiler: ir parsed", "class", class.Name, "methods", len(class.Methods))
	logger.Info("compiler: start generating jasmin")
	code, err := jasmin.New(class).Build()
	if err != nil {
		return class, "", err
	}
	return class, code, nil
}
