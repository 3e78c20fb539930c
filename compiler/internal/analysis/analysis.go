package analysis

import (
	"fmt"

	"github.com/xiaobogaga/jmm/compiler/internal/ast"
	"github.com/xiaobogaga/jmm/compiler/internal/types"
)

const StageSemantic = "SEMANTIC"

// Message classes. A diagnostic message always starts with one of these, followed by details.
const (
	ArrayAccessOverNonArray = "array access over non-array"
	IndexNotInt             = "index not int"
	LengthOnNonArray        = "length on non-array"
	IncompatibleAssignment  = "incompatible assignment"
	ArrayInitializerNotInts = "array initializer not all ints"
	OperandTypeMismatch     = "operand type mismatch"
	ConditionNotBoolean     = "condition not boolean"
	DuplicateParameter      = "duplicate parameter"
	DuplicateVariable       = "duplicate variable"
	DuplicateField          = "duplicate field"
	DuplicateMethod         = "duplicate method"
	DuplicateImport         = "duplicate import"
	UnknownMethod           = "unknown method"
	ArityTypeMismatch       = "arity/type mismatch"
	ReturnTypeMismatch      = "return type mismatch"
	ThisInStaticContext     = "this in static context"
	UndeclaredVariable      = "undeclared variable"
	UnknownClass            = "unknown class"
	StaticFieldAccess       = "static field access"
	InvalidVararg           = "invalid vararg"
)

type Diagnostic struct {
	Stage   string
	Line    int
	Col     int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s error at line %d col %d: %s", d.Stage, d.Line, d.Col, d.Message)
}

// Analyzer is one independent check. It reads the program and may resolve types but never
// changes what the program means.
type Analyzer interface {
	Name() string
	Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic
}

// Analyzers returns the default checks in the order Run applies them.
func Analyzers() []Analyzer {
	return []Analyzer{
		DuplicateImports{},
		Duplicates{},
		Varargs{},
		UndeclaredVariables{},
		ThisUsage{},
		ArrayChecks{},
		BinaryOperands{},
		Conditions{},
		Assignments{},
		MethodCalls{},
		Returns{},
	}
}

func Run(prog *ast.Program, res *types.Resolver) []Diagnostic {
	return RunAnalyzers(prog, res, Analyzers()...)
}

func RunAnalyzers(prog *ast.Program, res *types.Resolver, analyzers ...Analyzer) []Diagnostic {
	var diags []Diagnostic
	if prog == nil || prog.Class == nil {
		return diags
	}
	for _, analyzer := range analyzers {
		diags = append(diags, analyzer.Analyze(prog, res)...)
	}
	return diags
}

type reporter struct {
	diags []Diagnostic
}

func (r *reporter) report(node ast.Node, class string, format string, args ...interface{}) {
	pos := node.Position()
	msg := class
	if format != "" {
		msg = class + ": " + fmt.Sprintf(format, args...)
	}
	r.diags = append(r.diags, Diagnostic{Stage: StageSemantic, Line: pos.Line, Col: pos.Col, Message: msg})
}

// inspectBodies visits every node inside the statements of every method.
func inspectBodies(prog *ast.Program, f func(m *ast.MethodDecl, n ast.Node)) {
	for _, method := range prog.Class.Methods {
		m := method
		for _, stmt := range m.Body {
			ast.Inspect(stmt, func(n ast.Node) bool {
				f(m, n)
				return true
			})
		}
	}
}
