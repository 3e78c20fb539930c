package irgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xiaobogaga/jmm/compiler/internal/ast"
	"github.com/xiaobogaga/jmm/compiler/internal/symboltable"
	"github.com/xiaobogaga/jmm/compiler/internal/types"
)

// Lowering to the three-address text form. Every expression is visited into an exprResult: the
// instructions that must run first (computation) and the text that stands for the value (code).
// Operands of an instruction must be simple (a literal, a variable or this), anything else is
// first stored into a fresh temporary.

var ErrUnresolved = errors.New("cannot lower expression")

type exprKind int

const (
	exprSimple exprKind = iota
	exprOp              // binary or unary operation, allowed as assignment value and branch condition
	exprCall
	exprOther
)

type exprResult struct {
	code        string
	computation string
	kind        exprKind
	typ         types.Type
}

// Generator holds the lowering state of one compilation. Temporaries and labels are numbered
// from zero for every Generator, so equal inputs give equal output.
type Generator struct {
	res          *types.Resolver
	table        *symboltable.SymbolTable
	method       *ast.MethodDecl
	tempCounter  int
	labelCounter int
	output       *strings.Builder
}

func NewGenerator(res *types.Resolver) *Generator {
	return &Generator{res: res, table: res.Table(), output: &strings.Builder{}}
}

// Generate lowers prog with a fresh Generator.
func Generate(prog *ast.Program, res *types.Resolver) (string, error) {
	return NewGenerator(res).Generate(prog)
}

func (gen *Generator) Generate(prog *ast.Program) (string, error) {
	if prog == nil || prog.Class == nil {
		return "", fmt.Errorf("%w: program without a class", ErrUnresolved)
	}
	gen.output = &strings.Builder{}
	gen.tempCounter, gen.labelCounter = 0, 0
	for _, imp := range prog.Imports {
		gen.writeOutput(fmt.Sprintf("import %s;", imp.DottedPath()))
	}
	class := prog.Class
	header := class.Name
	if class.Super != "" {
		header += " extends " + class.Super
	}
	gen.writeOutput(header + " {")
	for _, field := range gen.table.Fields() {
		gen.writeOutput(fmt.Sprintf(".field private %s%s;", field.Name, irType(field.Type)))
	}
	gen.writeOutput("")
	gen.writeOutput(fmt.Sprintf(".construct %s().V {", class.Name))
	gen.writeOutput(`invokespecial(this, "<init>").V;`)
	gen.writeOutput("}")
	for _, method := range class.Methods {
		err := gen.generateMethod(method)
		if err != nil {
			return "", err
		}
	}
	gen.writeOutput("}")
	return gen.output.String(), nil
}

func (gen *Generator) generateMethod(method *ast.MethodDecl) error {
	gen.method = method
	defer func() { gen.method = nil }()
	modifiers := ""
	if method.IsPublic || method.Name == "main" {
		modifiers += "public "
	}
	if gen.table.IsStatic(method.Name) {
		modifiers += "static "
	}
	var params []string
	for _, param := range method.Params {
		params = append(params, param.Name+irType(symboltable.TypeOf(param.Type)))
	}
	ret := symboltable.Void
	if method.ReturnType != nil && method.Name != "main" {
		ret = symboltable.TypeOf(method.ReturnType)
	}
	gen.writeOutput("")
	gen.writeOutput(fmt.Sprintf(".method %s%s(%s)%s {", modifiers, method.Name, strings.Join(params, ", "), irType(ret)))
	for _, stmt := range method.Body {
		err := gen.generateStmt(stmt)
		if err != nil {
			return err
		}
	}
	if ret == symboltable.Void && !endsWithReturn(method.Body) {
		gen.writeOutput("ret.V;")
	}
	gen.writeOutput("}")
	return nil
}

func endsWithReturn(body []ast.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(*ast.ReturnStmt)
	return ok
}

func (gen *Generator) writeOutput(line string) {
	gen.output.WriteString(line)
	gen.output.WriteString("\n")
}

// emit writes the pending computation of an expression.
func (gen *Generator) emit(computation string) {
	gen.output.WriteString(computation)
}

func (gen *Generator) nextTemp() string {
	name := fmt.Sprintf("tmp%d", gen.tempCounter)
	gen.tempCounter++
	return name
}

func (gen *Generator) nextLabel() int {
	n := gen.labelCounter
	gen.labelCounter++
	return n
}

// irType renders the type suffix, dot included.
func irType(t types.Type) string {
	name := t.Name
	switch t.Name {
	case "int":
		name = "i32"
	case "boolean":
		name = "bool"
	case "void":
		name = "V"
	}
	if t.IsArray {
		return ".array." + name
	}
	return "." + name
}

func makeUnresolvedError(node ast.Node, format string, args ...interface{}) error {
	pos := node.Position()
	return fmt.Errorf("%w: line %d col %d: %s", ErrUnresolved, pos.Line, pos.Col, fmt.Sprintf(format, args...))
}
