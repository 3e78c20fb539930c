package analysis

import (
	"github.com/xiaobogaga/jmm/compiler/internal/ast"
	"github.com/xiaobogaga/jmm/compiler/internal/symboltable"
	"github.com/xiaobogaga/jmm/compiler/internal/types"
)

// UndeclaredVariables reports identifiers, including assignment targets, that resolve to
// nothing, and fields used from a static method. The class name and its superclass name are
// accepted as references. Class names in declarations and in new expressions must be the
// class itself, its superclass or an import.
type UndeclaredVariables struct{}

func (UndeclaredVariables) Name() string { return "undeclared-variables" }

func (UndeclaredVariables) Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic {
	r := &reporter{}
	check := func(m *ast.MethodDecl, node ast.Node, name string) {
		_, kind, ok := res.LookupVar(m, name)
		if !ok {
			r.report(node, UndeclaredVariable, "%s in method %s", name, m.Name)
			return
		}
		if kind == types.VarField && res.Table().IsStatic(m.Name) {
			r.report(node, StaticFieldAccess, "field %s used in static method %s", name, m.Name)
		}
	}
	checkType := func(t *ast.TypeNode) {
		if t != nil && !knownClass(res.Table(), t.Name) {
			r.report(t, UnknownClass, "%s", t.Name)
		}
	}
	for _, field := range prog.Class.Fields {
		checkType(field.Type)
	}
	for _, method := range prog.Class.Methods {
		checkType(method.ReturnType)
		for _, param := range method.Params {
			checkType(param.Type)
		}
		for _, local := range method.Locals {
			checkType(local.Type)
		}
	}
	inspectBodies(prog, func(m *ast.MethodDecl, n ast.Node) {
		switch n := n.(type) {
		case *ast.NewObjectExpr:
			if !knownClass(res.Table(), n.Class) {
				r.report(n, UnknownClass, "new %s in method %s", n.Class, m.Name)
			}
		case *ast.VarRefExpr:
			check(m, n, n.Name)
		case *ast.AssignStmt:
			check(m, n, n.Name)
		case *ast.ArrayAssignStmt:
			check(m, n, n.Name)
		}
	})
	return r.diags
}

func knownClass(table *symboltable.SymbolTable, name string) bool {
	switch name {
	case "int", "boolean", "String", "void":
		return true
	}
	super, _ := table.Super()
	return name == table.ClassName() || name == super || table.IsImported(name)
}

type ThisUsage struct{}

func (ThisUsage) Name() string { return "this-usage" }

func (ThisUsage) Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic {
	r := &reporter{}
	inspectBodies(prog, func(m *ast.MethodDecl, n ast.Node) {
		if _, ok := n.(*ast.ThisExpr); ok && res.Table().IsStatic(m.Name) {
			r.report(n, ThisInStaticContext, "method %s", m.Name)
		}
	})
	return r.diags
}
