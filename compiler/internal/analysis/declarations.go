package analysis

import (
	"github.com/xiaobogaga/jmm/compiler/internal/ast"
	"github.com/xiaobogaga/jmm/compiler/internal/types"
)

// DuplicateImports reports an import whose dotted path or trailing name was already imported.
// A name repeated several times is reported once.
type DuplicateImports struct{}

func (DuplicateImports) Name() string { return "duplicate-imports" }

func (DuplicateImports) Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic {
	r := &reporter{}
	paths := map[string]bool{}
	names := map[string]bool{}
	reported := map[string]bool{}
	for _, imp := range prog.Imports {
		path, name := imp.DottedPath(), imp.SimpleName()
		if paths[path] || names[name] {
			if !reported[name] {
				reported[name] = true
				r.report(imp, DuplicateImport, "%s", path)
			}
			continue
		}
		paths[path] = true
		names[name] = true
	}
	return r.diags
}

// Duplicates reports fields, methods, parameters and locals declared twice in the same scope.
type Duplicates struct{}

func (Duplicates) Name() string { return "duplicates" }

func (Duplicates) Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic {
	r := &reporter{}
	class := prog.Class
	fields := map[string]bool{}
	for _, field := range class.Fields {
		if fields[field.Name] {
			r.report(field, DuplicateField, "%s", field.Name)
		}
		fields[field.Name] = true
	}
	methods := map[string]bool{}
	for _, method := range class.Methods {
		if methods[method.Name] {
			r.report(method, DuplicateMethod, "%s", method.Name)
		}
		methods[method.Name] = true

		params := map[string]bool{}
		for _, param := range method.Params {
			if params[param.Name] {
				r.report(param, DuplicateParameter, "%s in method %s", param.Name, method.Name)
			}
			params[param.Name] = true
		}
		locals := map[string]bool{}
		for _, local := range method.Locals {
			if locals[local.Name] || params[local.Name] {
				r.report(local, DuplicateVariable, "%s in method %s", local.Name, method.Name)
			}
			locals[local.Name] = true
		}
	}
	return r.diags
}

// Varargs enforces that a vararg parameter is the last one and appears at most once per method,
// and that nothing else is declared vararg.
type Varargs struct{}

func (Varargs) Name() string { return "varargs" }

func (Varargs) Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic {
	r := &reporter{}
	for _, field := range prog.Class.Fields {
		if field.Type != nil && field.Type.IsVararg {
			r.report(field, InvalidVararg, "field %s cannot be vararg", field.Name)
		}
	}
	for _, method := range prog.Class.Methods {
		if method.ReturnType != nil && method.ReturnType.IsVararg {
			r.report(method.ReturnType, InvalidVararg, "return type of %s cannot be vararg", method.Name)
		}
		seen := false
		for i, param := range method.Params {
			if param.Type == nil || !param.Type.IsVararg {
				continue
			}
			if seen {
				r.report(param, InvalidVararg, "method %s declares more than one vararg parameter", method.Name)
			} else if i != len(method.Params)-1 {
				r.report(param, InvalidVararg, "vararg parameter %s of %s must be the last one", param.Name, method.Name)
			}
			seen = true
		}
		for _, local := range method.Locals {
			if local.Type != nil && local.Type.IsVararg {
				r.report(local, InvalidVararg, "variable %s cannot be vararg", local.Name)
			}
		}
	}
	return r.diags
}
