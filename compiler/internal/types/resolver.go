package types

import (
	"github.com/xiaobogaga/jmm/compiler/internal/ast"
	"github.com/xiaobogaga/jmm/compiler/internal/symboltable"
)

type Type = symboltable.Type

// VarKind says where an identifier was found.
type VarKind int

const (
	VarLocal VarKind = iota
	VarParam
	VarField
	VarImport
	VarSuper
	VarClass
)

type resolved struct {
	t  Type
	ok bool
}

// Resolver computes expression types on demand. Every result, including a failure, is cached
// the first time it is computed and returned unchanged afterwards.
type Resolver struct {
	table    *symboltable.SymbolTable
	methods  map[ast.Node]*ast.MethodDecl
	expected map[ast.Expr]Type
	cache    map[ast.Expr]resolved
}

func NewResolver(prog *ast.Program, table *symboltable.SymbolTable) *Resolver {
	res := &Resolver{
		table:    table,
		methods:  map[ast.Node]*ast.MethodDecl{},
		expected: map[ast.Expr]Type{},
		cache:    map[ast.Expr]resolved{},
	}
	if prog == nil || prog.Class == nil {
		return res
	}
	for _, method := range prog.Class.Methods {
		m := method
		ast.Inspect(m, func(n ast.Node) bool {
			res.methods[n] = m
			return true
		})
		for _, stmt := range m.Body {
			res.annotateStmt(m, stmt)
		}
	}
	return res
}

func (res *Resolver) Table() *symboltable.SymbolTable { return res.table }

// LookupVar resolves an identifier inside method m. The order is local variable, parameter,
// field, import, superclass name and finally the class's own name.
func (res *Resolver) LookupVar(m *ast.MethodDecl, name string) (Type, VarKind, bool) {
	if m != nil {
		for _, local := range m.Locals {
			if local.Name == name && local.Type != nil {
				return symboltable.TypeOf(local.Type), VarLocal, true
			}
		}
		for _, param := range m.Params {
			if param.Name == name && param.Type != nil {
				return symboltable.TypeOf(param.Type), VarParam, true
			}
		}
	}
	if f, ok := res.table.Field(name); ok {
		return f.Type, VarField, true
	}
	if res.table.IsImported(name) {
		return Type{Name: name}, VarImport, true
	}
	if super, ok := res.table.Super(); ok && super == name {
		return Type{Name: name}, VarSuper, true
	}
	if res.table.ClassName() == name {
		return Type{Name: name}, VarClass, true
	}
	return Type{}, 0, false
}

// Resolve returns the static type of e. The boolean is false when e cannot be typed, e.g. an
// undeclared identifier or a call to an unknown method; checks report those by name.
func (res *Resolver) Resolve(e ast.Expr) (Type, bool) {
	if e == nil {
		return Type{}, false
	}
	if r, ok := res.cache[e]; ok {
		return r.t, r.ok
	}
	t, ok := res.resolve(e)
	if _, done := res.cache[e]; !done {
		res.cache[e] = resolved{t: t, ok: ok}
	}
	r := res.cache[e]
	return r.t, r.ok
}

func (res *Resolver) resolve(e ast.Expr) (Type, bool) {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		return symboltable.Int, true
	case *ast.BooleanLiteral:
		return symboltable.Boolean, true
	case *ast.ThisExpr:
		return Type{Name: res.table.ClassName()}, true
	case *ast.ParenExpr:
		return res.Resolve(e.X)
	case *ast.NewObjectExpr:
		return Type{Name: e.Class}, true
	case *ast.NewArrayExpr, *ast.ArrayLiteral:
		return symboltable.IntArray, true
	case *ast.ArrayLengthExpr:
		return symboltable.Int, true
	case *ast.NotExpr:
		return symboltable.Boolean, true
	case *ast.BinaryExpr:
		if e.Op.IsArithmetic() {
			return symboltable.Int, true
		}
		return symboltable.Boolean, true
	case *ast.ArrayAccessExpr:
		t, ok := res.Resolve(e.Array)
		if !ok {
			return Type{}, false
		}
		return t.Elem(), true
	case *ast.VarRefExpr:
		t, _, ok := res.LookupVar(res.methods[e], e.Name)
		return t, ok
	case *ast.MethodCallExpr:
		return res.resolveCall(e)
	}
	return Type{}, false
}

func (res *Resolver) resolveCall(call *ast.MethodCallExpr) (Type, bool) {
	recv, ok := res.Resolve(call.Receiver)
	if !ok || recv.IsArray {
		return Type{}, false
	}
	table := res.table
	if recv.Name == table.ClassName() {
		if t, ok := table.ReturnType(call.Name); ok {
			return t, true
		}
		if table.SuperIsImported() {
			super, _ := table.Super()
			return Type{Name: super}, true
		}
		return Type{}, false
	}
	if table.IsImported(recv.Name) {
		if t, ok := res.expected[call]; ok {
			return t, true
		}
		return recv, true
	}
	return Type{}, false
}

// IsOwnClassCall reports whether call targets a method of the class being compiled.
func (res *Resolver) IsOwnClassCall(call *ast.MethodCallExpr) bool {
	recv, ok := res.Resolve(call.Receiver)
	return ok && !recv.IsArray && recv.Name == res.table.ClassName()
}

func (res *Resolver) expect(e ast.Expr, t Type) {
	if e == nil {
		return
	}
	res.expected[e] = t
	if inner := ast.Unparen(e); inner != e {
		res.expected[inner] = t
	}
}

func (res *Resolver) annotateStmt(m *ast.MethodDecl, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			res.annotateStmt(m, inner)
		}
	case *ast.IfStmt:
		res.expect(s.Cond, symboltable.Boolean)
		res.annotateExpr(s.Cond)
		if s.Then != nil {
			res.annotateStmt(m, s.Then)
		}
		if s.Else != nil {
			res.annotateStmt(m, s.Else)
		}
	case *ast.WhileStmt:
		res.expect(s.Cond, symboltable.Boolean)
		res.annotateExpr(s.Cond)
		if s.Body != nil {
			res.annotateStmt(m, s.Body)
		}
	case *ast.ExprStmt:
		res.expect(s.X, symboltable.Void)
		res.annotateExpr(s.X)
	case *ast.AssignStmt:
		if t, _, ok := res.LookupVar(m, s.Name); ok {
			res.expect(s.Value, t)
		}
		res.annotateExpr(s.Value)
	case *ast.ArrayAssignStmt:
		res.expect(s.Index, symboltable.Int)
		elem := symboltable.Int
		if t, _, ok := res.LookupVar(m, s.Name); ok && t.IsArray {
			elem = t.Elem()
		}
		res.expect(s.Value, elem)
		res.annotateExpr(s.Index)
		res.annotateExpr(s.Value)
	case *ast.ReturnStmt:
		if m.ReturnType != nil {
			res.expect(s.Value, symboltable.TypeOf(m.ReturnType))
		}
		res.annotateExpr(s.Value)
	}
}

// annotateExpr records what each operand is expected to produce, top down, so a call on an
// imported receiver can borrow its type from the context.
func (res *Resolver) annotateExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.ParenExpr:
		res.annotateExpr(e.X)
	case *ast.BinaryExpr:
		operand := symboltable.Int
		if e.Op == ast.OpAnd {
			operand = symboltable.Boolean
		}
		res.expect(e.X, operand)
		res.expect(e.Y, operand)
		res.annotateExpr(e.X)
		res.annotateExpr(e.Y)
	case *ast.NotExpr:
		res.expect(e.X, symboltable.Boolean)
		res.annotateExpr(e.X)
	case *ast.ArrayAccessExpr:
		res.expect(e.Array, symboltable.IntArray)
		res.expect(e.Index, symboltable.Int)
		res.annotateExpr(e.Array)
		res.annotateExpr(e.Index)
	case *ast.ArrayLengthExpr:
		res.expect(e.X, symboltable.IntArray)
		res.annotateExpr(e.X)
	case *ast.NewArrayExpr:
		res.expect(e.Size, symboltable.Int)
		res.annotateExpr(e.Size)
	case *ast.ArrayLiteral:
		for _, elem := range e.Elems {
			res.expect(elem, symboltable.Int)
			res.annotateExpr(elem)
		}
	case *ast.MethodCallExpr:
		res.annotateExpr(e.Receiver)
		params := res.ownParams(e)
		for i, arg := range e.Args {
			if t, ok := paramTypeAt(params, i); ok {
				res.expect(arg, t)
			} else {
				// Arguments to imported code are assumed to be ints, the only printable value.
				res.expect(arg, symboltable.Int)
			}
			res.annotateExpr(arg)
		}
	}
}

func (res *Resolver) ownParams(call *ast.MethodCallExpr) []symboltable.VarargSymbol {
	if !res.IsOwnClassCall(call) || !res.table.HasMethod(call.Name) {
		return nil
	}
	return res.table.Parameters(call.Name)
}

// paramTypeAt returns the type argument i must have. A trailing vararg parameter takes any
// number of elements, or the whole array when it is the only argument in that slot.
func paramTypeAt(params []symboltable.VarargSymbol, i int) (Type, bool) {
	if len(params) == 0 {
		return Type{}, false
	}
	last := params[len(params)-1]
	if last.IsVararg && i >= len(params)-1 {
		return last.Type.Elem(), true
	}
	if i < len(params) {
		return params[i].Type, true
	}
	return Type{}, false
}
