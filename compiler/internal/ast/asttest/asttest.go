// Package asttest builds syntax trees by hand for tests. Positions are left zero unless a test
// needs them.
package asttest

import "github.com/xiaobogaga/jmm/compiler/internal/ast"

func Int(v int32) *ast.IntegerLiteral { return &ast.IntegerLiteral{Value: v} }

func Bool(v bool) *ast.BooleanLiteral { return &ast.BooleanLiteral{Value: v} }

func Ident(name string) *ast.VarRefExpr { return &ast.VarRefExpr{Name: name} }

func This() *ast.ThisExpr { return &ast.ThisExpr{} }

func Not(x ast.Expr) *ast.NotExpr { return &ast.NotExpr{X: x} }

func Paren(x ast.Expr) *ast.ParenExpr { return &ast.ParenExpr{X: x} }

func Binary(op ast.BinaryOp, x, y ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: op, X: x, Y: y}
}

func Call(recv ast.Expr, name string, args ...ast.Expr) *ast.MethodCallExpr {
	return &ast.MethodCallExpr{Receiver: recv, Name: name, Args: args}
}

func Index(array, index ast.Expr) *ast.ArrayAccessExpr {
	return &ast.ArrayAccessExpr{Array: array, Index: index}
}

func Length(x ast.Expr) *ast.ArrayLengthExpr { return &ast.ArrayLengthExpr{X: x} }

func NewObject(class string) *ast.NewObjectExpr { return &ast.NewObjectExpr{Class: class} }

func NewArray(size ast.Expr) *ast.NewArrayExpr { return &ast.NewArrayExpr{Size: size} }

func ArrayLit(elems ...ast.Expr) *ast.ArrayLiteral { return &ast.ArrayLiteral{Elems: elems} }

func IntType() *ast.TypeNode { return &ast.TypeNode{Name: "int"} }

func IntArrayType() *ast.TypeNode { return &ast.TypeNode{Name: "int", IsArray: true} }

func BoolType() *ast.TypeNode { return &ast.TypeNode{Name: "boolean"} }

func VarargType() *ast.TypeNode { return &ast.TypeNode{Name: "int", IsArray: true, IsVararg: true} }

func ClassType(name string) *ast.TypeNode { return &ast.TypeNode{Name: name} }

func Var(t *ast.TypeNode, name string) *ast.VarDecl { return &ast.VarDecl{Type: t, Name: name} }

func Param(t *ast.TypeNode, name string) *ast.Param { return &ast.Param{Type: t, Name: name} }

func Assign(name string, value ast.Expr) *ast.AssignStmt {
	return &ast.AssignStmt{Name: name, Value: value}
}

func ArrayAssign(name string, index, value ast.Expr) *ast.ArrayAssignStmt {
	return &ast.ArrayAssignStmt{Name: name, Index: index, Value: value}
}

func Expr(x ast.Expr) *ast.ExprStmt { return &ast.ExprStmt{X: x} }

func Return(x ast.Expr) *ast.ReturnStmt { return &ast.ReturnStmt{Value: x} }

func Block(stmts ...ast.Stmt) *ast.BlockStmt { return &ast.BlockStmt{Stmts: stmts} }

func If(cond ast.Expr, then, els ast.Stmt) *ast.IfStmt {
	return &ast.IfStmt{Cond: cond, Then: then, Else: els}
}

func While(cond ast.Expr, body ast.Stmt) *ast.WhileStmt {
	return &ast.WhileStmt{Cond: cond, Body: body}
}

// Method builds a public instance method. The last body statement should be the return.
func Method(name string, ret *ast.TypeNode, params []*ast.Param, locals []*ast.VarDecl, body ...ast.Stmt) *ast.MethodDecl {
	return &ast.MethodDecl{Name: name, IsPublic: true, ReturnType: ret, Params: params, Locals: locals, Body: body}
}

// Main builds the static entry point.
func Main(locals []*ast.VarDecl, body ...ast.Stmt) *ast.MethodDecl {
	return &ast.MethodDecl{
		Name:     "main",
		IsPublic: true,
		IsStatic: true,
		Params:   []*ast.Param{Param(&ast.TypeNode{Name: "String", IsArray: true}, "args")},
		Locals:   locals,
		Body:     body,
	}
}

func Import(path ...string) *ast.ImportDecl { return &ast.ImportDecl{Path: path} }

// Program assembles a compilation unit with a single class.
func Program(imports []*ast.ImportDecl, name, super string, fields []*ast.VarDecl, methods ...*ast.MethodDecl) *ast.Program {
	return &ast.Program{
		Imports: imports,
		Class:   &ast.ClassDecl{Name: name, Super: super, Fields: fields, Methods: methods},
	}
}

// HelloWorld calls ioPlus.printHelloWorld() from main.
func HelloWorld() *ast.Program {
	return Program([]*ast.ImportDecl{Import("ioPlus")}, "HelloWorld", "", nil,
		Main(nil, Expr(Call(Ident("ioPlus"), "printHelloWorld"))),
	)
}

// Simple prints 30 through an instance method that mixes a parameter, a local and a call on this.
func Simple() *ast.Program {
	add := Method("add", IntType(),
		[]*ast.Param{Param(IntType(), "a"), Param(IntType(), "b")},
		[]*ast.VarDecl{Var(IntType(), "c")},
		Assign("c", Binary(ast.OpAdd, Ident("a"), Call(This(), "constInt"))),
		Return(Binary(ast.OpAdd, Ident("c"), Ident("b"))),
	)
	constInt := Method("constInt", IntType(), nil, nil, Return(Int(10)))
	main := Main([]*ast.VarDecl{Var(ClassType("Simple"), "s")},
		Assign("s", NewObject("Simple")),
		Expr(Call(Ident("io"), "println", Call(Ident("s"), "add", Int(15), Int(5)))),
	)
	return Program([]*ast.ImportDecl{Import("io")}, "Simple", "", nil, add, constInt, main)
}
