package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaobogaga/jmm/compiler/internal/ast"
	at "github.com/xiaobogaga/jmm/compiler/internal/ast/asttest"
	"github.com/xiaobogaga/jmm/compiler/internal/symboltable"
)

func newResolver(t *testing.T, prog *ast.Program) *Resolver {
	table, err := symboltable.Build(prog)
	require.NoError(t, err)
	return NewResolver(prog, table)
}

func TestResolver_Expressions(t *testing.T) {
	arr := at.Ident("arr")
	access := at.Index(arr, at.Int(0))
	sum := at.Binary(ast.OpAdd, at.Int(1), at.Int(2))
	less := at.Binary(ast.OpLess, at.Int(1), at.Int(2))
	and := at.Binary(ast.OpAnd, at.Bool(true), at.Not(at.Bool(false)))
	length := at.Length(arr)
	newObj := at.NewObject("Foo")
	newArr := at.NewArray(at.Int(3))
	lit := at.ArrayLit(at.Int(1), at.Int(2))
	this := at.This()
	paren := at.Paren(at.Ident("flag"))

	m := at.Method("f", at.IntType(), nil,
		[]*ast.VarDecl{at.Var(at.IntArrayType(), "arr")},
		at.Expr(access), at.Expr(sum), at.Expr(less), at.Expr(and), at.Expr(length),
		at.Expr(newObj), at.Expr(newArr), at.Expr(lit), at.Expr(this), at.Expr(paren),
		at.Return(at.Int(0)),
	)
	prog := at.Program(nil, "Foo", "", []*ast.VarDecl{at.Var(at.BoolType(), "flag")}, m)
	res := newResolver(t, prog)

	testData := []struct {
		Expr ast.Expr
		Type Type
	}{
		{Expr: arr, Type: symboltable.IntArray},
		{Expr: access, Type: symboltable.Int},
		{Expr: sum, Type: symboltable.Int},
		{Expr: less, Type: symboltable.Boolean},
		{Expr: and, Type: symboltable.Boolean},
		{Expr: and.Y, Type: symboltable.Boolean},
		{Expr: length, Type: symboltable.Int},
		{Expr: newObj, Type: Type{Name: "Foo"}},
		{Expr: newArr, Type: symboltable.IntArray},
		{Expr: lit, Type: symboltable.IntArray},
		{Expr: this, Type: Type{Name: "Foo"}},
		{Expr: paren, Type: symboltable.Boolean},
	}
	for _, data := range testData {
		typ, ok := res.Resolve(data.Expr)
		assert.True(t, ok, data.Type.String())
		assert.Equal(t, data.Type, typ)
	}
}

func TestResolver_LookupOrder(t *testing.T) {
	m := at.Method("f", at.IntType(),
		[]*ast.Param{at.Param(at.BoolType(), "x"), at.Param(at.IntType(), "y")},
		[]*ast.VarDecl{at.Var(at.IntArrayType(), "x")},
		at.Return(at.Int(0)),
	)
	prog := at.Program([]*ast.ImportDecl{at.Import("java", "io", "io")}, "Foo", "Bar",
		[]*ast.VarDecl{at.Var(at.IntType(), "y"), at.Var(at.BoolType(), "z")}, m)
	res := newResolver(t, prog)

	testData := []struct {
		Name string
		Type Type
		Kind VarKind
	}{
		{Name: "x", Type: symboltable.IntArray, Kind: VarLocal},
		{Name: "y", Type: symboltable.Int, Kind: VarParam},
		{Name: "z", Type: symboltable.Boolean, Kind: VarField},
		{Name: "io", Type: Type{Name: "io"}, Kind: VarImport},
		{Name: "Bar", Type: Type{Name: "Bar"}, Kind: VarSuper},
		{Name: "Foo", Type: Type{Name: "Foo"}, Kind: VarClass},
	}
	for _, data := range testData {
		typ, kind, ok := res.LookupVar(m, data.Name)
		assert.True(t, ok, data.Name)
		assert.Equal(t, data.Type, typ, data.Name)
		assert.Equal(t, data.Kind, kind, data.Name)
	}
	_, _, ok := res.LookupVar(m, "missing")
	assert.False(t, ok)
}

func TestResolver_Unresolved(t *testing.T) {
	undeclared := at.Ident("nope")
	unknownCall := at.Call(at.This(), "missing")
	intReceiver := at.Call(at.Int(1), "foo")
	prog := at.Program(nil, "Foo", "", nil,
		at.Method("f", at.IntType(), nil, nil,
			at.Expr(undeclared), at.Expr(unknownCall), at.Expr(intReceiver), at.Return(at.Int(0))))
	res := newResolver(t, prog)
	for _, e := range []ast.Expr{undeclared, unknownCall, intReceiver} {
		_, ok := res.Resolve(e)
		assert.False(t, ok)
	}
}

func TestResolver_Calls(t *testing.T) {
	own := at.Call(at.This(), "g")
	inherited := at.Call(at.This(), "inherited")
	imported := at.Call(at.Ident("io"), "read")
	printed := at.Call(at.Ident("io"), "println", imported)
	boolCall := at.Call(at.Ident("io"), "check")
	stmtCall := at.Call(at.Ident("io"), "flush")
	prog := at.Program([]*ast.ImportDecl{at.Import("io"), at.Import("Base")}, "Foo", "Base", nil,
		at.Method("g", at.BoolType(), nil, nil, at.Return(at.Bool(true))),
		at.Method("f", at.IntType(), nil,
			[]*ast.VarDecl{at.Var(at.BoolType(), "b"), at.Var(at.IntType(), "i")},
			at.Assign("b", own),
			at.Assign("i", inherited),
			at.Expr(printed),
			at.If(boolCall, at.Block(), at.Block()),
			at.Expr(stmtCall),
			at.Return(at.Int(0))),
	)
	res := newResolver(t, prog)

	testData := []struct {
		Expr ast.Expr
		Type Type
	}{
		{Expr: own, Type: symboltable.Boolean},
		{Expr: inherited, Type: Type{Name: "Base"}},
		{Expr: imported, Type: symboltable.Int},
		{Expr: printed, Type: symboltable.Void},
		{Expr: boolCall, Type: symboltable.Boolean},
		{Expr: stmtCall, Type: symboltable.Void},
	}
	for _, data := range testData {
		typ, ok := res.Resolve(data.Expr)
		assert.True(t, ok)
		assert.Equal(t, data.Type, typ)
	}
	assert.True(t, res.IsOwnClassCall(own))
	assert.False(t, res.IsOwnClassCall(printed))
}

func TestResolver_Memoized(t *testing.T) {
	v := at.Ident("x")
	m := at.Method("f", at.IntType(), nil, []*ast.VarDecl{at.Var(at.IntType(), "x")}, at.Return(v))
	prog := at.Program(nil, "Foo", "", nil, m)
	res := newResolver(t, prog)
	first, ok := res.Resolve(v)
	assert.True(t, ok)
	// Changing the declaration afterwards must not change the cached answer.
	m.Locals[0].Type = at.BoolType()
	second, ok := res.Resolve(v)
	assert.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, symboltable.Int, second)
}

func TestAssignable(t *testing.T) {
	prog := at.Program([]*ast.ImportDecl{at.Import("A")}, "Foo", "Bar", nil)
	table, err := symboltable.Build(prog)
	require.NoError(t, err)
	all := []Type{symboltable.Int, symboltable.IntArray, symboltable.Boolean, {Name: "Foo"}, {Name: "A"}, {Name: "A", IsArray: true}}
	for _, typ := range all {
		assert.True(t, Assignable(table, typ, typ), typ.String())
		assert.False(t, Assignable(table, typ, Type{Name: typ.Name, IsArray: !typ.IsArray}), typ.String())
	}
	testData := []struct {
		Src, Dst Type
		Expected bool
	}{
		{Src: Type{Name: "Foo"}, Dst: Type{Name: "Bar"}, Expected: true},
		{Src: Type{Name: "Bar"}, Dst: Type{Name: "Foo"}, Expected: false},
		{Src: Type{Name: "A"}, Dst: symboltable.Int, Expected: true},
		{Src: symboltable.Boolean, Dst: Type{Name: "A"}, Expected: true},
		{Src: symboltable.Boolean, Dst: symboltable.Int, Expected: false},
		{Src: Type{Name: "Foo"}, Dst: symboltable.Int, Expected: false},
	}
	for _, data := range testData {
		assert.Equal(t, data.Expected, Assignable(table, data.Src, data.Dst), data.Src.String()+"->"+data.Dst.String())
	}
}
