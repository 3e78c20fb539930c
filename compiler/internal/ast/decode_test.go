package ast

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFile(t *testing.T, name string) (*Program, error) {
	f, err := os.Open("testdata/" + name)
	require.NoError(t, err)
	defer f.Close()
	return Decode(f)
}

func TestDecode_HelloWorld(t *testing.T) {
	prog, err := decodeFile(t, "hello_world.json")
	require.NoError(t, err)
	require.Len(t, prog.Imports, 1)
	assert.Equal(t, "ioPlus", prog.Imports[0].DottedPath())
	assert.Equal(t, "HelloWorld", prog.Class.Name)
	assert.Equal(t, "", prog.Class.Super)
	require.Len(t, prog.Class.Methods, 1)
	main := prog.Class.Methods[0]
	assert.Equal(t, "main", main.Name)
	assert.True(t, main.IsStatic)
	assert.Nil(t, main.ReturnType)
	require.Len(t, main.Params, 1)
	assert.Equal(t, "args", main.Params[0].Name)
	assert.True(t, main.Params[0].Type.IsArray)
	require.Len(t, main.Body, 1)
	call, ok := main.Body[0].(*ExprStmt).X.(*MethodCallExpr)
	require.True(t, ok)
	assert.Equal(t, "printHelloWorld", call.Name)
	assert.Equal(t, &VarRefExpr{Pos: Pos{Line: 4, Col: 8}, Name: "ioPlus"}, call.Receiver)
}

func TestDecode_Simple(t *testing.T) {
	prog, err := decodeFile(t, "simple.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"io"}, prog.Imports[0].Path)
	require.Len(t, prog.Class.Methods, 3)
	add := prog.Class.Methods[0]
	assert.Equal(t, "int", add.ReturnType.Name)
	assert.True(t, add.IsPublic)
	assert.Len(t, add.Params, 2)
	assert.Len(t, add.Locals, 1)
	require.Len(t, add.Body, 2)
	ret, ok := add.Body[1].(*ReturnStmt)
	require.True(t, ok)
	bin := ret.Value.(*BinaryExpr)
	assert.Equal(t, OpAdd, bin.Op)
	assert.Equal(t, 7, bin.Line)

	main := prog.Class.Methods[2]
	assert.Equal(t, "Simple", main.Locals[0].Type.Name)
	assign := main.Body[0].(*AssignStmt)
	assert.Equal(t, &NewObjectExpr{Pos: Pos{Line: 14, Col: 12}, Class: "Simple"}, assign.Value)
}

func TestDecode_Errors(t *testing.T) {
	_, err := decodeFile(t, "unknown_operator.json")
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Contains(t, err.Error(), `"%"`)

	testData := []struct {
		Content string
	}{
		{Content: `{`},
		{Content: `{"kind": "ClassStmt"}`},
		{Content: `{"kind": "Program"}`},
		{Content: `{"kind": "Program", "children": [{"kind": "ClassStmt", "children": []}]}`},
		{Content: `{"kind": "Program", "children": [{"kind": "ClassStmt", "attributes": {"name": "A"}, "children": [
			{"kind": "PublicMethodDecl", "attributes": {"name": "f"}, "children": [
				{"kind": "IntType", "attributes": {"name": "int"}},
				{"kind": "ReturnStmt", "children": [{"kind": "IntegerLiteral", "attributes": {"value": "4294967296"}}]}]}]}]}`},
		{Content: `{"kind": "Program", "children": [{"kind": "ClassStmt", "attributes": {"name": "A"}, "children": [
			{"kind": "PublicMethodDecl", "attributes": {"name": "f"}, "children": [
				{"kind": "IntType", "attributes": {"name": "int"}},
				{"kind": "ReturnStmt", "children": [{"kind": "ShiftExpr"}]}]}]}]}`},
		{Content: `{"kind": "Program", "children": [null]}`},
		{Content: `{"kind": "Program", "children": [{"kind": "ImportDecl", "children": [null]}]}`},
		{Content: `{"kind": "Program", "children": [{"kind": "ClassStmt", "attributes": {"name": "A"}, "children": [null]}]}`},
		{Content: `{"kind": "Program", "children": [{"kind": "ClassStmt", "attributes": {"name": "A"}, "children": [
			{"kind": "PublicMethodDecl", "attributes": {"name": "f"}, "children": [null]}]}]}`},
		{Content: `{"kind": "Program", "children": [{"kind": "ClassStmt", "attributes": {"name": "A"}, "children": [
			{"kind": "PublicMethodDecl", "attributes": {"name": "f"}, "children": [
				{"kind": "IntType", "attributes": {"name": "int"}},
				{"kind": "BlockStmt", "children": [null]},
				{"kind": "ReturnStmt", "children": [{"kind": "IntegerLiteral", "attributes": {"value": "0"}}]}]}]}]}`},
	}
	for _, data := range testData {
		_, err := Decode(strings.NewReader(data.Content))
		assert.True(t, errors.Is(err, ErrMalformed), data.Content)
	}
}

func TestDecode_Types(t *testing.T) {
	testData := []struct {
		Kind     string
		Attrs    string
		IsArray  bool
		IsVararg bool
	}{
		{Kind: "IntType", Attrs: `{"name": "int"}`},
		{Kind: "IntArrayType", Attrs: `{"name": "int"}`, IsArray: true},
		{Kind: "VarArgsType", Attrs: `{"name": "int"}`, IsArray: true, IsVararg: true},
		{Kind: "Type", Attrs: `{"name": "int", "isArray": "true"}`, IsArray: true},
		{Kind: "IdType", Attrs: `{"name": "Foo"}`},
	}
	for _, data := range testData {
		content := `{"kind": "Program", "children": [{"kind": "ClassStmt", "attributes": {"name": "A"}, "children": [
			{"kind": "VarDecl", "attributes": {"name": "x"}, "children": [{"kind": "` + data.Kind + `", "attributes": ` + data.Attrs + `}]}]}]}`
		prog, err := Decode(strings.NewReader(content))
		require.NoError(t, err, data.Kind)
		typ := prog.Class.Fields[0].Type
		assert.Equal(t, data.IsArray, typ.IsArray, data.Kind)
		assert.Equal(t, data.IsVararg, typ.IsVararg, data.Kind)
	}
}
