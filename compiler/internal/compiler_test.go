package internal

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaobogaga/jmm/compiler/internal/analysis"
	"github.com/xiaobogaga/jmm/compiler/internal/ast"
	at "github.com/xiaobogaga/jmm/compiler/internal/ast/asttest"
	"github.com/xiaobogaga/jmm/compiler/internal/ir"
)

func TestCompile_HelloWorld(t *testing.T) {
	result, err := Compile(at.HelloWorld(), Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, "HelloWorld", result.Class.Name)
	assert.Contains(t, result.IR, `invokestatic(ioPlus, "printHelloWorld").V;`)
	assert.Contains(t, result.Jasmin, ".method public static main([Ljava/lang/String;)V\n")
	assert.Contains(t, result.Jasmin, "   invokestatic ioPlus/printHelloWorld()V\n   return\n.end method\n")
}

func TestCompile_Simple(t *testing.T) {
	result, err := Compile(at.Simple(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "Simple", result.Table.ClassName())
	assert.Contains(t, result.Jasmin, "   invokevirtual Simple/add(II)I\n   istore_3\n   iload_3\n   invokestatic io/println(I)V\n")
	assert.Contains(t, result.Jasmin, ".method public constInt()I\n   .limit stack 99\n   .limit locals 99\n   bipush 10\n   ireturn\n")
}

func TestCompile_Decoded(t *testing.T) {
	f, err := os.Open("ast/testdata/simple.json")
	require.NoError(t, err)
	defer f.Close()
	prog, err := ast.Decode(f)
	require.NoError(t, err)
	decoded, err := Compile(prog, Options{})
	require.NoError(t, err)
	built, err := Compile(at.Simple(), Options{})
	require.NoError(t, err)
	assert.Equal(t, built.IR, decoded.IR)
	assert.Equal(t, built.Jasmin, decoded.Jasmin)
}

func TestCompile_ControlFlow(t *testing.T) {
	locals := []*ast.VarDecl{at.Var(at.IntType(), "i"), at.Var(at.IntType(), "s")}
	prog := at.Program(nil, "Loop", "", nil,
		at.Method("count", at.IntType(), nil, locals,
			at.Assign("i", at.Int(0)),
			at.Assign("s", at.Int(0)),
			at.While(at.Binary(ast.OpLess, at.Ident("i"), at.Int(10)),
				at.Block(
					at.Assign("s", at.Binary(ast.OpAdd, at.Ident("s"), at.Ident("i"))),
					at.Assign("i", at.Binary(ast.OpAdd, at.Ident("i"), at.Int(1))))),
			at.If(at.Binary(ast.OpAnd, at.Not(at.Paren(at.Binary(ast.OpLess, at.Ident("s"), at.Int(5)))), at.Bool(true)),
				at.Assign("s", at.Int(1)),
				at.Assign("s", at.Int(2))),
			at.Return(at.Ident("s"))),
	)
	result, err := Compile(prog, Options{})
	require.NoError(t, err)
	assert.Contains(t, result.Jasmin, "   isub\n   iflt whileBody_0\n")
	assert.Contains(t, result.Jasmin, "cmp_true_0:\n")
	assert.Contains(t, result.Jasmin, "   ifeq andTrue_")
	assert.Contains(t, result.Jasmin, "whileEnd_0:\n")

	again, err := Compile(prog, Options{})
	require.NoError(t, err)
	assert.Equal(t, result.IR, again.IR)
	assert.Equal(t, result.Jasmin, again.Jasmin)
}

func TestCompile_SemanticErrors(t *testing.T) {
	// boolean b; int i; b = i;
	locals := []*ast.VarDecl{at.Var(at.BoolType(), "b"), at.Var(at.IntType(), "i")}
	prog := at.Program(nil, "Foo", "", nil,
		at.Method("f", at.IntType(), nil, locals,
			at.Assign("i", at.Int(1)),
			at.Assign("b", at.Ident("i")),
			at.Return(at.Int(0))))

	result, err := Compile(prog, Options{})
	assert.True(t, errors.Is(err, ErrSemantic))
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, analysis.StageSemantic, result.Diagnostics[0].Stage)
	assert.True(t, strings.HasPrefix(result.Diagnostics[0].Message, analysis.IncompatibleAssignment))
	assert.Empty(t, result.IR)
	assert.Empty(t, result.Jasmin)

	result, err = Compile(prog, Options{SkipCheck: true})
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.NotEmpty(t, result.Jasmin)
}

func TestCompile_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := Compile(at.Simple(), Options{Logger: logger})
	require.NoError(t, err)
	out := buf.String()
	for _, stage := range []string{
		"compiler: start building symbol table",
		"compiler: start semantic analysis",
		"compiler: start generating ir",
		"compiler: start parsing ir",
		"compiler: start generating jasmin",
	} {
		assert.Contains(t, out, stage)
	}
	assert.Contains(t, out, "diagnostics=0")
	assert.Contains(t, out, "methods=4")
	for _, analyzer := range analysis.Analyzers() {
		assert.Contains(t, out, "analyzer="+analyzer.Name()+" diagnostics=0")
	}
}

func TestBackend(t *testing.T) {
	class, code, err := Backend(strings.NewReader(`Foo { .method public f().i32 { ret.i32 1.i32; } }`), Options{})
	require.NoError(t, err)
	assert.Equal(t, "Foo", class.Name)
	assert.Contains(t, code, "   iconst_1\n   ireturn\n")

	_, _, err = Backend(strings.NewReader(`Foo {`), Options{})
	assert.True(t, errors.Is(err, ir.ErrSyntax))
}
