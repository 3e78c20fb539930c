package jasmin

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaobogaga/jmm/compiler/internal/ir"
)

func build(t *testing.T, text string) string {
	class, err := ir.Parse(strings.NewReader(text))
	require.NoError(t, err)
	code, err := New(class).Build()
	require.NoError(t, err)
	return code
}

// body returns the trimmed instruction lines of the method whose header contains name, without
// the limit directives.
func body(code, name string) []string {
	var out []string
	in := false
	for _, line := range strings.Split(code, "\n") {
		if strings.HasPrefix(line, ".method ") && strings.Contains(line, " "+name+"(") {
			in = true
			continue
		}
		if !in {
			continue
		}
		if line == ".end method" {
			break
		}
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, ".limit") {
			out = append(out, line)
		}
	}
	return out
}

func TestBuild_HelloWorld(t *testing.T) {
	expected := `.class HelloWorld
.super java/lang/Object

;default constructor
.method public <init>()V
   aload_0
   invokespecial java/lang/Object/<init>()V
   return
.end method

.method public static main([Ljava/lang/String;)V
   .limit stack 99
   .limit locals 99
   invokestatic ioPlus/printHelloWorld()V
   return
.end method
`
	code := build(t, `import ioPlus;
HelloWorld {
.construct HelloWorld().V {
invokespecial(this, "<init>").V;
}
.method public static main(args.array.String).V {
invokestatic(ioPlus, "printHelloWorld").V;
ret.V;
}
}`)
	assert.Equal(t, expected, code)
}

func TestBuild_Simple(t *testing.T) {
	expected := `.class Simple
.super java/lang/Object

;default constructor
.method public <init>()V
   aload_0
   invokespecial java/lang/Object/<init>()V
   return
.end method

.method public add(II)I
   .limit stack 99
   .limit locals 99
   aload_0
   invokevirtual Simple/constInt()I
   istore_3
   iload_1
   iload_3
   iadd
   istore 4
   iload 4
   iload_2
   iadd
   istore 5
   iload 5
   ireturn
.end method

.method public constInt()I
   .limit stack 99
   .limit locals 99
   bipush 10
   ireturn
.end method

.method public static main([Ljava/lang/String;)V
   .limit stack 99
   .limit locals 99
   new Simple
   dup
   astore_1
   aload_1
   invokespecial Simple/<init>()V
   pop
   aload_1
   astore_2
   aload_2
   bipush 15
   iconst_5
   invokevirtual Simple/add(II)I
   istore_3
   iload_3
   invokestatic io/println(I)V
   return
.end method
`
	code := build(t, `import io;
Simple {
.construct Simple().V {
invokespecial(this, "<init>").V;
}
.method public add(a.i32, b.i32).i32 {
tmp0.i32 :=.i32 invokevirtual(this.Simple, "constInt").i32;
c.i32 :=.i32 a.i32 +.i32 tmp0.i32;
tmp1.i32 :=.i32 c.i32 +.i32 b.i32;
ret.i32 tmp1.i32;
}
.method public constInt().i32 {
ret.i32 10.i32;
}
.method public static main(args.array.String).V {
tmp2.Simple :=.Simple new(Simple).Simple;
invokespecial(tmp2.Simple, "<init>").V;
s.Simple :=.Simple tmp2.Simple;
tmp3.i32 :=.i32 invokevirtual(s.Simple, "add", 15.i32, 5.i32).i32;
invokestatic(io, "println", tmp3.i32).V;
ret.V;
}
}`)
	assert.Equal(t, expected, code)
}

func TestBuild_Idempotent(t *testing.T) {
	class, err := ir.Parse(strings.NewReader(`Foo {
.method public f(a.i32).bool {
t.bool :=.bool a.i32 <.bool 3.i32;
ret.bool t.bool;
}
}`))
	require.NoError(t, err)
	gen := New(class)
	first, err := gen.Build()
	require.NoError(t, err)
	second, err := gen.Build()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, strings.Count(second, "cmp_true_0:"))
}

func TestBuild_Literals(t *testing.T) {
	testData := []struct {
		value    string
		expected string
	}{
		{"-1", "iconst_m1"},
		{"0", "iconst_0"},
		{"5", "iconst_5"},
		{"6", "bipush 6"},
		{"-2", "bipush -2"},
		{"127", "bipush 127"},
		{"-128", "bipush -128"},
		{"128", "sipush 128"},
		{"-129", "sipush -129"},
		{"32767", "sipush 32767"},
		{"32768", "ldc 32768"},
		{"-32769", "ldc -32769"},
	}
	for _, data := range testData {
		code := build(t, "Foo { .method public f().i32 { ret.i32 "+data.value+".i32; } }")
		assert.Equal(t, []string{data.expected, "ireturn"}, body(code, "f"), data.value)
	}
	code := build(t, `Foo { .method public f().String { ret.String "hi".String; } }`)
	assert.Equal(t, []string{`ldc "hi"`, "areturn"}, body(code, "f"))
}

func TestBuild_Comparison(t *testing.T) {
	code := build(t, `Foo {
.method public f(a.i32, b.i32).bool {
t.bool :=.bool a.i32 <.bool b.i32;
u.bool :=.bool !.bool t.bool;
ret.bool u.bool;
}
}`)
	assert.Equal(t, []string{
		"iload_1",
		"iload_2",
		"isub",
		"iflt cmp_true_0",
		"iconst_0",
		"goto cmp_end_0",
		"cmp_true_0:",
		"iconst_1",
		"cmp_end_0:",
		"istore_3",
		"iload_3",
		"iconst_1",
		"ixor",
		"istore 4",
		"iload 4",
		"ireturn",
	}, body(code, "f"))
}

func TestBuild_Branches(t *testing.T) {
	code := build(t, `Foo {
.method public f(i.i32, b.bool).V {
loop:
if (i.i32 >=.bool 10.i32) goto done;
if (!.bool b.bool) goto done;
if (b.bool) goto done;
i.i32 :=.i32 i.i32 -.i32 1.i32;
goto loop;
done:
ret.V;
}
}`)
	assert.Equal(t, []string{
		"loop:",
		"iload_1",
		"bipush 10",
		"isub",
		"ifge done",
		"iload_2",
		"ifeq done",
		"iload_2",
		"ifne done",
		"iload_1",
		"iconst_1",
		"isub",
		"istore_1",
		"goto loop",
		"done:",
		"return",
	}, body(code, "f"))
}

func TestBuild_FieldsArraysAndImports(t *testing.T) {
	code := build(t, `import a.b.Bar;
Foo extends Bar {
.field private data.array.i32;
.field n.i32;
.method public f(x.Bar).i32 {
t.array.i32 :=.array.i32 new(array, 2.i32).array.i32;
t[0.i32].i32 :=.i32 7.i32;
putfield(this, data.array.i32, t.array.i32).V;
l.i32 :=.i32 arraylength(t.array.i32).i32;
m.i32 :=.i32 getfield(this, n.i32).i32;
e.i32 :=.i32 t[1.i32].i32;
invokevirtual(x.Bar, "g", l.i32).i32;
ret.i32 m.i32;
}
}`)
	assert.Contains(t, code, ".class Foo\n.super a/b/Bar\n\n.field private data [I\n.field n I\n\n")
	assert.Contains(t, code, "   aload_0\n   invokespecial a/b/Bar/<init>()V\n   return\n")
	assert.Contains(t, code, ".method public f(La/b/Bar;)I\n")
	assert.Equal(t, []string{
		"iconst_2",
		"newarray int",
		"astore_2",
		"aload_2",
		"iconst_0",
		"bipush 7",
		"iastore",
		"aload_0",
		"aload_2",
		"putfield Foo/data [I",
		"aload_2",
		"arraylength",
		"istore_3",
		"aload_0",
		"getfield Foo/n I",
		"istore 4",
		"aload_2",
		"iconst_1",
		"iaload",
		"istore 5",
		"aload_1",
		"iload_3",
		"invokevirtual a/b/Bar/g(I)I",
		"pop",
		"iload 4",
		"ireturn",
	}, body(code, "f"))
}

func TestBuild_Errors(t *testing.T) {
	method := &ir.Method{
		Name:       "f",
		Access:     "public",
		ReturnType: ir.Int32Type,
		Instructions: []ir.Instruction{
			&ir.Assign{
				Dest: &ir.Operand{Name: "x", Type: ir.Int32Type},
				Type: ir.Int32Type,
				RHS:  &ir.UnaryOp{Op: ir.OpSub, Operand: &ir.Literal{Value: "1", Type: ir.Int32Type}, Type: ir.Int32Type},
			},
		},
		VarTable: map[string]ir.Descriptor{"x": {VirtualReg: 1, Type: ir.Int32Type}},
	}
	class := &ir.ClassUnit{Name: "Foo", Methods: []*ir.Method{method}}
	_, err := New(class).Build()
	assert.True(t, errors.Is(err, ErrNotImplemented), "%v", err)

	method.Instructions = []ir.Instruction{&ir.Return{Value: &ir.Operand{Name: "ghost", Type: ir.Int32Type}, Type: ir.Int32Type}}
	_, err = New(class).Build()
	assert.True(t, errors.Is(err, ErrUnknownVariable), "%v", err)

	method.Instructions = []ir.Instruction{&ir.ArrayLength{Array: &ir.Operand{Name: "x", Type: ir.Int32Type}}}
	_, err = New(class).Build()
	assert.True(t, errors.Is(err, ErrNotImplemented), "%v", err)
}
