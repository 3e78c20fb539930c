package irgen

import (
	"fmt"
	"strings"

	"github.com/xiaobogaga/jmm/compiler/internal/ast"
	"github.com/xiaobogaga/jmm/compiler/internal/symboltable"
	"github.com/xiaobogaga/jmm/compiler/internal/types"
)

// operand visits e and returns a simple element for it, storing anything else into a temporary.
func (gen *Generator) operand(e ast.Expr) (string, error) {
	r, err := gen.visitExpr(e)
	if err != nil {
		return "", err
	}
	gen.emit(r.computation)
	return gen.materialize(r), nil
}

func (gen *Generator) materialize(r exprResult) string {
	if r.kind == exprSimple {
		return r.code
	}
	t := irType(r.typ)
	temp := gen.nextTemp() + t
	gen.writeOutput(fmt.Sprintf("%s :=%s %s;", temp, t, r.code))
	return temp
}

// operandName strips the type suffix: "a.array.i32" is "a".
func operandName(code string) string {
	if i := strings.IndexByte(code, '.'); i >= 0 {
		return code[:i]
	}
	return code
}

func (gen *Generator) typeOf(e ast.Expr) (types.Type, error) {
	t, ok := gen.res.Resolve(e)
	if !ok {
		return types.Type{}, makeUnresolvedError(e, "cannot type %T", e)
	}
	return t, nil
}

// visitExpr lowers e without writing to the output. The instructions it needs come back as the
// computation, which the caller writes right before using code.
func (gen *Generator) visitExpr(e ast.Expr) (exprResult, error) {
	saved := gen.output
	gen.output = &strings.Builder{}
	r, err := gen.visitExpr0(e)
	r.computation = gen.output.String() + r.computation
	gen.output = saved
	return r, err
}

func (gen *Generator) visitExpr0(e ast.Expr) (exprResult, error) {
	switch e := e.(type) {
	case *ast.ParenExpr:
		r, err := gen.visitExpr(e.X)
		if err != nil {
			return r, err
		}
		gen.emit(r.computation)
		r.computation = ""
		return r, nil
	case *ast.IntegerLiteral:
		return exprResult{code: fmt.Sprintf("%d.i32", e.Value), typ: symboltable.Int}, nil
	case *ast.BooleanLiteral:
		code := "0.bool"
		if e.Value {
			code = "1.bool"
		}
		return exprResult{code: code, typ: symboltable.Boolean}, nil
	case *ast.ThisExpr:
		t := types.Type{Name: gen.table.ClassName()}
		return exprResult{code: "this" + irType(t), typ: t}, nil
	case *ast.VarRefExpr:
		return gen.visitVarRef(e)
	case *ast.BinaryExpr:
		if e.Op == ast.OpAnd {
			return gen.visitAnd(e)
		}
		return gen.visitBinary(e)
	case *ast.NotExpr:
		x, err := gen.operand(e.X)
		if err != nil {
			return exprResult{}, err
		}
		return exprResult{code: "!.bool " + x, kind: exprOp, typ: symboltable.Boolean}, nil
	case *ast.ArrayAccessExpr:
		base, err := gen.operand(e.Array)
		if err != nil {
			return exprResult{}, err
		}
		index, err := gen.operand(e.Index)
		if err != nil {
			return exprResult{}, err
		}
		t, err := gen.typeOf(e)
		if err != nil {
			return exprResult{}, err
		}
		return exprResult{code: fmt.Sprintf("%s[%s]%s", operandName(base), index, irType(t)), kind: exprOther, typ: t}, nil
	case *ast.ArrayLengthExpr:
		base, err := gen.operand(e.X)
		if err != nil {
			return exprResult{}, err
		}
		return exprResult{code: fmt.Sprintf("arraylength(%s).i32", base), kind: exprOther, typ: symboltable.Int}, nil
	case *ast.NewArrayExpr:
		size, err := gen.operand(e.Size)
		if err != nil {
			return exprResult{}, err
		}
		return exprResult{code: fmt.Sprintf("new(array, %s).array.i32", size), kind: exprOther, typ: symboltable.IntArray}, nil
	case *ast.ArrayLiteral:
		return gen.visitArrayLiteral(e)
	case *ast.NewObjectExpr:
		t := types.Type{Name: e.Class}
		temp := gen.nextTemp() + irType(t)
		gen.writeOutput(fmt.Sprintf("%s :=%s new(%s)%s;", temp, irType(t), e.Class, irType(t)))
		gen.writeOutput(fmt.Sprintf(`invokespecial(%s, "<init>").V;`, temp))
		return exprResult{code: temp, typ: t}, nil
	case *ast.MethodCallExpr:
		return gen.visitCall(e)
	}
	return exprResult{}, makeUnresolvedError(e, "unsupported expression %T", e)
}

func (gen *Generator) visitVarRef(e *ast.VarRefExpr) (exprResult, error) {
	t, kind, ok := gen.res.LookupVar(gen.method, e.Name)
	if !ok {
		return exprResult{}, makeUnresolvedError(e, "undeclared %s", e.Name)
	}
	if kind == types.VarField {
		temp := gen.nextTemp() + irType(t)
		gen.writeOutput(fmt.Sprintf("%s :=%s getfield(this, %s%s)%s;", temp, irType(t), e.Name, irType(t), irType(t)))
		return exprResult{code: temp, typ: t}, nil
	}
	return exprResult{code: e.Name + irType(t), typ: t}, nil
}

func (gen *Generator) visitBinary(e *ast.BinaryExpr) (exprResult, error) {
	x, err := gen.operand(e.X)
	if err != nil {
		return exprResult{}, err
	}
	y, err := gen.operand(e.Y)
	if err != nil {
		return exprResult{}, err
	}
	t := symboltable.Int
	if !e.Op.IsArithmetic() {
		t = symboltable.Boolean
	}
	return exprResult{code: fmt.Sprintf("%s %s%s %s", x, e.Op, irType(t), y), kind: exprOp, typ: t}, nil
}

// visitAnd evaluates the right operand only when the left one is true.
func (gen *Generator) visitAnd(e *ast.BinaryExpr) (exprResult, error) {
	cond, err := gen.condition(e.X)
	if err != nil {
		return exprResult{}, err
	}
	n := gen.nextLabel()
	temp := gen.nextTemp() + ".bool"
	gen.writeOutput(fmt.Sprintf("if (%s) goto andTrue_%d;", cond, n))
	gen.writeOutput(fmt.Sprintf("%s :=.bool 0.bool;", temp))
	gen.writeOutput(fmt.Sprintf("goto andEnd_%d;", n))
	gen.writeOutput(fmt.Sprintf("andTrue_%d:", n))
	right, err := gen.visitExpr(e.Y)
	if err != nil {
		return exprResult{}, err
	}
	gen.emit(right.computation)
	gen.writeOutput(fmt.Sprintf("%s :=.bool %s;", temp, right.code))
	gen.writeOutput(fmt.Sprintf("andEnd_%d:", n))
	return exprResult{code: temp, typ: symboltable.Boolean}, nil
}

func (gen *Generator) visitArrayLiteral(e *ast.ArrayLiteral) (exprResult, error) {
	array := gen.nextTemp()
	gen.writeOutput(fmt.Sprintf("%s.array.i32 :=.array.i32 new(array, %d.i32).array.i32;", array, len(e.Elems)))
	err := gen.storeElements(array, e.Elems)
	if err != nil {
		return exprResult{}, err
	}
	return exprResult{code: array + ".array.i32", typ: symboltable.IntArray}, nil
}

func (gen *Generator) storeElements(array string, elems []ast.Expr) error {
	for i, elem := range elems {
		value, err := gen.operand(elem)
		if err != nil {
			return err
		}
		gen.writeOutput(fmt.Sprintf("%s[%d.i32].i32 :=.i32 %s;", array, i, value))
	}
	return nil
}

// visitCall picks the invocation form from the receiver: a name that denotes a class (an import,
// the superclass or the class itself) is a static call, anything else a virtual call on the
// receiver's value.
func (gen *Generator) visitCall(e *ast.MethodCallExpr) (exprResult, error) {
	ret, err := gen.typeOf(e)
	if err != nil {
		return exprResult{}, err
	}
	var target, invoke string
	if ref, ok := ast.Unparen(e.Receiver).(*ast.VarRefExpr); ok && gen.isClassName(ref.Name) {
		invoke, target = "invokestatic", ref.Name
	} else {
		invoke = "invokevirtual"
		target, err = gen.operand(e.Receiver)
		if err != nil {
			return exprResult{}, err
		}
	}
	args, err := gen.arguments(e)
	if err != nil {
		return exprResult{}, err
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s(%s, %q", invoke, target, e.Name))
	for _, arg := range args {
		sb.WriteString(", ")
		sb.WriteString(arg)
	}
	sb.WriteString(")")
	sb.WriteString(irType(ret))
	return exprResult{code: sb.String(), kind: exprCall, typ: ret}, nil
}

func (gen *Generator) isClassName(name string) bool {
	_, kind, ok := gen.res.LookupVar(gen.method, name)
	return ok && (kind == types.VarImport || kind == types.VarSuper || kind == types.VarClass)
}

// arguments lowers the call arguments left to right. For a method of this class with a trailing
// vararg parameter, the trailing arguments are packed into a new array unless a single array is
// passed in their place.
func (gen *Generator) arguments(e *ast.MethodCallExpr) ([]string, error) {
	var params []symboltable.VarargSymbol
	if gen.res.IsOwnClassCall(e) {
		params = gen.table.Parameters(e.Name)
	}
	fixed := len(e.Args)
	packed := false
	if n := len(params); n > 0 && params[n-1].IsVararg && len(e.Args) >= n-1 {
		fixed = n - 1
		packed = true
		if len(e.Args) == n {
			if t, ok := gen.res.Resolve(e.Args[n-1]); ok && t.IsArray {
				fixed, packed = n, false
			}
		}
	}
	var args []string
	for _, arg := range e.Args[:fixed] {
		value, err := gen.operand(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}
	if packed {
		rest := e.Args[fixed:]
		array := gen.nextTemp()
		gen.writeOutput(fmt.Sprintf("%s.array.i32 :=.array.i32 new(array, %d.i32).array.i32;", array, len(rest)))
		err := gen.storeElements(array, rest)
		if err != nil {
			return nil, err
		}
		args = append(args, array+".array.i32")
	}
	return args, nil
}
