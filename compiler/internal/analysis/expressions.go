package analysis

import (
	"github.com/xiaobogaga/jmm/compiler/internal/ast"
	"github.com/xiaobogaga/jmm/compiler/internal/symboltable"
	"github.com/xiaobogaga/jmm/compiler/internal/types"
)

// The checks below only look at operands they can type. An operand that does not resolve has
// already been reported by UndeclaredVariables or MethodCalls.

type ArrayChecks struct{}

func (ArrayChecks) Name() string { return "arrays" }

func (ArrayChecks) Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic {
	r := &reporter{}
	checkIndex := func(index ast.Expr) {
		if t, ok := res.Resolve(index); ok && t != symboltable.Int {
			r.report(index, IndexNotInt, "found %s", t)
		}
	}
	inspectBodies(prog, func(m *ast.MethodDecl, n ast.Node) {
		switch n := n.(type) {
		case *ast.ArrayAccessExpr:
			if t, ok := res.Resolve(n.Array); ok && !t.IsArray {
				r.report(n, ArrayAccessOverNonArray, "found %s", t)
			}
			checkIndex(n.Index)
		case *ast.ArrayAssignStmt:
			if t, _, ok := res.LookupVar(m, n.Name); ok && !t.IsArray {
				r.report(n, ArrayAccessOverNonArray, "%s is %s", n.Name, t)
			}
			checkIndex(n.Index)
		case *ast.ArrayLengthExpr:
			if t, ok := res.Resolve(n.X); ok && !t.IsArray {
				r.report(n, LengthOnNonArray, "found %s", t)
			}
		}
	})
	return r.diags
}

type BinaryOperands struct{}

func (BinaryOperands) Name() string { return "binary-operands" }

func (BinaryOperands) Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic {
	r := &reporter{}
	inspectBodies(prog, func(m *ast.MethodDecl, n ast.Node) {
		switch n := n.(type) {
		case *ast.BinaryExpr:
			x, okX := res.Resolve(n.X)
			y, okY := res.Resolve(n.Y)
			if !okX || !okY {
				return
			}
			switch {
			case n.Op.IsArithmetic():
				if x != symboltable.Int || y != symboltable.Int {
					r.report(n, OperandTypeMismatch, "%s %s %s", x, n.Op, y)
				}
			case n.Op == ast.OpLess:
				if x != y || x.IsArray {
					r.report(n, OperandTypeMismatch, "%s %s %s", x, n.Op, y)
				}
			case n.Op == ast.OpAnd:
				if x != symboltable.Boolean || y != symboltable.Boolean {
					r.report(n, OperandTypeMismatch, "%s %s %s", x, n.Op, y)
				}
			}
		case *ast.NotExpr:
			if x, ok := res.Resolve(n.X); ok && x != symboltable.Boolean {
				r.report(n, OperandTypeMismatch, "!%s", x)
			}
		}
	})
	return r.diags
}

type Conditions struct{}

func (Conditions) Name() string { return "conditions" }

func (Conditions) Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic {
	r := &reporter{}
	check := func(cond ast.Expr) {
		if t, ok := res.Resolve(cond); ok && t != symboltable.Boolean {
			r.report(cond, ConditionNotBoolean, "found %s", t)
		}
	}
	inspectBodies(prog, func(m *ast.MethodDecl, n ast.Node) {
		switch n := n.(type) {
		case *ast.IfStmt:
			check(n.Cond)
		case *ast.WhileStmt:
			check(n.Cond)
		}
	})
	return r.diags
}

type Assignments struct{}

func (Assignments) Name() string { return "assignments" }

func (Assignments) Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic {
	r := &reporter{}
	table := res.Table()
	inspectBodies(prog, func(m *ast.MethodDecl, n ast.Node) {
		switch n := n.(type) {
		case *ast.AssignStmt:
			dst, _, ok := res.LookupVar(m, n.Name)
			if !ok {
				return
			}
			if lit, isLit := ast.Unparen(n.Value).(*ast.ArrayLiteral); isLit {
				if dst != symboltable.IntArray {
					r.report(n, IncompatibleAssignment, "array initializer assigned to %s %s", dst, n.Name)
				}
				for _, elem := range lit.Elems {
					if _, isInt := ast.Unparen(elem).(*ast.IntegerLiteral); !isInt {
						r.report(elem, ArrayInitializerNotInts, "in assignment to %s", n.Name)
					}
				}
				return
			}
			src, ok := res.Resolve(n.Value)
			if ok && !types.Assignable(table, src, dst) {
				r.report(n, IncompatibleAssignment, "%s = %s", dst, src)
			}
		case *ast.ArrayAssignStmt:
			dst, _, ok := res.LookupVar(m, n.Name)
			if !ok || !dst.IsArray {
				return
			}
			src, ok := res.Resolve(n.Value)
			if ok && !types.Assignable(table, src, dst.Elem()) {
				r.report(n, IncompatibleAssignment, "%s[] = %s", dst.Elem(), src)
			}
		}
	})
	return r.diags
}

// MethodCalls checks that a called method exists and that the arguments fit its parameters. A
// trailing vararg parameter takes the remaining arguments, each of its element type, or a single
// array in its place. Calls on imported types are assumed correct.
type MethodCalls struct{}

func (MethodCalls) Name() string { return "method-calls" }

func (MethodCalls) Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic {
	r := &reporter{}
	table := res.Table()
	inspectBodies(prog, func(m *ast.MethodDecl, n ast.Node) {
		call, ok := n.(*ast.MethodCallExpr)
		if !ok {
			return
		}
		recv, ok := res.Resolve(call.Receiver)
		if !ok {
			return
		}
		if recv.IsArray || types.IsPrimitive(recv) {
			r.report(call, UnknownMethod, "%s on %s", call.Name, recv)
			return
		}
		if table.IsImported(recv.Name) {
			return
		}
		if recv.Name != table.ClassName() {
			r.report(call, UnknownMethod, "%s on %s, which is not imported", call.Name, recv)
			return
		}
		if !table.HasMethod(call.Name) {
			if !table.SuperIsImported() {
				r.report(call, UnknownMethod, "%s is not declared in %s", call.Name, table.ClassName())
			}
			return
		}
		checkArguments(r, res, call, table.Parameters(call.Name))
	})
	return r.diags
}

func checkArguments(r *reporter, res *types.Resolver, call *ast.MethodCallExpr, params []symboltable.VarargSymbol) {
	table := res.Table()
	fixed := len(params)
	hasVararg := fixed > 0 && params[fixed-1].IsVararg
	if hasVararg {
		fixed--
	}
	if len(call.Args) < fixed || (!hasVararg && len(call.Args) != fixed) {
		r.report(call, ArityTypeMismatch, "%s expects %d arguments, got %d", call.Name, len(params), len(call.Args))
		return
	}
	for i := 0; i < fixed; i++ {
		arg := call.Args[i]
		if t, ok := res.Resolve(arg); ok && !types.Assignable(table, t, params[i].Type) {
			r.report(arg, ArityTypeMismatch, "argument %d of %s is %s, expected %s", i, call.Name, t, params[i].Type)
		}
	}
	if !hasVararg {
		return
	}
	vararg := params[fixed].Type
	rest := call.Args[fixed:]
	if len(rest) == 1 {
		if t, ok := res.Resolve(rest[0]); ok && t.IsArray && types.Assignable(table, t, vararg) {
			return
		}
	}
	for i, arg := range rest {
		if t, ok := res.Resolve(arg); ok && !types.Assignable(table, t, vararg.Elem()) {
			r.report(arg, ArityTypeMismatch, "argument %d of %s is %s, expected %s", fixed+i, call.Name, t, vararg.Elem())
		}
	}
}

type Returns struct{}

func (Returns) Name() string { return "returns" }

func (Returns) Analyze(prog *ast.Program, res *types.Resolver) []Diagnostic {
	r := &reporter{}
	table := res.Table()
	opaque := func(t types.Type) bool { return table.IsImported(t.Name) }
	inspectBodies(prog, func(m *ast.MethodDecl, n ast.Node) {
		ret, ok := n.(*ast.ReturnStmt)
		if !ok || m.ReturnType == nil {
			return
		}
		want := symboltable.TypeOf(m.ReturnType)
		got, ok := res.Resolve(ret.Value)
		if !ok || got == want {
			return
		}
		if got.IsArray == want.IsArray {
			if opaque(got) && opaque(want) {
				return
			}
			if super, hasSuper := table.Super(); hasSuper && want.Name == super && got.Name == table.ClassName() {
				return
			}
		}
		r.report(ret, ReturnTypeMismatch, "%s returns %s, declared %s", m.Name, got, want)
	})
	return r.diags
}
