package irgen

import (
	"fmt"

	"github.com/xiaobogaga/jmm/compiler/internal/ast"
	"github.com/xiaobogaga/jmm/compiler/internal/symboltable"
	"github.com/xiaobogaga/jmm/compiler/internal/types"
)

func (gen *Generator) generateStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			err := gen.generateStmt(inner)
			if err != nil {
				return err
			}
		}
		return nil
	case *ast.IfStmt:
		return gen.generateIfStmt(s)
	case *ast.WhileStmt:
		return gen.generateWhileStmt(s)
	case *ast.ExprStmt:
		return gen.generateExprStmt(s)
	case *ast.AssignStmt:
		return gen.generateAssignStmt(s)
	case *ast.ArrayAssignStmt:
		return gen.generateArrayAssignStmt(s)
	case *ast.ReturnStmt:
		return gen.generateReturnStmt(s)
	}
	return makeUnresolvedError(stmt, "unsupported statement %T", stmt)
}

// An if always gets all three labels, even when a branch is empty:
//
//	if (cond) goto true_N;
//	false_N:
//	  else branch
//	goto end_N;
//	true_N:
//	  then branch
//	end_N:
func (gen *Generator) generateIfStmt(stmt *ast.IfStmt) error {
	cond, err := gen.condition(stmt.Cond)
	if err != nil {
		return err
	}
	n := gen.nextLabel()
	gen.writeOutput(fmt.Sprintf("if (%s) goto true_%d;", cond, n))
	gen.writeOutput(fmt.Sprintf("false_%d:", n))
	if stmt.Else != nil {
		err = gen.generateStmt(stmt.Else)
		if err != nil {
			return err
		}
	}
	gen.writeOutput(fmt.Sprintf("goto end_%d;", n))
	gen.writeOutput(fmt.Sprintf("true_%d:", n))
	if stmt.Then != nil {
		err = gen.generateStmt(stmt.Then)
		if err != nil {
			return err
		}
	}
	gen.writeOutput(fmt.Sprintf("end_%d:", n))
	return nil
}

func (gen *Generator) generateWhileStmt(stmt *ast.WhileStmt) error {
	n := gen.nextLabel()
	gen.writeOutput(fmt.Sprintf("whileCond_%d:", n))
	cond, err := gen.condition(stmt.Cond)
	if err != nil {
		return err
	}
	gen.writeOutput(fmt.Sprintf("if (%s) goto whileBody_%d;", cond, n))
	gen.writeOutput(fmt.Sprintf("goto whileEnd_%d;", n))
	gen.writeOutput(fmt.Sprintf("whileBody_%d:", n))
	if stmt.Body != nil {
		err = gen.generateStmt(stmt.Body)
		if err != nil {
			return err
		}
	}
	gen.writeOutput(fmt.Sprintf("goto whileCond_%d;", n))
	gen.writeOutput(fmt.Sprintf("whileEnd_%d:", n))
	return nil
}

// condition emits what cond needs and returns the text to branch on. A comparison or a
// negation is branched on directly.
func (gen *Generator) condition(cond ast.Expr) (string, error) {
	r, err := gen.visitExpr(cond)
	if err != nil {
		return "", err
	}
	gen.emit(r.computation)
	if r.kind == exprSimple || r.kind == exprOp {
		return r.code, nil
	}
	return gen.materialize(r), nil
}

func (gen *Generator) generateExprStmt(stmt *ast.ExprStmt) error {
	r, err := gen.visitExpr(stmt.X)
	if err != nil {
		return err
	}
	gen.emit(r.computation)
	if r.kind == exprCall {
		gen.writeOutput(r.code + ";")
	}
	return nil
}

func (gen *Generator) generateAssignStmt(stmt *ast.AssignStmt) error {
	dst, kind, ok := gen.res.LookupVar(gen.method, stmt.Name)
	if !ok {
		return makeUnresolvedError(stmt, "assignment to undeclared %s", stmt.Name)
	}
	r, err := gen.visitExpr(stmt.Value)
	if err != nil {
		return err
	}
	gen.emit(r.computation)
	if kind == types.VarField {
		value := gen.materialize(r)
		gen.writeOutput(fmt.Sprintf("putfield(this, %s%s, %s).V;", stmt.Name, irType(dst), value))
		return nil
	}
	gen.writeOutput(fmt.Sprintf("%s%s :=%s %s;", stmt.Name, irType(dst), irType(dst), r.code))
	return nil
}

func (gen *Generator) generateArrayAssignStmt(stmt *ast.ArrayAssignStmt) error {
	base, err := gen.visitExpr(&ast.VarRefExpr{Pos: stmt.Pos, Name: stmt.Name})
	if err != nil {
		return err
	}
	gen.emit(base.computation)
	if !base.typ.IsArray {
		return makeUnresolvedError(stmt, "%s is not an array", stmt.Name)
	}
	index, err := gen.operand(stmt.Index)
	if err != nil {
		return err
	}
	value, err := gen.operand(stmt.Value)
	if err != nil {
		return err
	}
	elem := irType(base.typ.Elem())
	gen.writeOutput(fmt.Sprintf("%s[%s]%s :=%s %s;", operandName(base.code), index, elem, elem, value))
	return nil
}

func (gen *Generator) generateReturnStmt(stmt *ast.ReturnStmt) error {
	ret := symboltable.Void
	if gen.method.ReturnType != nil {
		ret = symboltable.TypeOf(gen.method.ReturnType)
	}
	if stmt.Value == nil || ret == symboltable.Void {
		gen.writeOutput("ret.V;")
		return nil
	}
	value, err := gen.operand(stmt.Value)
	if err != nil {
		return err
	}
	gen.writeOutput(fmt.Sprintf("ret%s %s;", irType(ret), value))
	return nil
}
