package ast

// Inspect traverses the tree rooted at node in depth-first order, parents before children and
// children in source order. If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		for _, imp := range n.Imports {
			Inspect(imp, f)
		}
		if n.Class != nil {
			Inspect(n.Class, f)
		}
	case *ClassDecl:
		for _, field := range n.Fields {
			Inspect(field, f)
		}
		for _, method := range n.Methods {
			Inspect(method, f)
		}
	case *MethodDecl:
		if n.ReturnType != nil {
			Inspect(n.ReturnType, f)
		}
		for _, param := range n.Params {
			Inspect(param, f)
		}
		for _, local := range n.Locals {
			Inspect(local, f)
		}
		inspectStmts(n.Body, f)
	case *VarDecl:
		if n.Type != nil {
			Inspect(n.Type, f)
		}
	case *Param:
		if n.Type != nil {
			Inspect(n.Type, f)
		}
	case *BlockStmt:
		inspectStmts(n.Stmts, f)
	case *IfStmt:
		inspectExpr(n.Cond, f)
		inspectStmt(n.Then, f)
		inspectStmt(n.Else, f)
	case *WhileStmt:
		inspectExpr(n.Cond, f)
		inspectStmt(n.Body, f)
	case *ExprStmt:
		inspectExpr(n.X, f)
	case *AssignStmt:
		inspectExpr(n.Value, f)
	case *ArrayAssignStmt:
		inspectExpr(n.Index, f)
		inspectExpr(n.Value, f)
	case *ReturnStmt:
		inspectExpr(n.Value, f)
	case *ParenExpr:
		inspectExpr(n.X, f)
	case *ArrayAccessExpr:
		inspectExpr(n.Array, f)
		inspectExpr(n.Index, f)
	case *MethodCallExpr:
		inspectExpr(n.Receiver, f)
		for _, arg := range n.Args {
			inspectExpr(arg, f)
		}
	case *ArrayLengthExpr:
		inspectExpr(n.X, f)
	case *NotExpr:
		inspectExpr(n.X, f)
	case *BinaryExpr:
		inspectExpr(n.X, f)
		inspectExpr(n.Y, f)
	case *NewArrayExpr:
		inspectExpr(n.Size, f)
	case *ArrayLiteral:
		for _, elem := range n.Elems {
			inspectExpr(elem, f)
		}
	}
}

// Typed nil interfaces must not reach Inspect, so optional children go through these.
func inspectStmt(s Stmt, f func(Node) bool) {
	if s != nil {
		Inspect(s, f)
	}
}

func inspectExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}

func inspectStmts(stmts []Stmt, f func(Node) bool) {
	for _, s := range stmts {
		inspectStmt(s, f)
	}
}
