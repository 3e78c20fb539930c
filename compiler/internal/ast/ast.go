package ast

import "strings"

// In this file, we defined the syntax tree of the java-- teaching language. A compilation unit is
// a list of imports followed by exactly one class; a class holds fields and methods; a method
// holds parameters, local declarations and a statement list ending with a return (except for the
// static entry point, which has none).
//
// Every node kind is a concrete Go type. Statements implement Stmt and expressions implement Expr,
// so a consumer switches over a closed set of types instead of comparing kind strings.

type Pos struct {
	Line int
	Col  int
}

func (p Pos) Position() Pos { return p }

type Node interface {
	Position() Pos
}

type Program struct {
	Pos
	Imports []*ImportDecl
	Class   *ClassDecl
}

type ImportDecl struct {
	Pos
	// Path holds the dotted segments, e.g. ["java", "io", "File"].
	Path []string
}

func (d *ImportDecl) DottedPath() string {
	return strings.Join(d.Path, ".")
}

// SimpleName is the trailing segment, the name a program uses to refer to the import.
func (d *ImportDecl) SimpleName() string {
	if len(d.Path) == 0 {
		return ""
	}
	return d.Path[len(d.Path)-1]
}

type ClassDecl struct {
	Pos
	Name    string
	Super   string // Empty when the class does not extend anything.
	Fields  []*VarDecl
	Methods []*MethodDecl
}

type TypeNode struct {
	Pos
	Name     string
	IsArray  bool
	IsVararg bool
}

type VarDecl struct {
	Pos
	Type *TypeNode
	Name string
}

type Param struct {
	Pos
	Type *TypeNode
	Name string
}

type MethodDecl struct {
	Pos
	Name     string
	IsPublic bool
	IsStatic bool
	// ReturnType is nil only for the static entry point, whose signature is fixed.
	ReturnType *TypeNode
	Params     []*Param
	Locals     []*VarDecl
	Body       []Stmt
}

type Stmt interface {
	Node
	stmtNode()
}

type BlockStmt struct {
	Pos
	Stmts []Stmt
}

type IfStmt struct {
	Pos
	Cond Expr
	Then Stmt
	Else Stmt
}

type WhileStmt struct {
	Pos
	Cond Expr
	Body Stmt
}

type ExprStmt struct {
	Pos
	X Expr
}

// AssignStmt is `name = value;`.
type AssignStmt struct {
	Pos
	Name  string
	Value Expr
}

// ArrayAssignStmt is `name[index] = value;`.
type ArrayAssignStmt struct {
	Pos
	Name  string
	Index Expr
	Value Expr
}

type ReturnStmt struct {
	Pos
	Value Expr
}

func (*BlockStmt) stmtNode()       {}
func (*IfStmt) stmtNode()          {}
func (*WhileStmt) stmtNode()       {}
func (*ExprStmt) stmtNode()        {}
func (*AssignStmt) stmtNode()      {}
func (*ArrayAssignStmt) stmtNode() {}
func (*ReturnStmt) stmtNode()      {}

type Expr interface {
	Node
	exprNode()
}

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpLess
	OpAnd
)

var binaryOps = map[string]BinaryOp{
	"+":  OpAdd,
	"-":  OpSub,
	"*":  OpMul,
	"/":  OpDiv,
	"<":  OpLess,
	"&&": OpAnd,
}

func ParseBinaryOp(s string) (BinaryOp, bool) {
	op, ok := binaryOps[s]
	return op, ok
}

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpLess:
		return "<"
	case OpAnd:
		return "&&"
	}
	return ""
}

// IsArithmetic reports whether op maps two ints to an int.
func (op BinaryOp) IsArithmetic() bool {
	return op == OpAdd || op == OpSub || op == OpMul || op == OpDiv
}

type ParenExpr struct {
	Pos
	X Expr
}

type ArrayAccessExpr struct {
	Pos
	Array Expr
	Index Expr
}

type MethodCallExpr struct {
	Pos
	Receiver Expr
	Name     string
	Args     []Expr
}

// ArrayLengthExpr is `x.length`.
type ArrayLengthExpr struct {
	Pos
	X Expr
}

// NotExpr is the only unary operator of the language, `!x`.
type NotExpr struct {
	Pos
	X Expr
}

type BinaryExpr struct {
	Pos
	Op BinaryOp
	X  Expr
	Y  Expr
}

// NewObjectExpr is `new Name()`.
type NewObjectExpr struct {
	Pos
	Class string
}

// NewArrayExpr is `new int[size]`.
type NewArrayExpr struct {
	Pos
	Size Expr
}

// ArrayLiteral is `[e1, e2, ...]`.
type ArrayLiteral struct {
	Pos
	Elems []Expr
}

type IntegerLiteral struct {
	Pos
	Value int32
}

type BooleanLiteral struct {
	Pos
	Value bool
}

type VarRefExpr struct {
	Pos
	Name string
}

type ThisExpr struct {
	Pos
}

func (*ParenExpr) exprNode()       {}
func (*ArrayAccessExpr) exprNode() {}
func (*MethodCallExpr) exprNode()  {}
func (*ArrayLengthExpr) exprNode() {}
func (*NotExpr) exprNode()         {}
func (*BinaryExpr) exprNode()      {}
func (*NewObjectExpr) exprNode()   {}
func (*NewArrayExpr) exprNode()    {}
func (*ArrayLiteral) exprNode()    {}
func (*IntegerLiteral) exprNode()  {}
func (*BooleanLiteral) exprNode()  {}
func (*VarRefExpr) exprNode()      {}
func (*ThisExpr) exprNode()        {}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}
