package ast

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The external parser hands over a generic tree: every node has a kind tag, ordered children,
// a position and a string attribute bag. Decode turns that tree into the typed nodes above;
// anything the grammar cannot produce is rejected here, so later stages never meet an unknown
// kind or operator.

var ErrMalformed = errors.New("malformed syntax tree")

type rawNode struct {
	Kind       string            `json:"kind"`
	Children   []*rawNode        `json:"children"`
	Attributes map[string]string `json:"attributes"`
	Line       int               `json:"line"`
	Col        int               `json:"col"`
}

func (n *rawNode) pos() Pos {
	return Pos{Line: n.Line, Col: n.Col}
}

func (n *rawNode) attr(key string) (string, bool) {
	v, ok := n.Attributes[key]
	return v, ok
}

func (n *rawNode) boolAttr(key string) bool {
	v, _ := n.attr(key)
	b, _ := strconv.ParseBool(v)
	return b
}

func (n *rawNode) child(i int) (*rawNode, error) {
	if i >= len(n.Children) || n.Children[i] == nil {
		return nil, makeDecodeError(n, "expected child #%d", i)
	}
	return n.Children[i], nil
}

func (n *rawNode) requireAttr(key string) (string, error) {
	v, ok := n.attr(key)
	if !ok {
		return "", makeDecodeError(n, "missing attribute %q", key)
	}
	return v, nil
}

// Decode reads one JSON encoded generic tree rooted at a Program node.
func Decode(rd io.Reader) (*Program, error) {
	root := &rawNode{}
	if err := json.NewDecoder(rd).Decode(root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := checkChildren(root); err != nil {
		return nil, err
	}
	return decodeProgram(root)
}

// checkChildren rejects a null anywhere in a children list, so the decoders below can read
// every child as a node.
func checkChildren(n *rawNode) error {
	for i, child := range n.Children {
		if child == nil {
			return makeDecodeError(n, "null child #%d", i)
		}
		if err := checkChildren(child); err != nil {
			return err
		}
	}
	return nil
}

func decodeProgram(n *rawNode) (*Program, error) {
	if n.Kind != "Program" {
		return nil, makeDecodeError(n, "expected Program")
	}
	prog := &Program{Pos: n.pos()}
	for _, child := range n.Children {
		switch child.Kind {
		case "ImportDecl", "ImportStmt":
			imp, err := decodeImport(child)
			if err != nil {
				return nil, err
			}
			prog.Imports = append(prog.Imports, imp)
		case "ClassStmt", "ClassDecl":
			if prog.Class != nil {
				return nil, makeDecodeError(child, "more than one class in a compilation unit")
			}
			class, err := decodeClass(child)
			if err != nil {
				return nil, err
			}
			prog.Class = class
		default:
			return nil, makeDecodeError(child, "unexpected node at top level")
		}
	}
	if prog.Class == nil {
		return nil, makeDecodeError(n, "compilation unit without a class")
	}
	return prog, nil
}

func decodeImport(n *rawNode) (*ImportDecl, error) {
	imp := &ImportDecl{Pos: n.pos()}
	for _, child := range n.Children {
		name, err := child.requireAttr("name")
		if err != nil {
			return nil, err
		}
		imp.Path = append(imp.Path, name)
	}
	// Some producers flatten the path into a single attribute.
	if len(imp.Path) == 0 {
		name, err := n.requireAttr("name")
		if err != nil {
			return nil, err
		}
		imp.Path = strings.Split(name, ".")
	}
	return imp, nil
}

func decodeClass(n *rawNode) (*ClassDecl, error) {
	name, err := n.requireAttr("name")
	if err != nil {
		return nil, err
	}
	class := &ClassDecl{Pos: n.pos(), Name: name}
	class.Super, _ = n.attr("extendedClass")
	for _, child := range n.Children {
		switch child.Kind {
		case "VarDecl":
			field, err := decodeVarDecl(child)
			if err != nil {
				return nil, err
			}
			class.Fields = append(class.Fields, field)
		case "MethodDecl", "PublicMethodDecl", "PublicStaticVoidMethodDecl":
			method, err := decodeMethod(child)
			if err != nil {
				return nil, err
			}
			class.Methods = append(class.Methods, method)
		default:
			return nil, makeDecodeError(child, "unexpected node in class body")
		}
	}
	return class, nil
}

func isTypeKind(kind string) bool {
	return kind == "Type" || strings.HasSuffix(kind, "Type")
}

func decodeType(n *rawNode) (*TypeNode, error) {
	if !isTypeKind(n.Kind) {
		return nil, makeDecodeError(n, "expected a type")
	}
	name, err := n.requireAttr("name")
	if err != nil {
		return nil, err
	}
	t := &TypeNode{Pos: n.pos(), Name: name, IsArray: n.boolAttr("isArray"), IsVararg: n.boolAttr("isVarArg")}
	switch n.Kind {
	case "IntArrayType":
		t.IsArray = true
	case "VarArgsType":
		t.IsArray, t.IsVararg = true, true
	}
	return t, nil
}

func decodeVarDecl(n *rawNode) (*VarDecl, error) {
	name, err := n.requireAttr("name")
	if err != nil {
		return nil, err
	}
	typeNode, err := n.child(0)
	if err != nil {
		return nil, err
	}
	t, err := decodeType(typeNode)
	if err != nil {
		return nil, err
	}
	return &VarDecl{Pos: n.pos(), Type: t, Name: name}, nil
}

func decodeParam(n *rawNode) (*Param, error) {
	decl, err := decodeVarDecl(n)
	if err != nil {
		return nil, err
	}
	return &Param{Pos: decl.Pos, Type: decl.Type, Name: decl.Name}, nil
}

// A regular method lists its return type first, then parameters, local declarations, statements
// and finally the return statement. The static entry point has no return type and takes a
// single String[] parameter that the grammar spells out inline.
func decodeMethod(n *rawNode) (*MethodDecl, error) {
	name, err := n.requireAttr("name")
	if err != nil {
		return nil, err
	}
	method := &MethodDecl{Pos: n.pos(), Name: name, IsPublic: n.boolAttr("isPublic"), IsStatic: n.boolAttr("isStatic")}
	children := n.Children
	if n.Kind == "PublicStaticVoidMethodDecl" {
		method.IsStatic = true
		argName, ok := n.attr("paramName")
		if !ok {
			argName = "args"
		}
		method.Params = []*Param{{
			Pos:  n.pos(),
			Type: &TypeNode{Pos: n.pos(), Name: "String", IsArray: true},
			Name: argName,
		}}
	} else if len(children) > 0 && isTypeKind(children[0].Kind) {
		method.ReturnType, err = decodeType(children[0])
		if err != nil {
			return nil, err
		}
		children = children[1:]
	}
	for _, child := range children {
		switch child.Kind {
		case "Param":
			param, err := decodeParam(child)
			if err != nil {
				return nil, err
			}
			method.Params = append(method.Params, param)
		case "VarDecl":
			local, err := decodeVarDecl(child)
			if err != nil {
				return nil, err
			}
			method.Locals = append(method.Locals, local)
		default:
			stmt, err := decodeStmt(child)
			if err != nil {
				return nil, err
			}
			method.Body = append(method.Body, stmt)
		}
	}
	return method, nil
}

func decodeStmts(nodes []*rawNode) ([]Stmt, error) {
	stmts := make([]Stmt, 0, len(nodes))
	for _, child := range nodes {
		stmt, err := decodeStmt(child)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func decodeStmt(n *rawNode) (Stmt, error) {
	switch n.Kind {
	case "BlockStmt":
		stmts, err := decodeStmts(n.Children)
		if err != nil {
			return nil, err
		}
		return &BlockStmt{Pos: n.pos(), Stmts: stmts}, nil
	case "IfElseStmt", "IfStmt":
		exprs, err := decodeChildExprs(n, 1)
		if err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(n.Children[1:])
		if err != nil {
			return nil, err
		}
		if len(stmts) == 0 || len(stmts) > 2 {
			return nil, makeDecodeError(n, "if statement needs a then branch and at most one else branch")
		}
		ifStmt := &IfStmt{Pos: n.pos(), Cond: exprs[0], Then: stmts[0]}
		if len(stmts) == 2 {
			ifStmt.Else = stmts[1]
		}
		return ifStmt, nil
	case "WhileStmt":
		exprs, err := decodeChildExprs(n, 1)
		if err != nil {
			return nil, err
		}
		body, err := n.child(1)
		if err != nil {
			return nil, err
		}
		stmt, err := decodeStmt(body)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Pos: n.pos(), Cond: exprs[0], Body: stmt}, nil
	case "ExprStmt":
		exprs, err := decodeChildExprs(n, 1)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Pos: n.pos(), X: exprs[0]}, nil
	case "AssignStmt":
		name, err := n.requireAttr("name")
		if err != nil {
			return nil, err
		}
		exprs, err := decodeChildExprs(n, 1)
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Pos: n.pos(), Name: name, Value: exprs[0]}, nil
	case "ArrayAssignStmt":
		name, err := n.requireAttr("name")
		if err != nil {
			return nil, err
		}
		exprs, err := decodeChildExprs(n, 2)
		if err != nil {
			return nil, err
		}
		return &ArrayAssignStmt{Pos: n.pos(), Name: name, Index: exprs[0], Value: exprs[1]}, nil
	case "ReturnStmt":
		exprs, err := decodeChildExprs(n, 1)
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Pos: n.pos(), Value: exprs[0]}, nil
	}
	return nil, makeDecodeError(n, "unknown statement kind")
}

// decodeChildExprs decodes the first count children as expressions.
func decodeChildExprs(n *rawNode, count int) ([]Expr, error) {
	exprs := make([]Expr, 0, count)
	for i := 0; i < count; i++ {
		child, err := n.child(i)
		if err != nil {
			return nil, err
		}
		expr, err := decodeExpr(child)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func decodeExpr(n *rawNode) (Expr, error) {
	switch n.Kind {
	case "ParenExpr":
		exprs, err := decodeChildExprs(n, 1)
		if err != nil {
			return nil, err
		}
		return &ParenExpr{Pos: n.pos(), X: exprs[0]}, nil
	case "ArrayAccessExpr":
		exprs, err := decodeChildExprs(n, 2)
		if err != nil {
			return nil, err
		}
		return &ArrayAccessExpr{Pos: n.pos(), Array: exprs[0], Index: exprs[1]}, nil
	case "MethodCallExpr":
		name, err := n.requireAttr("name")
		if err != nil {
			return nil, err
		}
		exprs, err := decodeChildExprs(n, len(n.Children))
		if err != nil {
			return nil, err
		}
		if len(exprs) == 0 {
			return nil, makeDecodeError(n, "method call without a receiver")
		}
		return &MethodCallExpr{Pos: n.pos(), Receiver: exprs[0], Name: name, Args: exprs[1:]}, nil
	case "ArrayLengthExpr":
		if name, ok := n.attr("name"); ok && name != "length" {
			return nil, makeDecodeError(n, "field access %q is not length", name)
		}
		exprs, err := decodeChildExprs(n, 1)
		if err != nil {
			return nil, err
		}
		return &ArrayLengthExpr{Pos: n.pos(), X: exprs[0]}, nil
	case "UnaryExpr", "NotExpr":
		if op, ok := n.attr("op"); ok && op != "!" {
			return nil, makeDecodeError(n, "unknown unary operator %q", op)
		}
		exprs, err := decodeChildExprs(n, 1)
		if err != nil {
			return nil, err
		}
		return &NotExpr{Pos: n.pos(), X: exprs[0]}, nil
	case "BinaryExpr":
		opText, err := n.requireAttr("op")
		if err != nil {
			return nil, err
		}
		op, ok := ParseBinaryOp(opText)
		if !ok {
			return nil, makeDecodeError(n, "unknown binary operator %q", opText)
		}
		exprs, err := decodeChildExprs(n, 2)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Pos: n.pos(), Op: op, X: exprs[0], Y: exprs[1]}, nil
	case "NewObjectExpr":
		name, err := n.requireAttr("name")
		if err != nil {
			return nil, err
		}
		return &NewObjectExpr{Pos: n.pos(), Class: name}, nil
	case "SpecificTypeNewArrayExpr", "NewArrayExpr":
		exprs, err := decodeChildExprs(n, 1)
		if err != nil {
			return nil, err
		}
		return &NewArrayExpr{Pos: n.pos(), Size: exprs[0]}, nil
	case "UnspecifiedTypeNewArrayExpr", "ArrayLiteral":
		exprs, err := decodeChildExprs(n, len(n.Children))
		if err != nil {
			return nil, err
		}
		return &ArrayLiteral{Pos: n.pos(), Elems: exprs}, nil
	case "IntegerLiteral":
		text, err := n.requireAttr("value")
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, makeDecodeError(n, "integer literal %q out of range", text)
		}
		return &IntegerLiteral{Pos: n.pos(), Value: int32(v)}, nil
	case "BooleanLiteral":
		text, err := n.requireAttr("value")
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseBool(text)
		if err != nil {
			return nil, makeDecodeError(n, "boolean literal %q", text)
		}
		return &BooleanLiteral{Pos: n.pos(), Value: v}, nil
	case "VarRefExpr":
		name, err := n.requireAttr("name")
		if err != nil {
			return nil, err
		}
		return &VarRefExpr{Pos: n.pos(), Name: name}, nil
	case "ThisExpr":
		return &ThisExpr{Pos: n.pos()}, nil
	}
	return nil, makeDecodeError(n, "unknown expression kind")
}

func makeDecodeError(n *rawNode, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s at line %d col %d: %s", ErrMalformed, n.Kind, n.Line, n.Col, fmt.Sprintf(format, args...))
}
