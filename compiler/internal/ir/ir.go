package ir

import (
	"sort"
	"strings"
)

// The object model of the three-address text. A ClassUnit is read once from text, handed to the
// bytecode generator and dropped.

type ElementType int

const (
	Int32 ElementType = iota
	Boolean
	Void
	String
	ArrayRef
	ObjectRef
	This     // the receiver of an instance method
	ClassRef // a class named in a static call, e.g. io in invokestatic(io, ...)
)

type Type struct {
	Kind ElementType
	Elem *Type  // ArrayRef only.
	Name string // ObjectRef, ClassRef and a typed This.
}

var (
	Int32Type   = Type{Kind: Int32}
	BooleanType = Type{Kind: Boolean}
	VoidType    = Type{Kind: Void}
	StringType  = Type{Kind: String}
)

func ArrayOf(elem Type) Type { return Type{Kind: ArrayRef, Elem: &elem} }

func ObjectOf(name string) Type { return Type{Kind: ObjectRef, Name: name} }

// IsIntLike reports whether values of t live in int registers and use the i-prefixed opcodes.
func (t Type) IsIntLike() bool {
	return t.Kind == Int32 || t.Kind == Boolean
}

func (t Type) String() string {
	switch t.Kind {
	case Int32:
		return "i32"
	case Boolean:
		return "bool"
	case Void:
		return "V"
	case String:
		return "String"
	case ArrayRef:
		if t.Elem == nil {
			return "array"
		}
		return "array." + t.Elem.String()
	}
	return t.Name
}

type Element interface {
	ElemType() Type
	element()
}

// Literal is an int, boolean (0 or 1) or string constant.
type Literal struct {
	Value string
	Type  Type
}

type Operand struct {
	Name string
	Type Type
}

// ArrayOperand is an indexed element, a[i]. Type is the element type.
type ArrayOperand struct {
	Name  string
	Index Element
	Type  Type
}

func (l *Literal) ElemType() Type      { return l.Type }
func (o *Operand) ElemType() Type      { return o.Type }
func (a *ArrayOperand) ElemType() Type { return a.Type }

func (*Literal) element()      {}
func (*Operand) element()      {}
func (*ArrayOperand) element() {}

type OpType int

const (
	OpAdd OpType = iota
	OpSub
	OpMul
	OpDiv
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpEq
	OpNotEq
	OpAnd
	OpOr
	OpNot
)

var opSymbols = map[OpType]string{
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpLess:      "<",
	OpLessEq:    "<=",
	OpGreater:   ">",
	OpGreaterEq: ">=",
	OpEq:        "==",
	OpNotEq:     "!=",
	OpAnd:       "&&",
	OpOr:        "||",
	OpNot:       "!",
}

func (op OpType) String() string { return opSymbols[op] }

type InvokeKind int

const (
	InvokeVirtual InvokeKind = iota
	InvokeStatic
	InvokeSpecial
)

func (k InvokeKind) String() string {
	switch k {
	case InvokeVirtual:
		return "invokevirtual"
	case InvokeStatic:
		return "invokestatic"
	}
	return "invokespecial"
}

type Instruction interface {
	instruction()
}

// Assign stores RHS into Dest, an *Operand or an *ArrayOperand.
type Assign struct {
	Dest Element
	Type Type
	RHS  Instruction
}

type SingleOp struct {
	Operand Element
}

type BinaryOp struct {
	Op    OpType
	Left  Element
	Right Element
	Type  Type
}

type UnaryOp struct {
	Op      OpType
	Operand Element
	Type    Type
}

// Call is any invocation. For InvokeStatic the target is a ClassRef operand; Method is "<init>"
// for InvokeSpecial.
type Call struct {
	Invoke     InvokeKind
	Target     Element
	Method     string
	Args       []Element
	ReturnType Type
}

type GetField struct {
	Object Element
	Field  *Operand
	Type   Type
}

type PutField struct {
	Object Element
	Field  *Operand
	Value  Element
}

// Return carries a nil Value for void methods.
type Return struct {
	Value Element
	Type  Type
}

// CondBranch jumps to Label when Cond, a SingleOp, BinaryOp or UnaryOp, is true.
type CondBranch struct {
	Cond  Instruction
	Label string
}

type Goto struct {
	Label string
}

type ArrayLength struct {
	Array Element
}

// New allocates an object of Type, or an int array of Size elements when Type is an array.
type New struct {
	Type Type
	Size Element
}

func (*Assign) instruction()      {}
func (*SingleOp) instruction()    {}
func (*BinaryOp) instruction()    {}
func (*UnaryOp) instruction()     {}
func (*Call) instruction()        {}
func (*GetField) instruction()    {}
func (*PutField) instruction()    {}
func (*Return) instruction()      {}
func (*CondBranch) instruction()  {}
func (*Goto) instruction()        {}
func (*ArrayLength) instruction() {}
func (*New) instruction()         {}

type Descriptor struct {
	VirtualReg int
	Type       Type
}

type Field struct {
	Name   string
	Access string // "public", "private" or empty.
	Type   Type
}

type Method struct {
	Name          string
	Access        string
	IsStatic      bool
	IsConstructor bool
	Params        []*Operand
	ReturnType    Type
	Instructions  []Instruction
	// Labels maps a label to the index of the instruction it precedes. A label at the very end
	// of a method maps to len(Instructions).
	Labels   map[string]int
	VarTable map[string]Descriptor
}

type ClassUnit struct {
	Name    string
	Super   string // Empty when the class extends nothing.
	Imports []string
	Fields  []Field
	Methods []*Method
}

// ResolveClass returns the slash separated name of a class, looking it up by the last segment
// of each import. Names that are not imported are returned unchanged.
func (class *ClassUnit) ResolveClass(name string) string {
	for _, imp := range class.Imports {
		if imp == name || strings.HasSuffix(imp, "."+name) {
			return strings.ReplaceAll(imp, ".", "/")
		}
	}
	return name
}

// LabelsAt returns the labels placed before instruction i, sorted by name.
func (m *Method) LabelsAt(i int) []string {
	var labels []string
	for label, at := range m.Labels {
		if at == i {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}
