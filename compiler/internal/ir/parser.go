package ir

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
)

var ErrSyntax = errors.New("ir syntax error")

var invokeKinds = map[string]InvokeKind{
	"invokevirtual": InvokeVirtual,
	"invokestatic":  InvokeStatic,
	"invokespecial": InvokeSpecial,
}

var binaryOps = map[string]OpType{}

func init() {
	for op, symbol := range opSymbols {
		if op != OpNot {
			binaryOps[symbol] = op
		}
	}
}

type Parser struct {
	currentTokens   []*Token
	currentTokenPos int
}

// Parse reads the text of one class and assigns a register to every variable of each method:
// this is 0 in instance methods, then the parameters in order, then every other variable in
// order of first appearance.
func Parse(rd io.Reader) (*ClassUnit, error) {
	content, err := ioutil.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(content)
	if err != nil {
		return nil, err
	}
	parser := &Parser{currentTokens: tokens}
	return parser.parseClassUnit()
}

func (parser *Parser) parseClassUnit() (*ClassUnit, error) {
	class := &ClassUnit{}
	for parser.isKeyword("import") {
		parser.stepForward()
		path, err := parser.parseDottedName()
		if err != nil {
			return nil, err
		}
		class.Imports = append(class.Imports, path)
		if !parser.expectSymbol(";") {
			return nil, parser.makeError("expect ; after import")
		}
	}
	name, ok := parser.expectIdentifier()
	if !ok {
		return nil, parser.makeError("expect class name")
	}
	class.Name = name
	if parser.isKeyword("extends") {
		parser.stepForward()
		class.Super, ok = parser.expectIdentifier()
		if !ok {
			return nil, parser.makeError("expect super class name")
		}
	}
	if !parser.expectSymbol("{") {
		return nil, parser.makeError("expect {")
	}
	for !parser.expectSymbol("}") {
		if !parser.expectSymbol(".") {
			return nil, parser.makeError("expect a class member")
		}
		kind, _ := parser.expectIdentifier()
		switch kind {
		case "field":
			field, err := parser.parseField()
			if err != nil {
				return nil, err
			}
			class.Fields = append(class.Fields, field)
		case "construct", "method":
			method, err := parser.parseMethod(kind == "construct")
			if err != nil {
				return nil, err
			}
			class.Methods = append(class.Methods, method)
		default:
			return nil, parser.makeError("unknown member .%s", kind)
		}
	}
	if parser.hasRemainTokens() {
		return nil, parser.makeError("unexpected text after class")
	}
	return class, nil
}

func (parser *Parser) parseDottedName() (string, error) {
	name, ok := parser.expectIdentifier()
	if !ok {
		return "", parser.makeError("expect a name")
	}
	for parser.expectSymbol(".") {
		part, ok := parser.expectIdentifier()
		if !ok {
			return "", parser.makeError("expect a name after .")
		}
		name += "." + part
	}
	return name, nil
}

// parseAccess consumes public or private when a name follows it.
func (parser *Parser) parseAccess() string {
	token, ok := parser.expectToken(IdentifierTP, false)
	if !ok || (token.content != "public" && token.content != "private") {
		return ""
	}
	if next := parser.peekToken(1); next == nil || next.tp != IdentifierTP {
		return ""
	}
	parser.stepForward()
	return token.content
}

func (parser *Parser) parseField() (Field, error) {
	access := parser.parseAccess()
	operand, err := parser.parseElement()
	if err != nil {
		return Field{}, err
	}
	op, ok := operand.(*Operand)
	if !ok || op.Type.Kind == ClassRef {
		return Field{}, parser.makeError("expect a typed field name")
	}
	if !parser.expectSymbol(";") {
		return Field{}, parser.makeError("expect ; after field")
	}
	return Field{Name: op.Name, Access: access, Type: op.Type}, nil
}

func (parser *Parser) parseMethod(isConstructor bool) (*Method, error) {
	method := &Method{IsConstructor: isConstructor, Labels: map[string]int{}, VarTable: map[string]Descriptor{}}
	method.Access = parser.parseAccess()
	if parser.isKeyword("static") {
		parser.stepForward()
		method.IsStatic = true
	}
	name, ok := parser.expectIdentifier()
	if !ok {
		return nil, parser.makeError("expect method name")
	}
	method.Name = name
	if !parser.expectSymbol("(") {
		return nil, parser.makeError("expect ( after method name")
	}
	for !parser.expectSymbol(")") {
		if len(method.Params) > 0 && !parser.expectSymbol(",") {
			return nil, parser.makeError("expect , between parameters")
		}
		param, err := parser.parseElement()
		if err != nil {
			return nil, err
		}
		op, ok := param.(*Operand)
		if !ok {
			return nil, parser.makeError("expect a parameter")
		}
		method.Params = append(method.Params, op)
	}
	retType, err := parser.parseTypeSuffix()
	if err != nil {
		return nil, err
	}
	method.ReturnType = retType
	if !parser.expectSymbol("{") {
		return nil, parser.makeError("expect { before method body")
	}
	for !parser.expectSymbol("}") {
		if !parser.hasRemainTokens() {
			return nil, parser.makeError("unterminated method %s", name)
		}
		err := parser.parseLine(method)
		if err != nil {
			return nil, err
		}
	}
	assignRegisters(method)
	return method, nil
}

// parseLine reads a label or one instruction.
func (parser *Parser) parseLine(method *Method) error {
	token, _ := parser.getCurrentToken()
	next := parser.peekToken(1)
	if token.tp == IdentifierTP && next != nil && next.tp == SymbolTP && next.content == ":" {
		parser.stepForward()
		parser.stepForward()
		method.Labels[token.content] = len(method.Instructions)
		return nil
	}
	instruction, err := parser.parseInstruction()
	if err != nil {
		return err
	}
	if !parser.expectSymbol(";") {
		return parser.makeError("expect ; after instruction")
	}
	method.Instructions = append(method.Instructions, instruction)
	return nil
}

func (parser *Parser) parseInstruction() (Instruction, error) {
	token, _ := parser.getCurrentToken()
	next := parser.peekToken(1)
	opensParen := next != nil && next.content == "("
	if token.tp == IdentifierTP {
		switch {
		case token.content == "if" && opensParen:
			return parser.parseCondBranch()
		case token.content == "goto" && next != nil && next.tp == IdentifierTP:
			parser.stepForward()
			label, _ := parser.expectIdentifier()
			return &Goto{Label: label}, nil
		case token.content == "putfield" && opensParen:
			return parser.parsePutField()
		case opensParen && isInvoke(token.content):
			return parser.parseCall()
		}
	}
	dest, err := parser.parseElement()
	if err != nil {
		return nil, err
	}
	if parser.expectSymbol(":=") {
		t, err := parser.parseTypeSuffix()
		if err != nil {
			return nil, err
		}
		rhs, err := parser.parseRHS()
		if err != nil {
			return nil, err
		}
		return &Assign{Dest: dest, Type: t, RHS: rhs}, nil
	}
	if op, ok := dest.(*Operand); ok && op.Name == "ret" {
		ret := &Return{Type: op.Type}
		if next, _ := parser.getCurrentToken(); next != nil && next.content != ";" {
			ret.Value, err = parser.parseElement()
			if err != nil {
				return nil, err
			}
		}
		return ret, nil
	}
	return nil, parser.makeError("expect an instruction")
}

func isInvoke(name string) bool {
	_, ok := invokeKinds[name]
	return ok
}

func (parser *Parser) parseCondBranch() (Instruction, error) {
	parser.stepForward()
	parser.stepForward()
	cond, err := parser.parseRHS()
	if err != nil {
		return nil, err
	}
	switch cond.(type) {
	case *SingleOp, *BinaryOp, *UnaryOp:
	default:
		return nil, parser.makeError("unsupported branch condition")
	}
	if !parser.expectSymbol(")") || !parser.isKeyword("goto") {
		return nil, parser.makeError("expect ) goto after condition")
	}
	parser.stepForward()
	label, ok := parser.expectIdentifier()
	if !ok {
		return nil, parser.makeError("expect a label")
	}
	return &CondBranch{Cond: cond, Label: label}, nil
}

// parseRHS reads the value side of an assignment, which is also the form of a branch condition.
func (parser *Parser) parseRHS() (Instruction, error) {
	token, ok := parser.getCurrentToken()
	if !ok {
		return nil, parser.makeError("expect a value")
	}
	next := parser.peekToken(1)
	opensParen := next != nil && next.content == "("
	if token.tp == IdentifierTP && opensParen {
		switch {
		case isInvoke(token.content):
			return parser.parseCall()
		case token.content == "getfield":
			return parser.parseGetField()
		case token.content == "new":
			return parser.parseNew()
		case token.content == "arraylength":
			return parser.parseArrayLength()
		}
	}
	if token.tp == SymbolTP && token.content == "!" {
		parser.stepForward()
		t, err := parser.parseTypeSuffix()
		if err != nil {
			return nil, err
		}
		operand, err := parser.parseElement()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: OpNot, Operand: operand, Type: t}, nil
	}
	left, err := parser.parseElement()
	if err != nil {
		return nil, err
	}
	opToken, _ := parser.getCurrentToken()
	if opToken == nil || opToken.tp != SymbolTP {
		return &SingleOp{Operand: left}, nil
	}
	op, isOp := binaryOps[opToken.content]
	if !isOp {
		return &SingleOp{Operand: left}, nil
	}
	parser.stepForward()
	t, err := parser.parseTypeSuffix()
	if err != nil {
		return nil, err
	}
	right, err := parser.parseElement()
	if err != nil {
		return nil, err
	}
	return &BinaryOp{Op: op, Left: left, Right: right, Type: t}, nil
}

func (parser *Parser) parseCall() (Instruction, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	parser.stepForward()
	call := &Call{Invoke: invokeKinds[token.content]}
	target, err := parser.parseElement()
	if err != nil {
		return nil, err
	}
	call.Target = target
	if !parser.expectSymbol(",") {
		return nil, parser.makeError("expect , after call target")
	}
	name, ok := parser.expectToken(StringTP, true)
	if !ok {
		return nil, parser.makeError("expect a quoted method name")
	}
	call.Method = name.content
	for parser.expectSymbol(",") {
		arg, err := parser.parseElement()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	if !parser.expectSymbol(")") {
		return nil, parser.makeError("expect ) after call arguments")
	}
	call.ReturnType, err = parser.parseTypeSuffix()
	if err != nil {
		return nil, err
	}
	return call, nil
}

// parseFieldAccess reads "(object, field.T" shared by getfield and putfield.
func (parser *Parser) parseFieldAccess() (Element, *Operand, error) {
	parser.stepForward()
	parser.stepForward()
	object, err := parser.parseElement()
	if err != nil {
		return nil, nil, err
	}
	if !parser.expectSymbol(",") {
		return nil, nil, parser.makeError("expect , after object")
	}
	field, err := parser.parseElement()
	if err != nil {
		return nil, nil, err
	}
	op, ok := field.(*Operand)
	if !ok {
		return nil, nil, parser.makeError("expect a field")
	}
	return object, op, nil
}

func (parser *Parser) parseGetField() (Instruction, error) {
	object, field, err := parser.parseFieldAccess()
	if err != nil {
		return nil, err
	}
	if !parser.expectSymbol(")") {
		return nil, parser.makeError("expect ) after getfield")
	}
	t, err := parser.parseTypeSuffix()
	if err != nil {
		return nil, err
	}
	return &GetField{Object: object, Field: field, Type: t}, nil
}

func (parser *Parser) parsePutField() (Instruction, error) {
	object, field, err := parser.parseFieldAccess()
	if err != nil {
		return nil, err
	}
	if !parser.expectSymbol(",") {
		return nil, parser.makeError("expect , before the stored value")
	}
	value, err := parser.parseElement()
	if err != nil {
		return nil, err
	}
	if !parser.expectSymbol(")") {
		return nil, parser.makeError("expect ) after putfield")
	}
	if _, err := parser.parseTypeSuffix(); err != nil {
		return nil, err
	}
	return &PutField{Object: object, Field: field, Value: value}, nil
}

func (parser *Parser) parseNew() (Instruction, error) {
	parser.stepForward()
	parser.stepForward()
	name, ok := parser.expectIdentifier()
	if !ok {
		return nil, parser.makeError("expect a class name or array")
	}
	instr := &New{}
	if name == "array" {
		if !parser.expectSymbol(",") {
			return nil, parser.makeError("expect , after array")
		}
		size, err := parser.parseElement()
		if err != nil {
			return nil, err
		}
		instr.Size = size
	}
	if !parser.expectSymbol(")") {
		return nil, parser.makeError("expect ) after new")
	}
	t, err := parser.parseTypeSuffix()
	if err != nil {
		return nil, err
	}
	instr.Type = t
	if name != "array" && t.Kind != ObjectRef {
		return nil, parser.makeError("new(%s) must produce an object", name)
	}
	return instr, nil
}

func (parser *Parser) parseArrayLength() (Instruction, error) {
	parser.stepForward()
	parser.stepForward()
	array, err := parser.parseElement()
	if err != nil {
		return nil, err
	}
	if !parser.expectSymbol(")") {
		return nil, parser.makeError("expect ) after arraylength")
	}
	if _, err := parser.parseTypeSuffix(); err != nil {
		return nil, err
	}
	return &ArrayLength{Array: array}, nil
}

// parseElement reads a literal, a variable, an indexed array element or a bare class name.
func (parser *Parser) parseElement() (Element, error) {
	token, ok := parser.getCurrentToken()
	if !ok {
		return nil, parser.makeError("expect an element")
	}
	switch token.tp {
	case IntegerTP, StringTP:
		parser.stepForward()
		t, err := parser.parseTypeSuffix()
		if err != nil {
			return nil, err
		}
		return &Literal{Value: token.content, Type: t}, nil
	case IdentifierTP:
		parser.stepForward()
	default:
		return nil, parser.makeError("unexpected %q", token.content)
	}
	name := token.content
	if parser.expectSymbol("[") {
		index, err := parser.parseElement()
		if err != nil {
			return nil, err
		}
		if !parser.expectSymbol("]") {
			return nil, parser.makeError("expect ]")
		}
		t, err := parser.parseTypeSuffix()
		if err != nil {
			return nil, err
		}
		return &ArrayOperand{Name: name, Index: index, Type: t}, nil
	}
	if !parser.isSymbol(".") {
		if name == "this" {
			return &Operand{Name: name, Type: Type{Kind: This}}, nil
		}
		return &Operand{Name: name, Type: Type{Kind: ClassRef, Name: name}}, nil
	}
	t, err := parser.parseTypeSuffix()
	if err != nil {
		return nil, err
	}
	if name == "this" {
		t = Type{Kind: This, Name: t.Name}
	}
	return &Operand{Name: name, Type: t}, nil
}

// parseTypeSuffix reads ".T".
func (parser *Parser) parseTypeSuffix() (Type, error) {
	if !parser.expectSymbol(".") {
		return Type{}, parser.makeError("expect a type")
	}
	name, ok := parser.expectIdentifier()
	if !ok {
		return Type{}, parser.makeError("expect a type name")
	}
	switch name {
	case "i32":
		return Int32Type, nil
	case "bool":
		return BooleanType, nil
	case "V":
		return VoidType, nil
	case "String":
		return StringType, nil
	case "array":
		elem, err := parser.parseTypeSuffix()
		if err != nil {
			return Type{}, err
		}
		return ArrayOf(elem), nil
	}
	return ObjectOf(name), nil
}

func (parser *Parser) getCurrentToken() (*Token, bool) {
	if !parser.hasRemainTokens() {
		return nil, false
	}
	return parser.currentTokens[parser.currentTokenPos], true
}

func (parser *Parser) peekToken(offset int) *Token {
	if parser.currentTokenPos+offset >= len(parser.currentTokens) {
		return nil
	}
	return parser.currentTokens[parser.currentTokenPos+offset]
}

func (parser *Parser) stepForward() {
	parser.currentTokenPos++
}

func (parser *Parser) hasRemainTokens() bool {
	return parser.currentTokenPos < len(parser.currentTokens)
}

func (parser *Parser) expectToken(expectedTokenTp TokenType, walk bool) (*Token, bool) {
	if !parser.hasRemainTokens() || parser.currentTokens[parser.currentTokenPos].tp != expectedTokenTp {
		return nil, false
	}
	token := parser.currentTokens[parser.currentTokenPos]
	if walk {
		parser.currentTokenPos++
	}
	return token, true
}

func (parser *Parser) expectIdentifier() (string, bool) {
	token, ok := parser.expectToken(IdentifierTP, true)
	if !ok {
		return "", false
	}
	return token.content, true
}

func (parser *Parser) isSymbol(symbol string) bool {
	token, ok := parser.expectToken(SymbolTP, false)
	return ok && token.content == symbol
}

// expectSymbol consumes the current token if it is symbol.
func (parser *Parser) expectSymbol(symbol string) bool {
	if !parser.isSymbol(symbol) {
		return false
	}
	parser.stepForward()
	return true
}

func (parser *Parser) isKeyword(keyword string) bool {
	token, ok := parser.expectToken(IdentifierTP, false)
	return ok && token.content == keyword
}

func (parser *Parser) makeError(format string, args ...interface{}) error {
	line := 0
	if token, ok := parser.getCurrentToken(); ok {
		line = token.line
	} else if len(parser.currentTokens) > 0 {
		line = parser.currentTokens[len(parser.currentTokens)-1].line
	}
	return makeSyntaxError(line, format, args...)
}

func makeSyntaxError(line int, format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, line, fmt.Sprintf(format, args...))
}
