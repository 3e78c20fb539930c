package symboltable

import (
	"errors"
	"fmt"

	"github.com/xiaobogaga/jmm/compiler/internal/ast"
)

var ErrStructure = errors.New("invalid program structure")

// Type is a declared type. Names other than int and boolean refer to the class itself, its
// superclass or an import.
type Type struct {
	Name    string
	IsArray bool
}

func (t Type) String() string {
	if t.IsArray {
		return t.Name + "[]"
	}
	return t.Name
}

func (t Type) Elem() Type { return Type{Name: t.Name} }

var (
	Int         = Type{Name: "int"}
	IntArray    = Type{Name: "int", IsArray: true}
	Boolean     = Type{Name: "boolean"}
	Void        = Type{Name: "void"}
	StringArray = Type{Name: "String", IsArray: true}
)

func TypeOf(t *ast.TypeNode) Type {
	return Type{Name: t.Name, IsArray: t.IsArray}
}

type Symbol struct {
	Type Type
	Name string
}

type VarargSymbol struct {
	Symbol
	IsVararg bool
}

// SymbolTable is the signature of one compilation unit. It is never modified after Build.
type SymbolTable struct {
	imports     []string
	className   string
	superClass  string
	fields      []Symbol
	methods     []string
	statics     map[string]bool
	returnTypes map[string]Type
	params      map[string][]VarargSymbol
	locals      map[string][]Symbol
}

func (table *SymbolTable) Imports() []string      { return append([]string(nil), table.imports...) }
func (table *SymbolTable) ClassName() string      { return table.className }
func (table *SymbolTable) Fields() []Symbol       { return append([]Symbol(nil), table.fields...) }
func (table *SymbolTable) Methods() []string      { return append([]string(nil), table.methods...) }
func (table *SymbolTable) IsStatic(m string) bool { return table.statics[m] }

func (table *SymbolTable) Super() (string, bool) {
	return table.superClass, table.superClass != ""
}

func (table *SymbolTable) HasMethod(m string) bool {
	_, ok := table.returnTypes[m]
	return ok
}

func (table *SymbolTable) ReturnType(m string) (Type, bool) {
	t, ok := table.returnTypes[m]
	return t, ok
}

func (table *SymbolTable) Parameters(m string) []VarargSymbol {
	return append([]VarargSymbol(nil), table.params[m]...)
}

func (table *SymbolTable) LocalVariables(m string) []Symbol {
	return append([]Symbol(nil), table.locals[m]...)
}

func (table *SymbolTable) Field(name string) (Symbol, bool) {
	for _, f := range table.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Symbol{}, false
}

// ResolveImport maps a simple name to the dotted path of the import ending with it.
func (table *SymbolTable) ResolveImport(name string) (string, bool) {
	for _, imp := range table.imports {
		if imp == name || hasSuffixSegment(imp, name) {
			return imp, true
		}
	}
	return "", false
}

func (table *SymbolTable) IsImported(name string) bool {
	_, ok := table.ResolveImport(name)
	return ok
}

// SuperIsImported reports whether the class extends a class known only through an import, in
// which case calls to undeclared methods on this are assumed valid.
func (table *SymbolTable) SuperIsImported() bool {
	return table.superClass != "" && table.IsImported(table.superClass)
}

func hasSuffixSegment(path, name string) bool {
	n := len(path) - len(name)
	return n > 0 && path[n-1] == '.' && path[n:] == name
}

// Build walks the program once. Duplicate names are kept as declared; for methods only the
// first declaration is entered since there is no overloading.
func Build(prog *ast.Program) (*SymbolTable, error) {
	if prog == nil || prog.Class == nil {
		return nil, fmt.Errorf("%w: program without a class", ErrStructure)
	}
	table := &SymbolTable{
		statics:     map[string]bool{},
		returnTypes: map[string]Type{},
		params:      map[string][]VarargSymbol{},
		locals:      map[string][]Symbol{},
	}
	for _, imp := range prog.Imports {
		table.imports = append(table.imports, imp.DottedPath())
	}
	class := prog.Class
	table.className = class.Name
	table.superClass = class.Super
	for _, field := range class.Fields {
		symbol, err := buildSymbol(field.Type, field.Name, field.Pos)
		if err != nil {
			return nil, err
		}
		table.fields = append(table.fields, symbol)
	}
	for _, method := range class.Methods {
		if table.HasMethod(method.Name) {
			continue
		}
		err := table.buildMethod(method)
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}

func (table *SymbolTable) buildMethod(method *ast.MethodDecl) error {
	name := method.Name
	params := []VarargSymbol{}
	if name == "main" {
		table.returnTypes[name] = Void
		params = append(params, VarargSymbol{Symbol: Symbol{Type: StringArray, Name: mainParamName(method)}})
	} else {
		if method.ReturnType == nil {
			return makeStructureError(method.Pos, "method %s has no return type", name)
		}
		table.returnTypes[name] = TypeOf(method.ReturnType)
		for _, param := range method.Params {
			symbol, err := buildSymbol(param.Type, param.Name, param.Pos)
			if err != nil {
				return err
			}
			params = append(params, VarargSymbol{Symbol: symbol, IsVararg: param.Type.IsVararg})
		}
	}
	table.methods = append(table.methods, name)
	table.statics[name] = method.IsStatic || name == "main"
	table.params[name] = params
	locals := []Symbol{}
	for _, local := range method.Locals {
		symbol, err := buildSymbol(local.Type, local.Name, local.Pos)
		if err != nil {
			return err
		}
		locals = append(locals, symbol)
	}
	table.locals[name] = locals
	return nil
}

func mainParamName(method *ast.MethodDecl) string {
	if len(method.Params) == 1 && method.Params[0].Name != "" {
		return method.Params[0].Name
	}
	return "args"
}

func buildSymbol(t *ast.TypeNode, name string, pos ast.Pos) (Symbol, error) {
	if t == nil {
		return Symbol{}, makeStructureError(pos, "declaration of %s has no type", name)
	}
	return Symbol{Type: TypeOf(t), Name: name}, nil
}

func makeStructureError(pos ast.Pos, format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d col %d: %s", ErrStructure, pos.Line, pos.Col, fmt.Sprintf(format, args...))
}
