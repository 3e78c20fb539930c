// Package jasmin turns an IR class into Jasmin assembler text.
package jasmin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xiaobogaga/jmm/compiler/internal/ir"
)

var (
	ErrNotImplemented  = errors.New("not implemented")
	ErrUnknownVariable = errors.New("unknown variable")
)

const (
	indent      = "   "
	objectClass = "java/lang/Object"
	stackLimit  = 99
	localsLimit = 99
)

// Generator produces the text for one class. The text is built once and cached.
type Generator struct {
	class    *ir.ClassUnit
	method   *ir.Method
	cmpLabel int
	output   *strings.Builder
	code     string
	built    bool
}

func New(class *ir.ClassUnit) *Generator {
	return &Generator{class: class}
}

// Build returns the Jasmin text of the class. Calling it again returns the same text.
func (gen *Generator) Build() (string, error) {
	if gen.built {
		return gen.code, nil
	}
	gen.output = &strings.Builder{}
	gen.cmpLabel = 0
	err := gen.generateClass()
	if err != nil {
		return "", err
	}
	gen.code, gen.built = gen.output.String(), true
	return gen.code, nil
}

func (gen *Generator) writeOutput(line string) {
	gen.output.WriteString(line)
	gen.output.WriteString("\n")
}

// emit writes one indented instruction line.
func (gen *Generator) emit(format string, args ...interface{}) {
	gen.writeOutput(indent + fmt.Sprintf(format, args...))
}

func (gen *Generator) label(name string) {
	gen.writeOutput(name + ":")
}

func (gen *Generator) superClass() string {
	if gen.class.Super == "" {
		return objectClass
	}
	return gen.class.ResolveClass(gen.class.Super)
}

func (gen *Generator) generateClass() error {
	gen.writeOutput(".class " + gen.class.Name)
	gen.writeOutput(".super " + gen.superClass())
	gen.writeOutput("")
	for _, field := range gen.class.Fields {
		gen.writeOutput(fmt.Sprintf(".field %s%s %s", modifier(field.Access), field.Name, gen.descriptor(field.Type)))
	}
	if len(gen.class.Fields) > 0 {
		gen.writeOutput("")
	}
	gen.writeOutput(";default constructor")
	gen.writeOutput(".method public <init>()V")
	gen.emit("aload_0")
	gen.emit("invokespecial %s/<init>()V", gen.superClass())
	gen.emit("return")
	gen.writeOutput(".end method")
	for _, method := range gen.class.Methods {
		if method.IsConstructor {
			continue
		}
		err := gen.generateMethod(method)
		if err != nil {
			return err
		}
	}
	return nil
}

func modifier(access string) string {
	if access == "" {
		return ""
	}
	return access + " "
}

func (gen *Generator) generateMethod(method *ir.Method) error {
	gen.method = method
	defer func() { gen.method = nil }()
	header := ".method " + modifier(method.Access)
	if method.IsStatic {
		header += "static "
	}
	var params strings.Builder
	for _, param := range method.Params {
		params.WriteString(gen.descriptor(param.Type))
	}
	gen.writeOutput("")
	gen.writeOutput(fmt.Sprintf("%s%s(%s)%s", header, method.Name, params.String(), gen.descriptor(method.ReturnType)))
	gen.emit(".limit stack %d", stackLimit)
	gen.emit(".limit locals %d", localsLimit)
	for i, instr := range method.Instructions {
		for _, label := range method.LabelsAt(i) {
			gen.label(label)
		}
		err := gen.generateInstruction(instr)
		if err != nil {
			return fmt.Errorf("method %s: %w", method.Name, err)
		}
	}
	for _, label := range method.LabelsAt(len(method.Instructions)) {
		gen.label(label)
	}
	gen.writeOutput(".end method")
	return nil
}

// descriptor computes the type descriptor, resolving class names through the imports.
func (gen *Generator) descriptor(t ir.Type) string {
	switch t.Kind {
	case ir.Int32:
		return "I"
	case ir.Boolean:
		return "Z"
	case ir.Void:
		return "V"
	case ir.String:
		return "Ljava/lang/String;"
	case ir.ArrayRef:
		if t.Elem == nil {
			return "[I"
		}
		return "[" + gen.descriptor(*t.Elem)
	case ir.This:
		return "L" + gen.class.Name + ";"
	}
	return "L" + gen.class.ResolveClass(t.Name) + ";"
}

// owner returns the class that holds a field or method reached through an element of type t.
func (gen *Generator) owner(t ir.Type) string {
	if t.Kind == ir.This {
		return gen.class.Name
	}
	return gen.class.ResolveClass(t.Name)
}

func makeNotImplementedError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, fmt.Sprintf(format, args...))
}
