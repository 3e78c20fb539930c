package types

import "github.com/xiaobogaga/jmm/compiler/internal/symboltable"

// Assignable reports whether a value of type src can be stored where dst is expected. Array-ness
// must always match. Beyond equal names, a class value fits its declared superclass, and any
// imported name is assumed compatible both ways since its shape is unknown here.
func Assignable(table *symboltable.SymbolTable, src, dst Type) bool {
	if src.IsArray != dst.IsArray {
		return false
	}
	if src.Name == dst.Name {
		return true
	}
	if super, ok := table.Super(); ok && src.Name == table.ClassName() && dst.Name == super {
		return true
	}
	return table.IsImported(src.Name) || table.IsImported(dst.Name)
}

func IsPrimitive(t Type) bool {
	return t.Name == "int" || t.Name == "boolean"
}
