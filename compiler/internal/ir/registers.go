package ir

// assignRegisters fills m.VarTable. Class names, the receiver and field names never take a
// register.
func assignRegisters(m *Method) {
	next := 0
	if !m.IsStatic {
		m.VarTable["this"] = Descriptor{VirtualReg: 0, Type: Type{Kind: This}}
		next = 1
	}
	add := func(name string, t Type) {
		if _, ok := m.VarTable[name]; ok {
			return
		}
		m.VarTable[name] = Descriptor{VirtualReg: next, Type: t}
		next++
	}
	var visit func(e Element)
	visit = func(e Element) {
		switch e := e.(type) {
		case *Operand:
			if e.Type.Kind == ClassRef || e.Type.Kind == This || e.Name == "this" {
				return
			}
			add(e.Name, e.Type)
		case *ArrayOperand:
			add(e.Name, ArrayOf(e.Type))
			visit(e.Index)
		}
	}
	for _, param := range m.Params {
		visit(param)
	}
	var walk func(instr Instruction)
	walk = func(instr Instruction) {
		switch instr := instr.(type) {
		case *Assign:
			visit(instr.Dest)
			walk(instr.RHS)
		case *SingleOp:
			visit(instr.Operand)
		case *BinaryOp:
			visit(instr.Left)
			visit(instr.Right)
		case *UnaryOp:
			visit(instr.Operand)
		case *Call:
			visit(instr.Target)
			for _, arg := range instr.Args {
				visit(arg)
			}
		case *GetField:
			visit(instr.Object)
		case *PutField:
			visit(instr.Object)
			visit(instr.Value)
		case *Return:
			if instr.Value != nil {
				visit(instr.Value)
			}
		case *CondBranch:
			walk(instr.Cond)
		case *ArrayLength:
			visit(instr.Array)
		case *New:
			if instr.Size != nil {
				visit(instr.Size)
			}
		}
	}
	for _, instr := range m.Instructions {
		walk(instr)
	}
}
