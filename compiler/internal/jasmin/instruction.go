package jasmin

import (
	"fmt"
	"strconv"

	"github.com/xiaobogaga/jmm/compiler/internal/ir"
)

// branchOps maps a comparison to the jump taken when left - right satisfies it.
var branchOps = map[ir.OpType]string{
	ir.OpLess:      "iflt",
	ir.OpLessEq:    "ifle",
	ir.OpGreater:   "ifgt",
	ir.OpGreaterEq: "ifge",
	ir.OpEq:        "ifeq",
	ir.OpNotEq:     "ifne",
}

var arithmeticOps = map[ir.OpType]string{
	ir.OpAdd: "add",
	ir.OpSub: "sub",
	ir.OpMul: "mul",
	ir.OpDiv: "div",
	ir.OpAnd: "and",
	ir.OpOr:  "or",
}

func prefix(t ir.Type) string {
	if t.IsIntLike() {
		return "i"
	}
	return "a"
}

// generateInstruction writes an instruction in statement position, leaving the stack as it
// found it.
func (gen *Generator) generateInstruction(instr ir.Instruction) error {
	switch instr := instr.(type) {
	case *ir.Assign:
		return gen.generateAssign(instr)
	case *ir.Call:
		err := gen.generateCall(instr)
		if err != nil {
			return err
		}
		if instr.Invoke != ir.InvokeSpecial && instr.ReturnType.Kind != ir.Void {
			gen.emit("pop")
		}
		return nil
	case *ir.PutField:
		return gen.generatePutField(instr)
	case *ir.Return:
		return gen.generateReturn(instr)
	case *ir.Goto:
		gen.emit("goto %s", instr.Label)
		return nil
	case *ir.CondBranch:
		return gen.generateCondBranch(instr)
	}
	return makeNotImplementedError("%T as a statement", instr)
}

// generateValue pushes the value of instr.
func (gen *Generator) generateValue(instr ir.Instruction) error {
	switch instr := instr.(type) {
	case *ir.SingleOp:
		return gen.load(instr.Operand)
	case *ir.BinaryOp:
		return gen.generateBinaryOp(instr)
	case *ir.UnaryOp:
		return gen.generateUnaryOp(instr)
	case *ir.Call:
		return gen.generateCall(instr)
	case *ir.GetField:
		err := gen.load(instr.Object)
		if err != nil {
			return err
		}
		gen.emit("getfield %s/%s %s", gen.owner(instr.Object.ElemType()), instr.Field.Name, gen.descriptor(instr.Field.Type))
		return nil
	case *ir.ArrayLength:
		err := gen.load(instr.Array)
		if err != nil {
			return err
		}
		gen.emit("arraylength")
		return nil
	case *ir.New:
		if instr.Type.Kind == ir.ArrayRef {
			err := gen.load(instr.Size)
			if err != nil {
				return err
			}
			gen.emit("newarray int")
			return nil
		}
		gen.emit("new %s", gen.class.ResolveClass(instr.Type.Name))
		gen.emit("dup")
		return nil
	}
	return makeNotImplementedError("%T as a value", instr)
}

func (gen *Generator) register(name string) (int, error) {
	desc, ok := gen.method.VarTable[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	return desc.VirtualReg, nil
}

// registerOp writes op with the compact _N form for the first four registers.
func (gen *Generator) registerOp(op string, reg int) {
	if reg < 4 {
		gen.emit("%s_%d", op, reg)
		return
	}
	gen.emit("%s %d", op, reg)
}

func (gen *Generator) load(e ir.Element) error {
	switch e := e.(type) {
	case *ir.Literal:
		gen.generateLiteral(e)
		return nil
	case *ir.Operand:
		if e.Type.Kind == ir.This || e.Name == "this" {
			gen.emit("aload_0")
			return nil
		}
		if e.Type.Kind == ir.ClassRef {
			return makeNotImplementedError("loading class %s", e.Name)
		}
		reg, err := gen.register(e.Name)
		if err != nil {
			return err
		}
		gen.registerOp(prefix(e.Type)+"load", reg)
		return nil
	case *ir.ArrayOperand:
		err := gen.loadArrayAndIndex(e)
		if err != nil {
			return err
		}
		gen.emit("%saload", prefix(e.Type))
		return nil
	}
	return makeNotImplementedError("element %T", e)
}

func (gen *Generator) loadArrayAndIndex(e *ir.ArrayOperand) error {
	reg, err := gen.register(e.Name)
	if err != nil {
		return err
	}
	gen.registerOp("aload", reg)
	return gen.load(e.Index)
}

func (gen *Generator) generateLiteral(literal *ir.Literal) {
	if !literal.Type.IsIntLike() {
		gen.emit("ldc %q", literal.Value)
		return
	}
	val, err := strconv.Atoi(literal.Value)
	switch {
	case err != nil:
		gen.emit("ldc %s", literal.Value)
	case val == -1:
		gen.emit("iconst_m1")
	case val >= 0 && val <= 5:
		gen.emit("iconst_%d", val)
	case val >= -128 && val <= 127:
		gen.emit("bipush %d", val)
	case val >= -32768 && val <= 32767:
		gen.emit("sipush %d", val)
	default:
		gen.emit("ldc %d", val)
	}
}

func (gen *Generator) generateAssign(assign *ir.Assign) error {
	switch dest := assign.Dest.(type) {
	case *ir.Operand:
		err := gen.generateValue(assign.RHS)
		if err != nil {
			return err
		}
		reg, err := gen.register(dest.Name)
		if err != nil {
			return err
		}
		gen.registerOp(prefix(dest.Type)+"store", reg)
		return nil
	case *ir.ArrayOperand:
		err := gen.loadArrayAndIndex(dest)
		if err != nil {
			return err
		}
		err = gen.generateValue(assign.RHS)
		if err != nil {
			return err
		}
		gen.emit("%sastore", prefix(dest.Type))
		return nil
	}
	return makeNotImplementedError("assignment to %T", assign.Dest)
}

func (gen *Generator) loadOperands(elements ...ir.Element) error {
	for _, e := range elements {
		err := gen.load(e)
		if err != nil {
			return err
		}
	}
	return nil
}

func (gen *Generator) generateBinaryOp(op *ir.BinaryOp) error {
	err := gen.loadOperands(op.Left, op.Right)
	if err != nil {
		return err
	}
	if name, ok := arithmeticOps[op.Op]; ok {
		gen.emit("%s%s", prefix(op.Type), name)
		return nil
	}
	branch, ok := branchOps[op.Op]
	if !ok {
		return makeNotImplementedError("binary operator %s", op.Op)
	}
	// The machine has no instruction turning a comparison into a value.
	trueLabel := fmt.Sprintf("cmp_true_%d", gen.cmpLabel)
	endLabel := fmt.Sprintf("cmp_end_%d", gen.cmpLabel)
	gen.cmpLabel++
	gen.emit("isub")
	gen.emit("%s %s", branch, trueLabel)
	gen.emit("iconst_0")
	gen.emit("goto %s", endLabel)
	gen.label(trueLabel)
	gen.emit("iconst_1")
	gen.label(endLabel)
	return nil
}

func (gen *Generator) generateUnaryOp(op *ir.UnaryOp) error {
	if op.Op != ir.OpNot {
		return makeNotImplementedError("unary operator %s", op.Op)
	}
	err := gen.load(op.Operand)
	if err != nil {
		return err
	}
	gen.emit("iconst_1")
	gen.emit("ixor")
	return nil
}

func (gen *Generator) generateCondBranch(branch *ir.CondBranch) error {
	switch cond := branch.Cond.(type) {
	case *ir.BinaryOp:
		if jump, ok := branchOps[cond.Op]; ok {
			err := gen.loadOperands(cond.Left, cond.Right)
			if err != nil {
				return err
			}
			gen.emit("isub")
			gen.emit("%s %s", jump, branch.Label)
			return nil
		}
	case *ir.UnaryOp:
		if cond.Op == ir.OpNot {
			err := gen.load(cond.Operand)
			if err != nil {
				return err
			}
			gen.emit("ifeq %s", branch.Label)
			return nil
		}
	}
	err := gen.generateValue(branch.Cond)
	if err != nil {
		return err
	}
	gen.emit("ifne %s", branch.Label)
	return nil
}

func (gen *Generator) generateCall(call *ir.Call) error {
	switch call.Invoke {
	case ir.InvokeSpecial:
		err := gen.load(call.Target)
		if err != nil {
			return err
		}
		if call.Target.ElemType().Kind == ir.This {
			gen.emit("invokespecial %s/<init>()V", gen.superClass())
			return nil
		}
		gen.emit("invokespecial %s/<init>()V", gen.owner(call.Target.ElemType()))
		// Drops the reference duplicated by new.
		gen.emit("pop")
		return nil
	case ir.InvokeStatic:
		err := gen.loadOperands(call.Args...)
		if err != nil {
			return err
		}
		gen.emit("invokestatic %s/%s%s", gen.owner(call.Target.ElemType()), call.Method, gen.methodDescriptor(call))
		return nil
	case ir.InvokeVirtual:
		err := gen.load(call.Target)
		if err != nil {
			return err
		}
		err = gen.loadOperands(call.Args...)
		if err != nil {
			return err
		}
		gen.emit("invokevirtual %s/%s%s", gen.owner(call.Target.ElemType()), call.Method, gen.methodDescriptor(call))
		return nil
	}
	return makeNotImplementedError("invocation %s", call.Invoke)
}

func (gen *Generator) methodDescriptor(call *ir.Call) string {
	desc := "("
	for _, arg := range call.Args {
		desc += gen.descriptor(arg.ElemType())
	}
	return desc + ")" + gen.descriptor(call.ReturnType)
}

func (gen *Generator) generatePutField(put *ir.PutField) error {
	err := gen.loadOperands(put.Object, put.Value)
	if err != nil {
		return err
	}
	gen.emit("putfield %s/%s %s", gen.owner(put.Object.ElemType()), put.Field.Name, gen.descriptor(put.Field.Type))
	return nil
}

func (gen *Generator) generateReturn(ret *ir.Return) error {
	if ret.Value == nil {
		gen.emit("return")
		return nil
	}
	err := gen.load(ret.Value)
	if err != nil {
		return err
	}
	gen.emit("%sreturn", prefix(ret.Type))
	return nil
}
