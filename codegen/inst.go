package codegen

import (
	"fmt"
	"strings"

	"nirgen/nir"
	"nirgen/report"
)

// emitInst renders a single instruction, per §4.4's terminator table and
// op-rendering rules. Terminator targets are always printed as the
// target block's own split-0 header: a block is only ever entered at
// its entry point, never mid-split.
func (e *Emitter) emitInst(inst nir.Inst) string {
	switch v := inst.(type) {
	case nir.LetInst:
		return e.emitLet(v)
	case nir.RetInst:
		if v.Value == nil {
			return "  ret void\n"
		}
		return "  ret " + e.valueText(e.deconstify(v.Value)) + "\n"
	case nir.JumpInst:
		return "  br label %" + blockLabel(v.Next.Target, 0) + "\n"
	case nir.IfInst:
		cond := e.valueText(e.deconstify(v.Cond))
		return fmt.Sprintf("  br %s, label %%%s, label %%%s\n",
			cond, blockLabel(v.Then.Target, 0), blockLabel(v.Else.Target, 0))
	case nir.SwitchInst:
		return e.emitSwitch(v)
	case nir.UnreachableInst:
		return "  unreachable\n"
	case nir.NoneInst:
		return ""
	default:
		report.ICE("unsupported construct: instruction %#v is outside the closed Inst algebra", inst)
		return ""
	}
}

func (e *Emitter) emitSwitch(v nir.SwitchInst) string {
	scrut := e.valueText(e.deconstify(v.Scrutinee))

	var cases strings.Builder
	for _, c := range v.Cases {
		caseVal := e.valueText(e.deconstify(c.CaseValue))
		cases.WriteString(fmt.Sprintf(" %s, label %%%s", caseVal, blockLabel(c.Target, 0)))
	}

	return fmt.Sprintf("  switch %s, label %%%s [%s ]\n", scrut, blockLabel(v.Default.Target, 0), cases.String())
}

// emitLet renders a Let(name, op, unwind) instruction. Copy bindings
// produce no output; a Call is handled separately (it alone can grow
// into an invoke and split the block); every other op may expand into a
// short pre-sequence of bitcasts before the instruction that actually
// binds the Let's name.
func (e *Emitter) emitLet(let nir.LetInst) string {
	if _, ok := let.Op.(nir.CopyOp); ok {
		return ""
	}

	if call, ok := let.Op.(nir.CallOp); ok {
		return e.emitCall(let.Name, call, let.Unwind)
	}

	pre, final := e.opText(let.Op)

	if _, isVoid := let.Op.ResultType().(nir.VoidType); isVoid {
		return pre + "  " + final + "\n"
	}
	return pre + "  " + localIdent(let.Name) + " = " + final + "\n"
}

// emitCall renders a Call op, including the bitcast-and-split handling
// §4.4 requires for indirect callees and for unwinding calls.
func (e *Emitter) emitCall(name nir.LocalName, call nir.CallOp, unwind nir.Next) string {
	callee, pre := e.calleeText(call)
	args := make([]string, len(call.Args))
	for i, a := range call.Args {
		args[i] = e.valueText(e.deconstify(a))
	}
	argList := strings.Join(args, ", ")

	resTy := call.Sig.Ret
	_, isVoid := resTy.(nir.VoidType)

	var bind string
	if !isVoid {
		bind = localIdent(name) + " = "
	}

	var b strings.Builder
	b.WriteString(pre)

	if unwind.Kind == nir.NextUnwindKind {
		newSplit := e.currentBlockSplit + 1
		nextLabel := blockLabel(e.currentBlockName, newSplit)
		b.WriteString(fmt.Sprintf("  %sinvoke %s %s(%s)\n", bind, typeText(resTy), callee, argList))
		b.WriteString(fmt.Sprintf("          to label %%%s unwind label %%%s\n", nextLabel, blockLabel(unwind.Target, 0)))
		e.currentBlockSplit = newSplit
		b.WriteString(nextLabel + ":\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %scall %s %s(%s)\n", bind, typeText(resTy), callee, argList))
	return b.String()
}

// calleeText returns the printed callee operand and any instruction
// text (a bitcast) that must precede the call/invoke line. A direct
// call is possible when the callee is a known global whose recorded
// signature matches the call site; otherwise the callee is bitcast from
// i8* to the required function-pointer type first.
func (e *Emitter) calleeText(call nir.CallOp) (callee string, pre string) {
	if g, ok := call.Callee.(nir.GlobalValue); ok {
		if ft, ok := e.lookup(g.Name).(nir.FuncType); ok && sigEqual(ft, call.Sig) {
			return quotedGlobal(g.Name), ""
		}
	}

	fnPtrTy := typeText(call.Sig) + "*"
	tmp := e.newTemp()
	bareCallee := bareValue(e, call.Callee)
	pre = fmt.Sprintf("  %s = bitcast i8* %s to %s\n", tmp, bareCallee, fnPtrTy)
	return tmp, pre
}

// bareValue renders v's deconstified literal form without its leading
// type token, for use as a bitcast source operand.
func bareValue(e *Emitter, v nir.Value) string {
	dv := e.deconstify(v)
	return e.literalText(dv)
}

// sigEqual reports whether two function signatures print identically.
func sigEqual(a, b nir.FuncType) bool {
	return typeText(a) == typeText(b)
}

// opText renders the non-Call, non-Copy op table of §4.4. It returns a
// pre-sequence of zero or more complete, newline-terminated lines that
// must appear before the final line, and the final line's rendering
// (without the "%name = " binding prefix, which emitLet adds).
func (e *Emitter) opText(op nir.Op) (pre, final string) {
	switch v := op.(type) {
	case nir.LoadOp:
		return e.loadText(v)
	case nir.StoreOp:
		return e.storeText(v)
	case nir.ElemOp:
		return e.elemText(v)
	case nir.StackallocOp:
		return e.stackallocText(v)
	case nir.ExtractOp:
		return "", e.extractText(v)
	case nir.InsertOp:
		return "", e.insertText(v)
	case nir.BinOp:
		return "", e.binText(v)
	case nir.CompOp:
		return "", e.compText(v)
	case nir.ConvOp:
		return "", e.convText(v)
	case nir.SelectOp:
		return "", e.selectText(v)
	default:
		report.ICE("unsupported construct: op %#v is outside the closed Op algebra", op)
		return "", ""
	}
}

// loadText bitcasts the i8* pointer to <ty>* then loads through it.
func (e *Emitter) loadText(v nir.LoadOp) (pre, final string) {
	tmp := e.newTemp()
	ptr := bareValue(e, v.Ptr)
	pre = fmt.Sprintf("  %s = bitcast i8* %s to %s*\n", tmp, ptr, typeText(v.Ty))

	prefix := ""
	if v.Volatile {
		prefix = "volatile "
	}
	final = fmt.Sprintf("%sload %s, %s* %s", prefix, typeText(v.Ty), typeText(v.Ty), tmp)
	return pre, final
}

// storeText bitcasts the i8* pointer to <ty>* then stores through it.
func (e *Emitter) storeText(v nir.StoreOp) (pre, final string) {
	tmp := e.newTemp()
	ptr := bareValue(e, v.Ptr)
	pre = fmt.Sprintf("  %s = bitcast i8* %s to %s*\n", tmp, ptr, typeText(v.Ty))

	val := e.valueText(e.deconstify(v.Val))
	prefix := ""
	if v.Volatile {
		prefix = "volatile "
	}
	final = fmt.Sprintf("%sstore %s, %s* %s", prefix, val, typeText(v.Ty), tmp)
	return pre, final
}

// elemText bitcasts the pointer to <ty>*, computes the GEP at the typed
// element, then bitcasts the result back to i8* (§4.4's Elem rule).
func (e *Emitter) elemText(v nir.ElemOp) (pre, final string) {
	typedPtr := e.newTemp()
	gepResult := e.newTemp()
	ptr := bareValue(e, v.Ptr)

	idx := make([]string, len(v.Indexes))
	for i, ix := range v.Indexes {
		idx[i] = e.valueText(e.deconstify(ix))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s = bitcast i8* %s to %s*\n", typedPtr, ptr, typeText(v.Ty)))
	b.WriteString(fmt.Sprintf("  %s = getelementptr %s, %s* %s, %s\n",
		gepResult, typeText(v.Ty), typeText(v.Ty), typedPtr, strings.Join(idx, ", ")))

	final = fmt.Sprintf("bitcast %s* %s to i8*", typeText(v.Result), gepResult)
	return b.String(), final
}

// stackallocText allocates stack space for a typed value, then bitcasts
// the resulting typed pointer back to i8* (§4.4's Stackalloc rule).
func (e *Emitter) stackallocText(v nir.StackallocOp) (pre, final string) {
	allocTmp := e.newTemp()

	allocLine := fmt.Sprintf("  %s = alloca %s", allocTmp, typeText(v.Ty))
	if v.N != nil {
		allocLine += ", " + e.valueText(e.deconstify(v.N))
	}

	final = fmt.Sprintf("bitcast %s* %s to i8*", typeText(v.Ty), allocTmp)
	return allocLine + "\n", final
}

func (e *Emitter) extractText(v nir.ExtractOp) string {
	agg := e.valueText(e.deconstify(v.Agg))
	idx := make([]string, len(v.Indexes))
	for i, ix := range v.Indexes {
		idx[i] = fmt.Sprintf("%d", ix)
	}
	return fmt.Sprintf("extractvalue %s, %s", agg, strings.Join(idx, ", "))
}

func (e *Emitter) insertText(v nir.InsertOp) string {
	agg := e.valueText(e.deconstify(v.Agg))
	val := e.valueText(e.deconstify(v.Val))
	idx := make([]string, len(v.Indexes))
	for i, ix := range v.Indexes {
		idx[i] = fmt.Sprintf("%d", ix)
	}
	return fmt.Sprintf("insertvalue %s, %s, %s", agg, val, strings.Join(idx, ", "))
}

var binMnemonics = map[nir.BinOpKind]string{
	nir.Iadd: "add", nir.Isub: "sub", nir.Imul: "mul",
	nir.Sdiv: "sdiv", nir.Udiv: "udiv", nir.Srem: "srem", nir.Urem: "urem",
	nir.Fadd: "fadd", nir.Fsub: "fsub", nir.Fmul: "fmul", nir.Fdiv: "fdiv", nir.Frem: "frem",
	nir.Shl: "shl", nir.Lshr: "lshr", nir.Ashr: "ashr",
	nir.And: "and", nir.Or: "or", nir.Xor: "xor",
}

func (e *Emitter) binText(v nir.BinOp) string {
	l := e.literalText(e.deconstify(v.L))
	r := e.literalText(e.deconstify(v.R))
	return fmt.Sprintf("%s %s %s, %s", binMnemonics[v.Kind], typeText(v.Ty), l, r)
}

var compMnemonics = map[nir.CompOpKind]struct {
	instr, pred string
}{
	nir.CmpIEq: {"icmp", "eq"}, nir.CmpINe: {"icmp", "ne"},
	nir.CmpSlt: {"icmp", "slt"}, nir.CmpSle: {"icmp", "sle"},
	nir.CmpSgt: {"icmp", "sgt"}, nir.CmpSge: {"icmp", "sge"},
	nir.CmpUlt: {"icmp", "ult"}, nir.CmpUle: {"icmp", "ule"},
	nir.CmpUgt: {"icmp", "ugt"}, nir.CmpUge: {"icmp", "uge"},
	nir.CmpFoeq: {"fcmp", "oeq"}, nir.CmpFone: {"fcmp", "one"},
	nir.CmpFolt: {"fcmp", "olt"}, nir.CmpFole: {"fcmp", "ole"},
	nir.CmpFogt: {"fcmp", "ogt"}, nir.CmpFoge: {"fcmp", "oge"},
	nir.CmpFueq: {"fcmp", "ueq"}, nir.CmpFune: {"fcmp", "une"},
}

func (e *Emitter) compText(v nir.CompOp) string {
	m := compMnemonics[v.Kind]
	l := e.literalText(e.deconstify(v.L))
	r := e.literalText(e.deconstify(v.R))
	return fmt.Sprintf("%s %s %s %s, %s", m.instr, m.pred, typeText(v.Ty), l, r)
}

var convMnemonics = map[nir.ConvKind]string{
	nir.ConvTrunc: "trunc", nir.ConvZext: "zext", nir.ConvSext: "sext",
	nir.ConvFptrunc: "fptrunc", nir.ConvFpext: "fpext",
	nir.ConvFptoui: "fptoui", nir.ConvFptosi: "fptosi",
	nir.ConvUitofp: "uitofp", nir.ConvSitofp: "sitofp",
	nir.ConvBitcast: "bitcast", nir.ConvPtrtoint: "ptrtoint", nir.ConvInttoptr: "inttoptr",
}

func (e *Emitter) convText(v nir.ConvOp) string {
	val := e.valueText(e.deconstify(v.V))
	return fmt.Sprintf("%s %s to %s", convMnemonics[v.Kind], val, typeText(v.To))
}

func (e *Emitter) selectText(v nir.SelectOp) string {
	cond := e.valueText(e.deconstify(v.Cond))
	v1 := e.valueText(e.deconstify(v.V1))
	v2 := e.valueText(e.deconstify(v.V2))
	return fmt.Sprintf("select %s, %s, %s", cond, v1, v2)
}
