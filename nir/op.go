package nir

// Op is the closed algebra of operations that a Let instruction may bind.
// Any high-level operation (virtual dispatch, allocation, type tests, ...)
// must have been eliminated by upstream lowering before reaching this
// package; encountering one here is a lowering bug.
type Op interface {
	ResultType() Type
	opNode()
}

// CallOp calls Callee (a function-typed global or an indirect value) with
// Args. Sig is the signature recorded for the call site, used to decide
// whether a direct call is possible or whether Callee must first be
// bitcast to the required function-pointer type.
type CallOp struct {
	Callee Value
	Args   []Value
	Sig    FuncType
}

// LoadOp loads a value of type Ty through Ptr (an i8* value bitcast to
// Ty* before the load).
type LoadOp struct {
	Ptr      Value
	Ty       Type
	Volatile bool
}

// StoreOp stores Val through Ptr (an i8* value bitcast to Ty* before the
// store).
type StoreOp struct {
	Ptr      Value
	Val      Value
	Ty       Type
	Volatile bool
}

// ElemOp computes the address of a sub-element of the aggregate of type Ty
// addressed by Ptr, via the given GEP index chain.
type ElemOp struct {
	Ptr     Value
	Ty      Type
	Indexes []Value
	// Result is the element type reached by the last index in the chain.
	Result Type
}

// StackallocOp allocates stack space for a value of type Ty. N is nil for
// a single-element allocation.
type StackallocOp struct {
	Ty Type
	N  Value
}

// ExtractOp extracts a field from an aggregate value.
type ExtractOp struct {
	Agg     Value
	Indexes []int
	Result  Type
}

// InsertOp inserts Val into a field of an aggregate value.
type InsertOp struct {
	Agg     Value
	Val     Value
	Indexes []int
}

// BinOp is a binary arithmetic operation.
type BinOp struct {
	Kind BinOpKind
	Ty   Type
	L, R Value
}

// BinOpKind enumerates the binary arithmetic opcodes.
type BinOpKind int

const (
	Iadd BinOpKind = iota
	Isub
	Imul
	Sdiv
	Udiv
	Srem
	Urem
	Fadd
	Fsub
	Fmul
	Fdiv
	Frem
	Shl
	Lshr
	Ashr
	And
	Or
	Xor
)

// CompOp is a comparison operation, producing a BoolType result.
type CompOp struct {
	Kind CompOpKind
	Ty   Type
	L, R Value
}

// CompOpKind enumerates integer and float comparison predicates.
type CompOpKind int

const (
	CmpIEq CompOpKind = iota
	CmpINe
	CmpSlt
	CmpSle
	CmpSgt
	CmpSge
	CmpUlt
	CmpUle
	CmpUgt
	CmpUge
	CmpFoeq
	CmpFone
	CmpFolt
	CmpFole
	CmpFogt
	CmpFoge
	CmpFueq
	CmpFune
)

// ConvOp converts V to type To via the named conversion.
type ConvOp struct {
	Kind ConvKind
	To   Type
	V    Value
}

// ConvKind enumerates the supported value conversions.
type ConvKind int

const (
	ConvTrunc ConvKind = iota
	ConvZext
	ConvSext
	ConvFptrunc
	ConvFpext
	ConvFptoui
	ConvFptosi
	ConvUitofp
	ConvSitofp
	ConvBitcast
	ConvPtrtoint
	ConvInttoptr
)

// SelectOp chooses between V1 and V2 based on Cond.
type SelectOp struct {
	Cond   Value
	V1, V2 Value
}

// CopyOp is an identity alias: it introduces no IR of its own, and its
// uses are rewritten in place via the emitter's copy-elision table.
type CopyOp struct {
	V Value
}

func (CallOp) opNode()       {}
func (LoadOp) opNode()       {}
func (StoreOp) opNode()      {}
func (ElemOp) opNode()       {}
func (StackallocOp) opNode() {}
func (ExtractOp) opNode()    {}
func (InsertOp) opNode()     {}
func (BinOp) opNode()        {}
func (CompOp) opNode()       {}
func (ConvOp) opNode()       {}
func (SelectOp) opNode()     {}
func (CopyOp) opNode()       {}

func (c CallOp) ResultType() Type  { return c.Sig.Ret }
func (l LoadOp) ResultType() Type  { return l.Ty }
func (StoreOp) ResultType() Type   { return VoidType{} }
func (e ElemOp) ResultType() Type  { return PtrType{} }
func (StackallocOp) ResultType() Type {
	return PtrType{}
}
func (e ExtractOp) ResultType() Type { return e.Result }
func (i InsertOp) ResultType() Type  { return i.Agg.Type() }
func (b BinOp) ResultType() Type     { return b.Ty }
func (CompOp) ResultType() Type      { return BoolType{} }
func (c ConvOp) ResultType() Type    { return c.To }
func (s SelectOp) ResultType() Type  { return s.V1.Type() }
func (c CopyOp) ResultType() Type    { return c.V.Type() }
