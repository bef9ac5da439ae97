package nir

// Value is the closed algebra of NIR values: every right-hand-side operand
// that can be printed or passed as an instruction argument.
type Value interface {
	Type() Type
	valueNode()
}

// BoolValue is the literal `true`/`false` value.
type BoolValue struct{ V bool }

// NullValue is the null pointer constant.
type NullValue struct{}

// ZeroValue is the all-zero value of some type.
type ZeroValue struct{ T Type }

// UndefValue is LLVM's `undef` of some type.
type UndefValue struct{ T Type }

// ByteValue is an i8 literal.
type ByteValue struct{ V int8 }

// ShortValue is an i16 literal.
type ShortValue struct{ V int16 }

// IntValue is an i32 literal.
type IntValue struct{ V int32 }

// LongValue is an i64 literal.
type LongValue struct{ V int64 }

// FloatValue is a single-precision float literal.
type FloatValue struct{ V float32 }

// DoubleValue is a double-precision float literal.
type DoubleValue struct{ V float64 }

// CharsValue is a string literal, represented at the NIR level as a byte
// array; escape handling happens only when it is printed (see codegen).
type CharsValue struct{ S string }

// StructVal is a structural aggregate value.
type StructVal struct {
	T      StructType
	Fields []Value
}

// ArrayVal is a structural array value.
type ArrayVal struct {
	Elem Type
	Vals []Value
}

// LocalValue is a reference to a local (SSA) value within the current
// function body.
type LocalValue struct {
	Name LocalName
	T    Type
}

// GlobalValue is a reference to a global by name; its type is always a
// pointer at the NIR boundary (the referenced global's own type is looked
// up separately when a typed access is needed).
type GlobalValue struct {
	Name Name
	T    Type
}

// ConstValue wraps another value, meaning "lift this value to a private
// global and use its address in place of the value" (see codegen's
// deconstify transform).
type ConstValue struct {
	Inner Value
}

func (BoolValue) valueNode()   {}
func (NullValue) valueNode()   {}
func (ZeroValue) valueNode()   {}
func (UndefValue) valueNode()  {}
func (ByteValue) valueNode()   {}
func (ShortValue) valueNode()  {}
func (IntValue) valueNode()    {}
func (LongValue) valueNode()   {}
func (FloatValue) valueNode()  {}
func (DoubleValue) valueNode() {}
func (CharsValue) valueNode()  {}
func (StructVal) valueNode()   {}
func (ArrayVal) valueNode()    {}
func (LocalValue) valueNode()  {}
func (GlobalValue) valueNode() {}
func (ConstValue) valueNode()  {}

func (BoolValue) Type() Type   { return BoolType{} }
func (NullValue) Type() Type   { return PtrType{} }
func (z ZeroValue) Type() Type { return z.T }
func (u UndefValue) Type() Type {
	return u.T
}
func (ByteValue) Type() Type   { return I8 }
func (ShortValue) Type() Type  { return I16 }
func (IntValue) Type() Type    { return I32 }
func (LongValue) Type() Type   { return I64 }
func (FloatValue) Type() Type  { return Float32Type{} }
func (DoubleValue) Type() Type { return Float64Type{} }
func (c CharsValue) Type() Type {
	return ArrayType{Elem: I8, Len: len(c.S)}
}
func (s StructVal) Type() Type { return s.T }
func (a ArrayVal) Type() Type  { return ArrayType{Elem: a.Elem, Len: len(a.Vals)} }
func (l LocalValue) Type() Type {
	return l.T
}
func (g GlobalValue) Type() Type { return PtrType{} }
func (c ConstValue) Type() Type  { return PtrType{} }
