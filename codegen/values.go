package codegen

import (
	"strconv"
	"strings"

	lc "github.com/llir/llvm/ir/constant"
	lt "github.com/llir/llvm/ir/types"

	"nirgen/nir"
	"nirgen/report"
)

// deconstify implements §4.5's recursive transform, replacing every
// Const-wrapped value with the address of its interned global. It is
// idempotent and hereditary: the result of deconstifying a value
// contains no further ConstValue nodes.
func (e *Emitter) deconstify(v nir.Value) nir.Value {
	switch x := v.(type) {
	case nir.LocalValue:
		if inner, ok := e.copies[x.Name]; ok {
			return e.deconstify(inner)
		}
		return x
	case nir.StructVal:
		fields := make([]nir.Value, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = e.deconstify(f)
		}
		return nir.StructVal{T: x.T, Fields: fields}
	case nir.ArrayVal:
		vals := make([]nir.Value, len(x.Vals))
		for i, f := range x.Vals {
			vals[i] = e.deconstify(f)
		}
		return nir.ArrayVal{Elem: x.Elem, Vals: vals}
	case nir.ConstValue:
		inner := e.deconstify(x.Inner)
		name := e.constFor(inner)
		return nir.GlobalValue{Name: name, T: nir.PtrType{}}
	default:
		return v
	}
}

// constFor interns a (already-deconstified) value structurally: two
// values with the same type and printed literal form collapse to a
// single private global, per §4.5 and §8's const-interning-idempotence
// property.
func (e *Emitter) constFor(v nir.Value) nir.Name {
	key := typeText(v.Type()) + " " + e.literalText(v)

	if name, ok := e.constMap[key]; ok {
		return name
	}

	name := nir.Member(nir.Top("__const"), strconv.Itoa(e.constNext))
	e.constNext++

	e.constMap[key] = name
	e.constTy[name.Normalize()] = v.Type()
	e.constVal[name.Normalize()] = v
	e.constOrder = append(e.constOrder, name)

	return name
}

// valueText renders v's printed LLVM operand form: "<ty> <val>". v must
// already be deconstified.
func (e *Emitter) valueText(v nir.Value) string {
	return typeText(v.Type()) + " " + e.literalText(v)
}

// literalText renders only the value portion (no leading type) of v's
// printed form. v must already be deconstified.
func (e *Emitter) literalText(v nir.Value) string {
	switch x := v.(type) {
	case nir.BoolValue:
		return lc.NewBool(x.V).Ident()
	case nir.NullValue:
		return "null"
	case nir.ZeroValue:
		return "zeroinitializer"
	case nir.UndefValue:
		return "undef"
	case nir.ByteValue:
		return lc.NewInt(llIntType(8), int64(x.V)).Ident()
	case nir.ShortValue:
		return lc.NewInt(llIntType(16), int64(x.V)).Ident()
	case nir.IntValue:
		return lc.NewInt(llIntType(32), int64(x.V)).Ident()
	case nir.LongValue:
		return lc.NewInt(llIntType(64), x.V).Ident()
	case nir.FloatValue:
		return lc.NewFloat(lt.Float, float64(x.V)).Ident()
	case nir.DoubleValue:
		return lc.NewFloat(lt.Double, x.V).Ident()
	case nir.CharsValue:
		return lc.NewCharArrayFromString(x.S).Ident()
	case nir.StructVal:
		return e.structLiteral(x)
	case nir.ArrayVal:
		return e.arrayLiteral(x)
	case nir.LocalValue:
		return localIdent(x.Name)
	case nir.GlobalValue:
		return e.globalLiteral(x)
	case nir.ConstValue:
		report.ICE("unsupported construct: a ConstValue reached literalText without being deconstified first")
		return ""
	default:
		report.ICE("unsupported construct: value %#v is outside the closed Value algebra", v)
		return ""
	}
}

// structLiteral and arrayLiteral are hand-assembled rather than routed
// through llir/llvm's constant.NewStruct/NewArray: their elements may be
// Global references to NIR definitions we never build as real llir
// objects, so the aggregate literal is composed directly from each
// already-deconstified element's own valueText.
func (e *Emitter) structLiteral(s nir.StructVal) string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = e.valueText(f)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (e *Emitter) arrayLiteral(a nir.ArrayVal) string {
	parts := make([]string, len(a.Vals))
	for i, v := range a.Vals {
		parts[i] = e.valueText(v)
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

// globalLiteral renders a Global reference per §4.5: a bitcast of the
// referenced global's own (looked-up) type to i8*. Direct callees that
// bypass the bitcast (§4.4's "known global, matching signature" case)
// are handled specially in the call-emission code, not here.
func (e *Emitter) globalLiteral(g nir.GlobalValue) string {
	ty := e.lookup(g.Name)
	return "bitcast (" + typeText(ty) + "* " + quotedGlobal(g.Name) + " to i8*)"
}
