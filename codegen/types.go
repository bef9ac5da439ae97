package codegen

import (
	lt "github.com/llir/llvm/ir/types"

	"nirgen/nir"
	"nirgen/report"
)

// llType converts a NIR type to its LLVM type, delegating to
// github.com/llir/llvm/ir/types for everything but the recursive
// structure itself — the same library the reference compiler's
// src/generate package imports for exactly this purpose.
func llType(t nir.Type) lt.Type {
	switch v := t.(type) {
	case nir.VoidType:
		return lt.Void
	case nir.PtrType:
		return lt.NewPointer(lt.I8)
	case nir.BoolType:
		return lt.I1
	case nir.IntType:
		return llIntType(v.Width)
	case nir.Float32Type:
		return lt.Float
	case nir.Float64Type:
		return lt.Double
	case nir.ArrayType:
		return lt.NewArray(uint64(v.Len), llType(v.Elem))
	case nir.StructType:
		fields := make([]lt.Type, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = llType(f)
		}
		st := lt.NewStruct(fields...)
		if v.Name != "" {
			st.TypeName = v.Name
		}
		return st
	case nir.FuncType:
		return llFuncType(v)
	case nir.VarargType:
		report.ICE("unsupported construct: vararg type has no standalone LLVM type (it only belongs in an argument list)")
		return nil
	default:
		report.ICE("unsupported construct: NIR type %#v was not eliminated by upstream lowering", t)
		return nil
	}
}

func llIntType(width int) *lt.IntType {
	switch width {
	case 8:
		return lt.I8
	case 16:
		return lt.I16
	case 32:
		return lt.I32
	case 64:
		return lt.I64
	default:
		return lt.NewInt(uint64(width))
	}
}

// llFuncType converts a NIR function signature, splitting a trailing
// VarargType argument out into the LLVM function type's Variadic flag.
func llFuncType(sig nir.FuncType) *lt.FuncType {
	var params []lt.Type
	variadic := false

	for _, a := range sig.Args {
		if _, ok := a.(nir.VarargType); ok {
			variadic = true
			continue
		}
		params = append(params, llType(a))
	}

	ft := lt.NewFunc(llType(sig.Ret), params...)
	ft.Variadic = variadic
	return ft
}

// typeText renders a NIR type's printed LLVM form.
func typeText(t nir.Type) string {
	return llType(t).String()
}
