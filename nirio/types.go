package nirio

import (
	"encoding/json"
	"fmt"

	"nirgen/nir"
)

// wireType is the tagged-union wire shape for nir.Type: Kind selects
// which of the remaining fields are meaningful, mirroring every
// variant in nir/types.go.
type wireType struct {
	Kind string `json:"kind"`

	Width  int        `json:"width,omitempty"`  // int
	Elem   *wireType  `json:"elem,omitempty"`    // array
	Len    int        `json:"len,omitempty"`     // array
	Name   string     `json:"name,omitempty"`    // struct
	Fields []wireType `json:"fields,omitempty"`  // struct
	Args   []wireType `json:"args,omitempty"`    // func
	Ret    *wireType  `json:"ret,omitempty"`     // func
}

func encodeType(t nir.Type) wireType {
	switch v := t.(type) {
	case nir.VoidType:
		return wireType{Kind: "void"}
	case nir.VarargType:
		return wireType{Kind: "vararg"}
	case nir.PtrType:
		return wireType{Kind: "ptr"}
	case nir.BoolType:
		return wireType{Kind: "bool"}
	case nir.IntType:
		return wireType{Kind: "int", Width: v.Width}
	case nir.Float32Type:
		return wireType{Kind: "float32"}
	case nir.Float64Type:
		return wireType{Kind: "float64"}
	case nir.ArrayType:
		elem := encodeType(v.Elem)
		return wireType{Kind: "array", Elem: &elem, Len: v.Len}
	case nir.StructType:
		fields := make([]wireType, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = encodeType(f)
		}
		return wireType{Kind: "struct", Name: v.Name, Fields: fields}
	case nir.FuncType:
		args := make([]wireType, len(v.Args))
		for i, a := range v.Args {
			args[i] = encodeType(a)
		}
		ret := encodeType(v.Ret)
		return wireType{Kind: "func", Args: args, Ret: &ret}
	default:
		panic(fmt.Sprintf("nirio: type %T has no wire encoding", t))
	}
}

func decodeType(w wireType) (nir.Type, error) {
	switch w.Kind {
	case "void":
		return nir.VoidType{}, nil
	case "vararg":
		return nir.VarargType{}, nil
	case "ptr":
		return nir.PtrType{}, nil
	case "bool":
		return nir.BoolType{}, nil
	case "int":
		return nir.IntType{Width: w.Width}, nil
	case "float32":
		return nir.Float32Type{}, nil
	case "float64":
		return nir.Float64Type{}, nil
	case "array":
		if w.Elem == nil {
			return nil, fmt.Errorf("array type missing elem")
		}
		elem, err := decodeType(*w.Elem)
		if err != nil {
			return nil, err
		}
		return nir.ArrayType{Elem: elem, Len: w.Len}, nil
	case "struct":
		fields := make([]nir.Type, len(w.Fields))
		for i, f := range w.Fields {
			ty, err := decodeType(f)
			if err != nil {
				return nil, err
			}
			fields[i] = ty
		}
		return nir.StructType{Name: w.Name, Fields: fields}, nil
	case "func":
		var args []nir.Type
		if len(w.Args) > 0 {
			args = make([]nir.Type, len(w.Args))
		}
		for i, a := range w.Args {
			ty, err := decodeType(a)
			if err != nil {
				return nil, err
			}
			args[i] = ty
		}
		if w.Ret == nil {
			return nil, fmt.Errorf("func type missing ret")
		}
		ret, err := decodeType(*w.Ret)
		if err != nil {
			return nil, err
		}
		return nir.FuncType{Args: args, Ret: ret}, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", w.Kind)
	}
}

func marshalType(t nir.Type) (json.RawMessage, error) {
	return json.Marshal(encodeType(t))
}

func unmarshalType(r json.RawMessage) (nir.Type, error) {
	var w wireType
	if err := json.Unmarshal(r, &w); err != nil {
		return nil, err
	}
	return decodeType(w)
}
