package nirio

import (
	"encoding/json"
	"fmt"

	"nirgen/nir"
)

// wireValue is the tagged-union wire shape for nir.Value, mirroring
// every variant in nir/value.go.
type wireValue struct {
	Kind string `json:"kind"`

	B      bool        `json:"b,omitempty"`      // bool
	Type   *wireType   `json:"type,omitempty"`   // zero, undef, local, global
	I8     int8        `json:"i8,omitempty"`     // byte
	I16    int16       `json:"i16,omitempty"`    // short
	I32    int32       `json:"i32,omitempty"`    // int
	I64    int64       `json:"i64,omitempty"`    // long
	F32    float32     `json:"f32,omitempty"`    // float
	F64    float64     `json:"f64,omitempty"`    // double
	S      string      `json:"s,omitempty"`      // chars
	Struct *wireType   `json:"struct,omitempty"` // struct val: field struct-type
	Fields []wireValue `json:"fields,omitempty"` // struct val
	Elem   *wireType   `json:"elem,omitempty"`   // array val
	Vals   []wireValue `json:"vals,omitempty"`   // array val
	Local  int         `json:"local,omitempty"`  // local
	Global wireName    `json:"global,omitempty"` // global
	Inner  *wireValue  `json:"inner,omitempty"`  // const
}

func encodeValue(v nir.Value) wireValue {
	switch x := v.(type) {
	case nir.BoolValue:
		return wireValue{Kind: "bool", B: x.V}
	case nir.NullValue:
		return wireValue{Kind: "null"}
	case nir.ZeroValue:
		ty := encodeType(x.T)
		return wireValue{Kind: "zero", Type: &ty}
	case nir.UndefValue:
		ty := encodeType(x.T)
		return wireValue{Kind: "undef", Type: &ty}
	case nir.ByteValue:
		return wireValue{Kind: "byte", I8: x.V}
	case nir.ShortValue:
		return wireValue{Kind: "short", I16: x.V}
	case nir.IntValue:
		return wireValue{Kind: "int", I32: x.V}
	case nir.LongValue:
		return wireValue{Kind: "long", I64: x.V}
	case nir.FloatValue:
		return wireValue{Kind: "float", F32: x.V}
	case nir.DoubleValue:
		return wireValue{Kind: "double", F64: x.V}
	case nir.CharsValue:
		return wireValue{Kind: "chars", S: x.S}
	case nir.StructVal:
		st := encodeType(x.T)
		fields := make([]wireValue, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = encodeValue(f)
		}
		return wireValue{Kind: "struct", Struct: &st, Fields: fields}
	case nir.ArrayVal:
		elem := encodeType(x.Elem)
		vals := make([]wireValue, len(x.Vals))
		for i, val := range x.Vals {
			vals[i] = encodeValue(val)
		}
		return wireValue{Kind: "array", Elem: &elem, Vals: vals}
	case nir.LocalValue:
		ty := encodeType(x.T)
		return wireValue{Kind: "local", Local: int(x.Name), Type: &ty}
	case nir.GlobalValue:
		ty := encodeType(x.T)
		return wireValue{Kind: "global", Global: encodeName(x.Name), Type: &ty}
	case nir.ConstValue:
		inner := encodeValue(x.Inner)
		return wireValue{Kind: "const", Inner: &inner}
	default:
		panic(fmt.Sprintf("nirio: value %T has no wire encoding", v))
	}
}

func decodeValue(w wireValue) (nir.Value, error) {
	switch w.Kind {
	case "bool":
		return nir.BoolValue{V: w.B}, nil
	case "null":
		return nir.NullValue{}, nil
	case "zero":
		ty, err := requireType(w.Type, "zero")
		if err != nil {
			return nil, err
		}
		return nir.ZeroValue{T: ty}, nil
	case "undef":
		ty, err := requireType(w.Type, "undef")
		if err != nil {
			return nil, err
		}
		return nir.UndefValue{T: ty}, nil
	case "byte":
		return nir.ByteValue{V: w.I8}, nil
	case "short":
		return nir.ShortValue{V: w.I16}, nil
	case "int":
		return nir.IntValue{V: w.I32}, nil
	case "long":
		return nir.LongValue{V: w.I64}, nil
	case "float":
		return nir.FloatValue{V: w.F32}, nil
	case "double":
		return nir.DoubleValue{V: w.F64}, nil
	case "chars":
		return nir.CharsValue{S: w.S}, nil
	case "struct":
		ty, err := requireType(w.Struct, "struct")
		if err != nil {
			return nil, err
		}
		st, ok := ty.(nir.StructType)
		if !ok {
			return nil, fmt.Errorf("struct value's struct type decoded as %T", ty)
		}
		fields := make([]nir.Value, len(w.Fields))
		for i, f := range w.Fields {
			val, err := decodeValue(f)
			if err != nil {
				return nil, err
			}
			fields[i] = val
		}
		return nir.StructVal{T: st, Fields: fields}, nil
	case "array":
		elem, err := requireType(w.Elem, "array")
		if err != nil {
			return nil, err
		}
		vals := make([]nir.Value, len(w.Vals))
		for i, v := range w.Vals {
			val, err := decodeValue(v)
			if err != nil {
				return nil, err
			}
			vals[i] = val
		}
		return nir.ArrayVal{Elem: elem, Vals: vals}, nil
	case "local":
		ty, err := requireType(w.Type, "local")
		if err != nil {
			return nil, err
		}
		return nir.LocalValue{Name: nir.LocalName(w.Local), T: ty}, nil
	case "global":
		ty, err := requireType(w.Type, "global")
		if err != nil {
			return nil, err
		}
		return nir.GlobalValue{Name: decodeName(w.Global), T: ty}, nil
	case "const":
		if w.Inner == nil {
			return nil, fmt.Errorf("const value missing inner")
		}
		inner, err := decodeValue(*w.Inner)
		if err != nil {
			return nil, err
		}
		return nir.ConstValue{Inner: inner}, nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", w.Kind)
	}
}

func requireType(t *wireType, ctx string) (nir.Type, error) {
	if t == nil {
		return nil, fmt.Errorf("%s value missing type", ctx)
	}
	return decodeType(*t)
}

func marshalValue(v nir.Value) (json.RawMessage, error) {
	return json.Marshal(encodeValue(v))
}

func unmarshalValue(r json.RawMessage) (nir.Value, error) {
	var w wireValue
	if err := json.Unmarshal(r, &w); err != nil {
		return nil, err
	}
	return decodeValue(w)
}
