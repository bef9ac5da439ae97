package nirio

import (
	"encoding/json"
	"reflect"
	"testing"

	"nirgen/nir"
)

func roundTripType(t *testing.T, ty nir.Type) nir.Type {
	t.Helper()
	raw, err := marshalType(ty)
	if err != nil {
		t.Fatalf("marshalType(%#v): %v", ty, err)
	}
	got, err := unmarshalType(raw)
	if err != nil {
		t.Fatalf("unmarshalType(%s): %v", raw, err)
	}
	return got
}

func TestRoundTripTypes(t *testing.T) {
	cases := []nir.Type{
		nir.VoidType{},
		nir.VarargType{},
		nir.PtrType{},
		nir.BoolType{},
		nir.I8,
		nir.I32,
		nir.IntType{Width: 128},
		nir.Float32Type{},
		nir.Float64Type{},
		nir.ArrayType{Elem: nir.I8, Len: 3},
		nir.StructType{Name: "Point", Fields: []nir.Type{nir.I32, nir.I32}},
		nir.FuncType{Args: []nir.Type{nir.I32, nir.PtrType{}}, Ret: nir.BoolType{}},
		// a struct nested inside a func return, to exercise recursion
		nir.FuncType{Args: []nir.Type{nir.VarargType{}}, Ret: nir.StructType{Fields: []nir.Type{nir.I64}}},
	}

	for _, want := range cases {
		got := roundTripType(t, want)
		if !reflect.DeepEqual(want, got) {
			t.Errorf("type round trip mismatch: want %#v, got %#v", want, got)
		}
	}
}

func roundTripValue(t *testing.T, v nir.Value) nir.Value {
	t.Helper()
	raw, err := marshalValue(v)
	if err != nil {
		t.Fatalf("marshalValue(%#v): %v", v, err)
	}
	got, err := unmarshalValue(raw)
	if err != nil {
		t.Fatalf("unmarshalValue(%s): %v", raw, err)
	}
	return got
}

func TestRoundTripValues(t *testing.T) {
	cases := []nir.Value{
		nir.BoolValue{V: true},
		nir.NullValue{},
		nir.ZeroValue{T: nir.I32},
		nir.UndefValue{T: nir.PtrType{}},
		nir.ByteValue{V: -7},
		nir.ShortValue{V: 300},
		nir.IntValue{V: 70000},
		nir.LongValue{V: 1 << 40},
		nir.FloatValue{V: 3.5},
		nir.DoubleValue{V: 2.71828},
		nir.CharsValue{S: "hello\x00"},
		nir.StructVal{
			T:      nir.StructType{Name: "Pair", Fields: []nir.Type{nir.I32, nir.BoolType{}}},
			Fields: []nir.Value{nir.IntValue{V: 1}, nir.BoolValue{V: false}},
		},
		nir.ArrayVal{Elem: nir.I8, Vals: []nir.Value{nir.ByteValue{V: 1}, nir.ByteValue{V: 2}}},
		nir.LocalValue{Name: 9, T: nir.I32},
		nir.GlobalValue{Name: nir.Top("main"), T: nir.PtrType{}},
		nir.ConstValue{Inner: nir.ArrayVal{Elem: nir.I8, Vals: []nir.Value{nir.ByteValue{V: 9}}}},
		// nested member name, to exercise wireName.Parts beyond length 1
		nir.GlobalValue{Name: nir.Member(nir.Top("Outer"), "inner").WithTag("#1"), T: nir.PtrType{}},
	}

	for _, want := range cases {
		got := roundTripValue(t, want)
		if !reflect.DeepEqual(want, got) {
			t.Errorf("value round trip mismatch: want %#v, got %#v", want, got)
		}
	}
}

// opWireRoundTrip exercises the full wire path including JSON
// marshal/unmarshal of the intermediate wireOp, not just the in-memory
// encode/decode functions.
func opWireRoundTrip(t *testing.T, op nir.Op) nir.Op {
	t.Helper()
	w, err := encodeOp(op)
	if err != nil {
		t.Fatalf("encodeOp(%#v): %v", op, err)
	}
	raw, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal wireOp: %v", err)
	}
	var w2 wireOp
	if err := json.Unmarshal(raw, &w2); err != nil {
		t.Fatalf("unmarshal wireOp: %v", err)
	}
	got, err := decodeOp(w2)
	if err != nil {
		t.Fatalf("decodeOp: %v", err)
	}
	return got
}

func TestRoundTripOps(t *testing.T) {
	sig := nir.FuncType{Args: []nir.Type{nir.I32}, Ret: nir.I32}

	cases := []nir.Op{
		nir.CallOp{
			Callee: nir.GlobalValue{Name: nir.Top("g"), T: nir.PtrType{}},
			Args:   []nir.Value{nir.IntValue{V: 1}},
			Sig:    sig,
		},
		nir.LoadOp{Ptr: nir.LocalValue{Name: 1, T: nir.PtrType{}}, Ty: nir.I32, Volatile: true},
		nir.StoreOp{Ptr: nir.LocalValue{Name: 1, T: nir.PtrType{}}, Val: nir.IntValue{V: 5}, Ty: nir.I32},
		nir.ElemOp{
			Ptr:     nir.LocalValue{Name: 1, T: nir.PtrType{}},
			Ty:      nir.StructType{Fields: []nir.Type{nir.I32, nir.I32}},
			Indexes: []nir.Value{nir.IntValue{V: 0}, nir.IntValue{V: 1}},
			Result:  nir.I32,
		},
		nir.StackallocOp{Ty: nir.I64, N: nir.IntValue{V: 4}},
		nir.StackallocOp{Ty: nir.I64},
		nir.ExtractOp{Agg: nir.LocalValue{Name: 1, T: nir.StructType{Fields: []nir.Type{nir.I32}}}, Indexes: []int{0}, Result: nir.I32},
		nir.InsertOp{Agg: nir.LocalValue{Name: 1, T: nir.StructType{Fields: []nir.Type{nir.I32}}}, Val: nir.IntValue{V: 9}, Indexes: []int{0}},
		nir.BinOp{Kind: nir.Iadd, Ty: nir.I32, L: nir.IntValue{V: 1}, R: nir.IntValue{V: 2}},
		nir.BinOp{Kind: nir.Fdiv, Ty: nir.Float64Type{}, L: nir.DoubleValue{V: 1}, R: nir.DoubleValue{V: 2}},
		nir.CompOp{Kind: nir.CmpSlt, Ty: nir.I32, L: nir.IntValue{V: 1}, R: nir.IntValue{V: 2}},
		nir.CompOp{Kind: nir.CmpFogt, Ty: nir.Float32Type{}, L: nir.FloatValue{V: 1}, R: nir.FloatValue{V: 2}},
		nir.ConvOp{Kind: nir.ConvSitofp, To: nir.Float64Type{}, V: nir.IntValue{V: 3}},
		nir.SelectOp{Cond: nir.BoolValue{V: true}, V1: nir.IntValue{V: 1}, V2: nir.IntValue{V: 2}},
		nir.CopyOp{V: nir.LocalValue{Name: 2, T: nir.I32}},
	}

	for _, want := range cases {
		got := opWireRoundTrip(t, want)
		if !reflect.DeepEqual(want, got) {
			t.Errorf("op round trip mismatch: want %#v, got %#v", want, got)
		}
	}
}

func instWireRoundTrip(t *testing.T, inst nir.Inst) nir.Inst {
	t.Helper()
	raw, err := marshalInst(inst)
	if err != nil {
		t.Fatalf("marshalInst(%#v): %v", inst, err)
	}
	got, err := unmarshalInst(raw)
	if err != nil {
		t.Fatalf("unmarshalInst(%s): %v", raw, err)
	}
	return got
}

func TestRoundTripInsts(t *testing.T) {
	sig := nir.FuncType{Ret: nir.VoidType{}}

	cases := []nir.Inst{
		nir.LabelInst{Name: 0, Params: []nir.Param{{Name: 1, Type: nir.I32}}},
		nir.LetInst{Name: 2, Op: nir.BinOp{Kind: nir.Iadd, Ty: nir.I32, L: nir.IntValue{V: 1}, R: nir.IntValue{V: 2}}},
		nir.LetInst{
			Name:   3,
			Op:     nir.CallOp{Callee: nir.GlobalValue{Name: nir.Top("g"), T: nir.PtrType{}}, Sig: sig},
			Unwind: nir.Unwind(9),
		},
		nir.RetInst{Value: nir.IntValue{V: 1}},
		nir.RetInst{},
		nir.JumpInst{Next: nir.Label(4, nir.IntValue{V: 1})},
		nir.IfInst{Cond: nir.BoolValue{V: true}, Then: nir.Label(5), Else: nir.Label(6)},
		nir.SwitchInst{
			Scrutinee: nir.IntValue{V: 2},
			Default:   nir.Label(7),
			Cases:     []nir.Next{nir.Case(nir.IntValue{V: 1}, 8), nir.Case(nir.IntValue{V: 2}, 9)},
		},
		nir.UnreachableInst{},
		nir.NoneInst{},
	}

	for _, want := range cases {
		got := instWireRoundTrip(t, want)
		if !reflect.DeepEqual(want, got) {
			t.Errorf("inst round trip mismatch: want %#v, got %#v", want, got)
		}
	}
}

// TestRoundTripProgram exercises the public Decode/Encode API over a
// realistic defn stream touching every Defn kind at once.
func TestRoundTripProgram(t *testing.T) {
	sig := nir.FuncType{Args: []nir.Type{nir.I32}, Ret: nir.I32}

	defns := []nir.Defn{
		nir.StructDefn{
			Name_:  nir.Top("Pair"),
			Fields: []nir.Type{nir.I32, nir.I32},
			Attrs_: nir.Attrs{Public: true},
		},
		nir.ConstDefn{
			Name_:  nir.Top("greeting"),
			Ty:     nir.ArrayType{Elem: nir.I8, Len: 5},
			RHS:    nir.CharsValue{S: "hi"},
			Attrs_: nir.Attrs{Public: true},
		},
		nir.VarDefn{
			Name_:  nir.Top("counter"),
			Ty:     nir.I32,
			RHS:    nir.IntValue{V: 0},
			Attrs_: nir.Attrs{Public: true, MayInline: true},
		},
		nir.DeclareDefn{
			Name_:  nir.Top("helper"),
			Sig:    sig,
			Attrs_: nir.Attrs{Public: true, MayInline: true},
		},
		nir.DefineDefn{
			Name_: nir.Top("f"),
			Sig:   sig,
			Insts: []nir.Inst{
				nir.LabelInst{Name: 0, Params: []nir.Param{{Name: 1, Type: nir.I32}}},
				nir.LetInst{
					Name: 2,
					Op: nir.CallOp{
						Callee: nir.GlobalValue{Name: nir.Top("helper"), T: nir.PtrType{}},
						Args:   []nir.Value{nir.LocalValue{Name: 1, T: nir.I32}},
						Sig:    sig,
					},
				},
				nir.RetInst{Value: nir.LocalValue{Name: 2, T: nir.I32}},
			},
			Attrs_: nir.Attrs{Public: true, MayInline: true},
		},
	}

	encoded, err := Encode(defns)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !reflect.DeepEqual(defns, decoded) {
		t.Errorf("program round trip mismatch:\nwant %#v\ngot  %#v", defns, decoded)
	}

	// Re-encoding the decoded result must reproduce the same bytes:
	// the wire format is stable under a second round trip.
	again, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if string(again) != string(encoded) {
		t.Errorf("wire format unstable across a second round trip:\nfirst:  %s\nsecond: %s", encoded, again)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	if _, err := Decode([]byte(`[{"kind":"bogus"}]`)); err == nil {
		t.Error("expected an error decoding a defn with an unknown kind, got nil")
	}
}
