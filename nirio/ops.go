package nirio

import (
	"encoding/json"
	"fmt"

	"nirgen/nir"
)

var binMnemonics = map[nir.BinOpKind]string{
	nir.Iadd: "iadd", nir.Isub: "isub", nir.Imul: "imul",
	nir.Sdiv: "sdiv", nir.Udiv: "udiv", nir.Srem: "srem", nir.Urem: "urem",
	nir.Fadd: "fadd", nir.Fsub: "fsub", nir.Fmul: "fmul", nir.Fdiv: "fdiv", nir.Frem: "frem",
	nir.Shl: "shl", nir.Lshr: "lshr", nir.Ashr: "ashr",
	nir.And: "and", nir.Or: "or", nir.Xor: "xor",
}

var binKinds = reverseStr(binMnemonics)

var compMnemonics = map[nir.CompOpKind]string{
	nir.CmpIEq: "ieq", nir.CmpINe: "ine",
	nir.CmpSlt: "slt", nir.CmpSle: "sle", nir.CmpSgt: "sgt", nir.CmpSge: "sge",
	nir.CmpUlt: "ult", nir.CmpUle: "ule", nir.CmpUgt: "ugt", nir.CmpUge: "uge",
	nir.CmpFoeq: "foeq", nir.CmpFone: "fone",
	nir.CmpFolt: "folt", nir.CmpFole: "fole", nir.CmpFogt: "fogt", nir.CmpFoge: "foge",
	nir.CmpFueq: "fueq", nir.CmpFune: "fune",
}

var compKinds = reverseStr(compMnemonics)

var convMnemonics = map[nir.ConvKind]string{
	nir.ConvTrunc: "trunc", nir.ConvZext: "zext", nir.ConvSext: "sext",
	nir.ConvFptrunc: "fptrunc", nir.ConvFpext: "fpext",
	nir.ConvFptoui: "fptoui", nir.ConvFptosi: "fptosi",
	nir.ConvUitofp: "uitofp", nir.ConvSitofp: "sitofp",
	nir.ConvBitcast: "bitcast", nir.ConvPtrtoint: "ptrtoint", nir.ConvInttoptr: "inttoptr",
}

var convKinds = reverseStr(convMnemonics)

func reverseStr[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// wireOp is the tagged-union wire shape for nir.Op, mirroring every
// variant in nir/op.go.
type wireOp struct {
	Kind string `json:"kind"`

	Callee  *wireValue `json:"callee,omitempty"`  // call
	Args    []wireValue `json:"args,omitempty"`   // call
	Sig     *wireType  `json:"sig,omitempty"`     // call
	Ptr     *wireValue `json:"ptr,omitempty"`     // load, store, elem
	Ty      *wireType  `json:"ty,omitempty"`      // load, store, elem, stackalloc, bin, comp
	Volatile bool      `json:"volatile,omitempty"` // load, store
	Val     *wireValue `json:"val,omitempty"`     // store, insert
	Indexes []json.RawMessage `json:"indexes,omitempty"` // elem (values) / extract,insert (ints)
	Result  *wireType  `json:"result,omitempty"`  // elem, extract
	N       *wireValue `json:"n,omitempty"`       // stackalloc
	Agg     *wireValue `json:"agg,omitempty"`     // extract, insert
	OpKind  string     `json:"opKind,omitempty"`  // bin, comp, conv
	L       *wireValue `json:"l,omitempty"`       // bin, comp
	R       *wireValue `json:"r,omitempty"`       // bin, comp
	To      *wireType  `json:"to,omitempty"`      // conv
	V       *wireValue `json:"v,omitempty"`       // conv, copy
	Cond    *wireValue `json:"cond,omitempty"`    // select
	V1      *wireValue `json:"v1,omitempty"`      // select
	V2      *wireValue `json:"v2,omitempty"`      // select
}

func encodeOp(op nir.Op) (wireOp, error) {
	switch v := op.(type) {
	case nir.CallOp:
		callee := encodeValue(v.Callee)
		sig := encodeType(v.Sig)
		args := make([]wireValue, len(v.Args))
		for i, a := range v.Args {
			args[i] = encodeValue(a)
		}
		return wireOp{Kind: "call", Callee: &callee, Args: args, Sig: &sig}, nil

	case nir.LoadOp:
		ptr := encodeValue(v.Ptr)
		ty := encodeType(v.Ty)
		return wireOp{Kind: "load", Ptr: &ptr, Ty: &ty, Volatile: v.Volatile}, nil

	case nir.StoreOp:
		ptr := encodeValue(v.Ptr)
		val := encodeValue(v.Val)
		ty := encodeType(v.Ty)
		return wireOp{Kind: "store", Ptr: &ptr, Val: &val, Ty: &ty, Volatile: v.Volatile}, nil

	case nir.ElemOp:
		ptr := encodeValue(v.Ptr)
		ty := encodeType(v.Ty)
		result := encodeType(v.Result)
		idx, err := encodeValueList(v.Indexes)
		if err != nil {
			return wireOp{}, err
		}
		return wireOp{Kind: "elem", Ptr: &ptr, Ty: &ty, Result: &result, Indexes: idx}, nil

	case nir.StackallocOp:
		ty := encodeType(v.Ty)
		w := wireOp{Kind: "stackalloc", Ty: &ty}
		if v.N != nil {
			n := encodeValue(v.N)
			w.N = &n
		}
		return w, nil

	case nir.ExtractOp:
		agg := encodeValue(v.Agg)
		result := encodeType(v.Result)
		idx, err := encodeIntList(v.Indexes)
		if err != nil {
			return wireOp{}, err
		}
		return wireOp{Kind: "extract", Agg: &agg, Result: &result, Indexes: idx}, nil

	case nir.InsertOp:
		agg := encodeValue(v.Agg)
		val := encodeValue(v.Val)
		idx, err := encodeIntList(v.Indexes)
		if err != nil {
			return wireOp{}, err
		}
		return wireOp{Kind: "insert", Agg: &agg, Val: &val, Indexes: idx}, nil

	case nir.BinOp:
		ty := encodeType(v.Ty)
		l, r := encodeValue(v.L), encodeValue(v.R)
		return wireOp{Kind: "bin", OpKind: binMnemonics[v.Kind], Ty: &ty, L: &l, R: &r}, nil

	case nir.CompOp:
		ty := encodeType(v.Ty)
		l, r := encodeValue(v.L), encodeValue(v.R)
		return wireOp{Kind: "comp", OpKind: compMnemonics[v.Kind], Ty: &ty, L: &l, R: &r}, nil

	case nir.ConvOp:
		to := encodeType(v.To)
		val := encodeValue(v.V)
		return wireOp{Kind: "conv", OpKind: convMnemonics[v.Kind], To: &to, V: &val}, nil

	case nir.SelectOp:
		cond, v1, v2 := encodeValue(v.Cond), encodeValue(v.V1), encodeValue(v.V2)
		return wireOp{Kind: "select", Cond: &cond, V1: &v1, V2: &v2}, nil

	case nir.CopyOp:
		val := encodeValue(v.V)
		return wireOp{Kind: "copy", V: &val}, nil

	default:
		return wireOp{}, fmt.Errorf("nirio: op %T has no wire encoding", op)
	}
}

func decodeOp(w wireOp) (nir.Op, error) {
	switch w.Kind {
	case "call":
		callee, err := requireValue(w.Callee, "call.callee")
		if err != nil {
			return nil, err
		}
		sig, err := requireSig(w.Sig, "call.sig")
		if err != nil {
			return nil, err
		}
		args, err := decodeValueSlice(w.Args)
		if err != nil {
			return nil, err
		}
		return nir.CallOp{Callee: callee, Args: args, Sig: sig}, nil

	case "load":
		ptr, err := requireValue(w.Ptr, "load.ptr")
		if err != nil {
			return nil, err
		}
		ty, err := requireType(w.Ty, "load.ty")
		if err != nil {
			return nil, err
		}
		return nir.LoadOp{Ptr: ptr, Ty: ty, Volatile: w.Volatile}, nil

	case "store":
		ptr, err := requireValue(w.Ptr, "store.ptr")
		if err != nil {
			return nil, err
		}
		val, err := requireValue(w.Val, "store.val")
		if err != nil {
			return nil, err
		}
		ty, err := requireType(w.Ty, "store.ty")
		if err != nil {
			return nil, err
		}
		return nir.StoreOp{Ptr: ptr, Val: val, Ty: ty, Volatile: w.Volatile}, nil

	case "elem":
		ptr, err := requireValue(w.Ptr, "elem.ptr")
		if err != nil {
			return nil, err
		}
		ty, err := requireType(w.Ty, "elem.ty")
		if err != nil {
			return nil, err
		}
		result, err := requireType(w.Result, "elem.result")
		if err != nil {
			return nil, err
		}
		idx, err := decodeValueRawList(w.Indexes)
		if err != nil {
			return nil, err
		}
		return nir.ElemOp{Ptr: ptr, Ty: ty, Result: result, Indexes: idx}, nil

	case "stackalloc":
		ty, err := requireType(w.Ty, "stackalloc.ty")
		if err != nil {
			return nil, err
		}
		var n nir.Value
		if w.N != nil {
			n, err = decodeValue(*w.N)
			if err != nil {
				return nil, err
			}
		}
		return nir.StackallocOp{Ty: ty, N: n}, nil

	case "extract":
		agg, err := requireValue(w.Agg, "extract.agg")
		if err != nil {
			return nil, err
		}
		result, err := requireType(w.Result, "extract.result")
		if err != nil {
			return nil, err
		}
		idx, err := decodeIntRawList(w.Indexes)
		if err != nil {
			return nil, err
		}
		return nir.ExtractOp{Agg: agg, Result: result, Indexes: idx}, nil

	case "insert":
		agg, err := requireValue(w.Agg, "insert.agg")
		if err != nil {
			return nil, err
		}
		val, err := requireValue(w.Val, "insert.val")
		if err != nil {
			return nil, err
		}
		idx, err := decodeIntRawList(w.Indexes)
		if err != nil {
			return nil, err
		}
		return nir.InsertOp{Agg: agg, Val: val, Indexes: idx}, nil

	case "bin":
		kind, ok := binKinds[w.OpKind]
		if !ok {
			return nil, fmt.Errorf("unknown bin opKind %q", w.OpKind)
		}
		ty, err := requireType(w.Ty, "bin.ty")
		if err != nil {
			return nil, err
		}
		l, err := requireValue(w.L, "bin.l")
		if err != nil {
			return nil, err
		}
		r, err := requireValue(w.R, "bin.r")
		if err != nil {
			return nil, err
		}
		return nir.BinOp{Kind: kind, Ty: ty, L: l, R: r}, nil

	case "comp":
		kind, ok := compKinds[w.OpKind]
		if !ok {
			return nil, fmt.Errorf("unknown comp opKind %q", w.OpKind)
		}
		ty, err := requireType(w.Ty, "comp.ty")
		if err != nil {
			return nil, err
		}
		l, err := requireValue(w.L, "comp.l")
		if err != nil {
			return nil, err
		}
		r, err := requireValue(w.R, "comp.r")
		if err != nil {
			return nil, err
		}
		return nir.CompOp{Kind: kind, Ty: ty, L: l, R: r}, nil

	case "conv":
		kind, ok := convKinds[w.OpKind]
		if !ok {
			return nil, fmt.Errorf("unknown conv opKind %q", w.OpKind)
		}
		to, err := requireType(w.To, "conv.to")
		if err != nil {
			return nil, err
		}
		val, err := requireValue(w.V, "conv.v")
		if err != nil {
			return nil, err
		}
		return nir.ConvOp{Kind: kind, To: to, V: val}, nil

	case "select":
		cond, err := requireValue(w.Cond, "select.cond")
		if err != nil {
			return nil, err
		}
		v1, err := requireValue(w.V1, "select.v1")
		if err != nil {
			return nil, err
		}
		v2, err := requireValue(w.V2, "select.v2")
		if err != nil {
			return nil, err
		}
		return nir.SelectOp{Cond: cond, V1: v1, V2: v2}, nil

	case "copy":
		val, err := requireValue(w.V, "copy.v")
		if err != nil {
			return nil, err
		}
		return nir.CopyOp{V: val}, nil

	default:
		return nil, fmt.Errorf("unknown op kind %q", w.Kind)
	}
}

func requireValue(v *wireValue, ctx string) (nir.Value, error) {
	if v == nil {
		return nil, fmt.Errorf("%s missing", ctx)
	}
	return decodeValue(*v)
}

func requireSig(t *wireType, ctx string) (nir.FuncType, error) {
	if t == nil {
		return nir.FuncType{}, fmt.Errorf("%s missing", ctx)
	}
	ty, err := decodeType(*t)
	if err != nil {
		return nir.FuncType{}, err
	}
	ft, ok := ty.(nir.FuncType)
	if !ok {
		return nir.FuncType{}, fmt.Errorf("%s decoded as %T, not a func type", ctx, ty)
	}
	return ft, nil
}

func decodeValueSlice(ws []wireValue) ([]nir.Value, error) {
	if len(ws) == 0 {
		return nil, nil
	}
	out := make([]nir.Value, len(ws))
	for i, w := range ws {
		v, err := decodeValue(w)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func encodeValueList(vs []nir.Value) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(vs))
	for i, v := range vs {
		r, err := marshalValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func decodeValueRawList(raw []json.RawMessage) ([]nir.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]nir.Value, len(raw))
	for i, r := range raw {
		v, err := unmarshalValue(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func encodeIntList(idx []int) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(idx))
	for i, n := range idx {
		r, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func decodeIntRawList(raw []json.RawMessage) ([]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]int, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
