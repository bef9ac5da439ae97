package nirio

import (
	"encoding/json"
	"fmt"

	"nirgen/nir"
)

// wireDefn is the tagged-union wire shape for nir.Defn, mirroring every
// variant in nir/defn.go.
type wireDefn struct {
	Kind   string     `json:"kind"`
	Name   wireName   `json:"name"`
	Attrs  wireAttrs  `json:"attrs"`
	Fields []wireType `json:"fields,omitempty"` // struct
	Ty     *wireType  `json:"ty,omitempty"`     // var, const
	RHS    *wireValue `json:"rhs,omitempty"`    // var, const
	Sig    *wireType  `json:"sig,omitempty"`    // declare, define
	Insts  []wireInst `json:"insts,omitempty"`  // define
}

func encodeDefn(d nir.Defn) (json.RawMessage, error) {
	w, err := toWireDefn(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func toWireDefn(d nir.Defn) (wireDefn, error) {
	switch v := d.(type) {
	case nir.StructDefn:
		fields := make([]wireType, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = encodeType(f)
		}
		return wireDefn{Kind: "struct", Name: encodeName(v.Name_), Attrs: encodeAttrs(v.Attrs_), Fields: fields}, nil

	case nir.VarDefn:
		ty := encodeType(v.Ty)
		w := wireDefn{Kind: "var", Name: encodeName(v.Name_), Attrs: encodeAttrs(v.Attrs_), Ty: &ty}
		if v.RHS != nil {
			rhs := encodeValue(v.RHS)
			w.RHS = &rhs
		}
		return w, nil

	case nir.ConstDefn:
		ty := encodeType(v.Ty)
		w := wireDefn{Kind: "const", Name: encodeName(v.Name_), Attrs: encodeAttrs(v.Attrs_), Ty: &ty}
		if v.RHS != nil {
			rhs := encodeValue(v.RHS)
			w.RHS = &rhs
		}
		return w, nil

	case nir.DeclareDefn:
		sig := encodeType(v.Sig)
		return wireDefn{Kind: "declare", Name: encodeName(v.Name_), Attrs: encodeAttrs(v.Attrs_), Sig: &sig}, nil

	case nir.DefineDefn:
		sig := encodeType(v.Sig)
		insts := make([]wireInst, len(v.Insts))
		for i, inst := range v.Insts {
			wi, err := encodeInst(inst)
			if err != nil {
				return wireDefn{}, err
			}
			insts[i] = wi
		}
		return wireDefn{Kind: "define", Name: encodeName(v.Name_), Attrs: encodeAttrs(v.Attrs_), Sig: &sig, Insts: insts}, nil

	default:
		return wireDefn{}, fmt.Errorf("nirio: defn %T has no wire encoding", d)
	}
}

func decodeDefn(raw json.RawMessage) (nir.Defn, error) {
	var w wireDefn
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	return fromWireDefn(w)
}

func fromWireDefn(w wireDefn) (nir.Defn, error) {
	name := decodeName(w.Name)
	attrs := decodeAttrs(w.Attrs)

	switch w.Kind {
	case "struct":
		fields := make([]nir.Type, len(w.Fields))
		for i, f := range w.Fields {
			ty, err := decodeType(f)
			if err != nil {
				return nil, err
			}
			fields[i] = ty
		}
		return nir.StructDefn{Name_: name, Fields: fields, Attrs_: attrs}, nil

	case "var", "const":
		ty, err := requireType(w.Ty, w.Kind+".ty")
		if err != nil {
			return nil, err
		}
		var rhs nir.Value
		if w.RHS != nil {
			rhs, err = decodeValue(*w.RHS)
			if err != nil {
				return nil, err
			}
		}
		if w.Kind == "var" {
			return nir.VarDefn{Name_: name, Ty: ty, RHS: rhs, Attrs_: attrs}, nil
		}
		return nir.ConstDefn{Name_: name, Ty: ty, RHS: rhs, Attrs_: attrs}, nil

	case "declare":
		sig, err := requireSig(w.Sig, "declare.sig")
		if err != nil {
			return nil, err
		}
		return nir.DeclareDefn{Name_: name, Sig: sig, Attrs_: attrs}, nil

	case "define":
		sig, err := requireSig(w.Sig, "define.sig")
		if err != nil {
			return nil, err
		}
		insts := make([]nir.Inst, len(w.Insts))
		for i, wi := range w.Insts {
			inst, err := decodeInst(wi)
			if err != nil {
				return nil, err
			}
			insts[i] = inst
		}
		return nir.DefineDefn{Name_: name, Sig: sig, Insts: insts, Attrs_: attrs}, nil

	default:
		return nil, fmt.Errorf("unknown defn kind %q", w.Kind)
	}
}
