package nirio

import (
	"encoding/json"
	"fmt"

	"nirgen/nir"
)

var nextKindNames = map[nir.NextKind]string{
	nir.NextNone: "none", nir.NextLabelKind: "label",
	nir.NextCaseKind: "case", nir.NextUnwindKind: "unwind",
}

var nextKinds = reverseStr(nextKindNames)

type wireNext struct {
	Kind      string      `json:"kind"`
	Target    int         `json:"target,omitempty"`
	Args      []wireValue `json:"args,omitempty"`
	CaseValue *wireValue  `json:"caseValue,omitempty"`
}

func encodeNext(n nir.Next) wireNext {
	w := wireNext{Kind: nextKindNames[n.Kind], Target: int(n.Target)}
	if len(n.Args) > 0 {
		w.Args = make([]wireValue, len(n.Args))
		for i, a := range n.Args {
			w.Args[i] = encodeValue(a)
		}
	}
	if n.Kind == nir.NextCaseKind {
		cv := encodeValue(n.CaseValue)
		w.CaseValue = &cv
	}
	return w
}

func decodeNext(w wireNext) (nir.Next, error) {
	kind, ok := nextKinds[w.Kind]
	if !ok {
		return nir.Next{}, fmt.Errorf("unknown next kind %q", w.Kind)
	}

	args, err := decodeValueSlice(w.Args)
	if err != nil {
		return nir.Next{}, err
	}

	n := nir.Next{Kind: kind, Target: nir.LocalName(w.Target), Args: args}
	if kind == nir.NextCaseKind {
		if w.CaseValue == nil {
			return nir.Next{}, fmt.Errorf("case next missing caseValue")
		}
		cv, err := decodeValue(*w.CaseValue)
		if err != nil {
			return nir.Next{}, err
		}
		n.CaseValue = cv
	}
	return n, nil
}

// wireInst is the tagged-union wire shape for nir.Inst, mirroring every
// variant in nir/inst.go.
type wireInst struct {
	Kind string `json:"kind"`

	Name    int               `json:"name,omitempty"`    // label, let
	Params  []wireParam       `json:"params,omitempty"`  // label
	Op      *wireOp           `json:"op,omitempty"`       // let
	Unwind  *wireNext         `json:"unwind,omitempty"`  // let
	Value   *wireValue        `json:"value,omitempty"`   // ret
	Next    *wireNext         `json:"next,omitempty"`    // jump
	Cond    *wireValue        `json:"cond,omitempty"`    // if
	Then    *wireNext         `json:"then,omitempty"`    // if
	Else    *wireNext         `json:"else,omitempty"`    // if
	Scrut   *wireValue        `json:"scrutinee,omitempty"` // switch
	Default *wireNext         `json:"default,omitempty"` // switch
	Cases   []wireNext        `json:"cases,omitempty"`   // switch
}

func encodeInst(inst nir.Inst) (wireInst, error) {
	switch v := inst.(type) {
	case nir.LabelInst:
		params := make([]wireParam, len(v.Params))
		for i, p := range v.Params {
			params[i] = encodeParam(p)
		}
		return wireInst{Kind: "label", Name: int(v.Name), Params: params}, nil

	case nir.LetInst:
		op, err := encodeOp(v.Op)
		if err != nil {
			return wireInst{}, err
		}
		unwind := encodeNext(v.Unwind)
		return wireInst{Kind: "let", Name: int(v.Name), Op: &op, Unwind: &unwind}, nil

	case nir.RetInst:
		w := wireInst{Kind: "ret"}
		if v.Value != nil {
			val := encodeValue(v.Value)
			w.Value = &val
		}
		return w, nil

	case nir.JumpInst:
		next := encodeNext(v.Next)
		return wireInst{Kind: "jump", Next: &next}, nil

	case nir.IfInst:
		cond := encodeValue(v.Cond)
		then, els := encodeNext(v.Then), encodeNext(v.Else)
		return wireInst{Kind: "if", Cond: &cond, Then: &then, Else: &els}, nil

	case nir.SwitchInst:
		scrut := encodeValue(v.Scrutinee)
		def := encodeNext(v.Default)
		cases := make([]wireNext, len(v.Cases))
		for i, c := range v.Cases {
			cases[i] = encodeNext(c)
		}
		return wireInst{Kind: "switch", Scrut: &scrut, Default: &def, Cases: cases}, nil

	case nir.UnreachableInst:
		return wireInst{Kind: "unreachable"}, nil

	case nir.NoneInst:
		return wireInst{Kind: "noneInst"}, nil

	default:
		return wireInst{}, fmt.Errorf("nirio: instruction %T has no wire encoding", inst)
	}
}

func decodeInst(w wireInst) (nir.Inst, error) {
	switch w.Kind {
	case "label":
		params := make([]nir.Param, len(w.Params))
		for i, p := range w.Params {
			param, err := decodeParam(p)
			if err != nil {
				return nil, err
			}
			params[i] = param
		}
		return nir.LabelInst{Name: nir.LocalName(w.Name), Params: params}, nil

	case "let":
		if w.Op == nil {
			return nil, fmt.Errorf("let instruction missing op")
		}
		op, err := decodeOp(*w.Op)
		if err != nil {
			return nil, err
		}
		unwind := nir.None
		if w.Unwind != nil {
			unwind, err = decodeNext(*w.Unwind)
			if err != nil {
				return nil, err
			}
		}
		return nir.LetInst{Name: nir.LocalName(w.Name), Op: op, Unwind: unwind}, nil

	case "ret":
		var val nir.Value
		if w.Value != nil {
			var err error
			val, err = decodeValue(*w.Value)
			if err != nil {
				return nil, err
			}
		}
		return nir.RetInst{Value: val}, nil

	case "jump":
		if w.Next == nil {
			return nil, fmt.Errorf("jump instruction missing next")
		}
		next, err := decodeNext(*w.Next)
		if err != nil {
			return nil, err
		}
		return nir.JumpInst{Next: next}, nil

	case "if":
		cond, err := requireValue(w.Cond, "if.cond")
		if err != nil {
			return nil, err
		}
		if w.Then == nil || w.Else == nil {
			return nil, fmt.Errorf("if instruction missing then/else")
		}
		then, err := decodeNext(*w.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeNext(*w.Else)
		if err != nil {
			return nil, err
		}
		return nir.IfInst{Cond: cond, Then: then, Else: els}, nil

	case "switch":
		scrut, err := requireValue(w.Scrut, "switch.scrutinee")
		if err != nil {
			return nil, err
		}
		if w.Default == nil {
			return nil, fmt.Errorf("switch instruction missing default")
		}
		def, err := decodeNext(*w.Default)
		if err != nil {
			return nil, err
		}
		cases := make([]nir.Next, len(w.Cases))
		for i, c := range w.Cases {
			cn, err := decodeNext(c)
			if err != nil {
				return nil, err
			}
			cases[i] = cn
		}
		return nir.SwitchInst{Scrutinee: scrut, Default: def, Cases: cases}, nil

	case "unreachable":
		return nir.UnreachableInst{}, nil

	case "noneInst":
		return nir.NoneInst{}, nil

	default:
		return nil, fmt.Errorf("unknown instruction kind %q", w.Kind)
	}
}

func marshalInst(inst nir.Inst) (json.RawMessage, error) {
	w, err := encodeInst(inst)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func unmarshalInst(r json.RawMessage) (nir.Inst, error) {
	var w wireInst
	if err := json.Unmarshal(r, &w); err != nil {
		return nil, err
	}
	return decodeInst(w)
}
