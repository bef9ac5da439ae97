package nirio

import "nirgen/nir"

type wireName struct {
	Parts []string `json:"parts"`
	Tag   string   `json:"tag,omitempty"`
}

func encodeName(n nir.Name) wireName {
	return wireName{Parts: n.Parts, Tag: n.Tag}
}

func decodeName(w wireName) nir.Name {
	return nir.Name{Parts: w.Parts, Tag: w.Tag}
}

type wireParam struct {
	Name int      `json:"name"`
	Type wireType `json:"type"`
}

func encodeParam(p nir.Param) wireParam {
	return wireParam{Name: int(p.Name), Type: encodeType(p.Type)}
}

func decodeParam(w wireParam) (nir.Param, error) {
	ty, err := decodeType(w.Type)
	if err != nil {
		return nir.Param{}, err
	}
	return nir.Param{Name: nir.LocalName(w.Name), Type: ty}, nil
}

type wireAttrs struct {
	Public    bool `json:"public,omitempty"`
	External  bool `json:"external,omitempty"`
	MayInline bool `json:"mayInline,omitempty"`
}

func encodeAttrs(a nir.Attrs) wireAttrs {
	return wireAttrs{Public: a.Public, External: a.External, MayInline: a.MayInline}
}

func decodeAttrs(w wireAttrs) nir.Attrs {
	return nir.Attrs{Public: w.Public, External: w.External, MayInline: w.MayInline}
}
