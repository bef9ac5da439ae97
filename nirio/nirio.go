// Package nirio is the JSON encoding of the nir package's closed data
// model (spec §6's external-interfaces expansion): a wire format for
// the NIR defn stream a producer hands this backend, used by this
// repository's own test fixtures and by cmd/nirc when reading from
// stdin or a file. It mirrors the nir package's Go types one-to-one,
// each sum type discriminated by a "kind" field, in the style of the
// example corpus's own hand-written JSON wire types (see
// internal/lsp/types.go's markupContent.Kind).
//
// A production deployment that already holds a []nir.Defn in memory
// never touches this package: pipeline.Run takes that slice directly.
package nirio

import (
	"encoding/json"
	"fmt"

	"nirgen/nir"
)

// Decode parses a JSON-encoded defn stream: a top-level array of wire
// Defn objects.
func Decode(data []byte) ([]nir.Defn, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding defn stream: %w", err)
	}

	defns := make([]nir.Defn, len(raw))
	for i, r := range raw {
		d, err := decodeDefn(r)
		if err != nil {
			return nil, fmt.Errorf("decoding defn %d: %w", i, err)
		}
		defns[i] = d
	}

	return defns, nil
}

// Encode renders defns as the same JSON defn-stream format Decode
// reads, for round-tripping in tests and for any producer that prefers
// to emit this package's wire format directly.
func Encode(defns []nir.Defn) ([]byte, error) {
	raw := make([]json.RawMessage, len(defns))
	for i, d := range defns {
		r, err := encodeDefn(d)
		if err != nil {
			return nil, fmt.Errorf("encoding defn %d: %w", i, err)
		}
		raw[i] = r
	}
	return json.Marshal(raw)
}
