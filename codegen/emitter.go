// Package codegen is the backend's per-shard Emitter: it turns a sorted
// sequence of fully-lowered NIR definitions into LLVM IR text, tracking
// constant interning, copy elision, and cross-shard dependencies exactly
// as specified in spec.md §3.2 and §4.
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"nirgen/config"
	"nirgen/nir"
	"nirgen/report"
)

// Emitter owns all the per-shard state named in §3.2. It must never be
// shared between shards: construct a fresh Emitter per shard.
type Emitter struct {
	shardID int
	target  *config.Target

	// index is the full defn environment handed to the emitter: every
	// global definition reachable anywhere in the program, keyed by
	// normalized name, regardless of which shard it was assigned to.
	// lookup consults this map; a miss is the §7 "environment lookup
	// miss" error kind.
	index map[string]nir.Defn

	constMap   map[string]nir.Name  // structural literal key -> interned name
	constTy    map[string]nir.Type  // interned name (normalized) -> its type
	constVal   map[string]nir.Value // interned name (normalized) -> its deconstified value
	constOrder []nir.Name           // insertion order, resorted before printing
	constNext  int

	copies map[nir.LocalName]nir.Value

	deps      map[string]nir.Type // normalized dep name -> its type
	generated map[string]bool

	currentBlockName  nir.LocalName
	currentBlockSplit int
	tempNext          int

	body strings.Builder
}

// newTemp returns a fresh synthetic SSA temporary, used for the
// bitcast LLVM requires before an indirect call/invoke. These never
// collide with producer-assigned LocalNames since they carry a
// distinct "%bc<n>" naming scheme instead of "%_<n>".
func (e *Emitter) newTemp() string {
	e.tempNext++
	return fmt.Sprintf("%%bc%d", e.tempNext)
}

// NewEmitter constructs a fresh Emitter for one shard. index is the
// complete defn environment for the whole program (every shard shares
// the same index; only the body each Emitter is asked to Gen differs).
func NewEmitter(shardID int, index map[string]nir.Defn, target *config.Target) *Emitter {
	return &Emitter{
		shardID:   shardID,
		target:    target,
		index:     index,
		constMap:  make(map[string]nir.Name),
		constTy:   make(map[string]nir.Type),
		constVal:  make(map[string]nir.Value),
		copies:    make(map[nir.LocalName]nir.Value),
		deps:      make(map[string]nir.Type),
		generated: make(map[string]bool),
	}
}

// Gen emits defns (already partitioned and sorted for this shard) and
// returns the complete, self-contained module text: prelude followed by
// body, per §4.2.
func (e *Emitter) Gen(defns []nir.Defn) string {
	e.emitBody(defns)
	prelude := e.emitPrelude()
	return prelude + e.body.String()
}

// emitBody emits defns in the fixed kind order required by §4.2: all
// Struct, then all Const, then all Var, then all Declare, then all
// Define. Within each kind the defns arrive already sorted by the
// partitioner; a defn already present in e.generated is skipped.
func (e *Emitter) emitBody(defns []nir.Defn) {
	var structs, consts, vars, declares, defines []nir.Defn

	for _, d := range defns {
		switch d.(type) {
		case nir.StructDefn:
			structs = append(structs, d)
		case nir.ConstDefn:
			consts = append(consts, d)
		case nir.VarDefn:
			vars = append(vars, d)
		case nir.DeclareDefn:
			declares = append(declares, d)
		case nir.DefineDefn:
			defines = append(defines, d)
		default:
			report.ICE("unsupported construct: defn of type %T is not one of Struct/Var/Const/Declare/Define", d)
		}
	}

	for _, group := range [][]nir.Defn{structs, consts, vars, declares, defines} {
		for _, d := range group {
			key := d.DefnName().Normalize()
			if e.generated[key] {
				continue
			}
			e.generated[key] = true
			e.emitDefn(d)
		}
	}
}

// emitDefn dispatches a single defn to its per-kind emission function,
// appending the result to the shard's body buffer.
func (e *Emitter) emitDefn(d nir.Defn) {
	e.body.WriteString(e.defnText(d))
}

// sortedConstNames returns the interned constant names in the order
// required by §4.2's prelude: sorted by their emitted (printed) name.
func (e *Emitter) sortedConstNames() []nir.Name {
	names := make([]nir.Name, len(e.constOrder))
	copy(names, e.constOrder)
	sort.Slice(names, func(i, j int) bool {
		return names[i].String() < names[j].String()
	})
	return names
}

// sortedDepNames returns the names in deps that still need an extern
// declaration: every dep not already locally generated in this shard,
// sorted for deterministic output.
func (e *Emitter) sortedDepNames() []string {
	var names []string
	for k := range e.deps {
		if !e.generated[k] {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

func quotedGlobal(name nir.Name) string {
	return "@" + name.Quoted()
}

func localIdent(n nir.LocalName) string {
	return fmt.Sprintf("%%_%d", int(n))
}

func blockLabel(name nir.LocalName, split int) string {
	return fmt.Sprintf("_%d.%d", int(name), split)
}
