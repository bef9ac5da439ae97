package codegen

import (
	"nirgen/nir"
	"nirgen/report"
)

// lookup implements §4.6's dependency tracking: it returns the type of a
// referenced global, recording it in e.deps unless the name is already
// locally defined in this shard or belongs to the reserved "__const"
// bundle (whose types are served from constTy instead, since interned
// constants are never cross-shard dependencies). A referenced global
// absent from the environment is the §7 "environment lookup miss" error
// kind.
func (e *Emitter) lookup(name nir.Name) nir.Type {
	key := name.Normalize()

	if name.TopName().Normalize() == "__const" {
		ty, ok := e.constTy[key]
		if !ok {
			report.ICE("environment lookup miss: interned constant %s has no recorded type", key)
		}
		return ty
	}

	if e.generated[key] {
		return defnType(e.index[key])
	}

	if d, ok := e.index[key]; ok {
		e.deps[key] = defnType(d)
		return defnType(d)
	}

	report.ICE("environment lookup miss: global %s is not present in the defn environment", key)
	return nil
}

// defnType returns the NIR type a defn's name denotes when referenced as
// a value: a struct denotes its own layout type, a function denotes its
// signature, and a global variable/constant denotes its declared type.
func defnType(d nir.Defn) nir.Type {
	switch v := d.(type) {
	case nir.StructDefn:
		return nir.StructType{Name: v.Name_.String(), Fields: v.Fields}
	case nir.VarDefn:
		return v.Ty
	case nir.ConstDefn:
		return v.Ty
	case nir.DeclareDefn:
		return v.Sig
	case nir.DefineDefn:
		return v.Sig
	default:
		report.ICE("unsupported construct: cannot determine the type denoted by defn of type %T", d)
		return nil
	}
}

// externDecl re-emits d stripped of its local implementation, per
// §4.6's prelude-pass rule for a dependency that belongs to another
// shard: a Var/Const loses its initializer and gains External; a
// Declare keeps its signature and gains External; a Define loses its
// instruction stream and is printed as a Declare. Structs are returned
// unchanged — their layout is needed verbatim in every shard that
// mentions them.
func externDecl(d nir.Defn) nir.Defn {
	switch v := d.(type) {
	case nir.StructDefn:
		return v
	case nir.VarDefn:
		v.RHS = nil
		v.Attrs_.External = true
		return v
	case nir.ConstDefn:
		v.RHS = nil
		v.Attrs_.External = true
		return v
	case nir.DeclareDefn:
		v.Attrs_.External = true
		return v
	case nir.DefineDefn:
		attrs := v.Attrs_
		attrs.External = true
		return nir.DeclareDefn{Name_: v.Name_, Sig: v.Sig, Attrs_: attrs}
	default:
		report.ICE("unsupported construct: cannot form an extern declaration for defn of type %T", d)
		return nil
	}
}
