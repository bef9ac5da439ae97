package codegen

import (
	"strings"

	"nirgen/nir"
)

// defnText renders any single defn in its §4.2 per-kind form. Used both
// for the body (writing straight into e.body) and for the prelude's
// extern re-emission of cross-shard dependencies (writing into a
// separate, local builder).
func (e *Emitter) defnText(d nir.Defn) string {
	switch v := d.(type) {
	case nir.StructDefn:
		return e.structText(v)
	case nir.ConstDefn:
		return e.globalText(v.Name_, v.Ty, v.RHS, v.Attrs_, true)
	case nir.VarDefn:
		return e.globalText(v.Name_, v.Ty, v.RHS, v.Attrs_, false)
	case nir.DeclareDefn:
		return e.declareText(v)
	case nir.DefineDefn:
		return e.defineText(v)
	default:
		return ""
	}
}

// structText prints a struct layout definition: §4.2's "Struct" kind.
func (e *Emitter) structText(s nir.StructDefn) string {
	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = typeText(f)
	}
	return "%" + s.Name_.Quoted() + " = type { " + strings.Join(fields, ", ") + " }\n"
}

// globalText prints a Var or Const defn: §4.2's "Var / Const" kind. rhs
// nil means a header declaration — the declared type only, no
// initializer.
func (e *Emitter) globalText(name nir.Name, ty nir.Type, rhs nir.Value, attrs nir.Attrs, isConst bool) string {
	kind := "global"
	if isConst {
		kind = "constant"
	}

	var b strings.Builder
	b.WriteString(quotedGlobal(name))
	b.WriteString(" = ")

	switch {
	case attrs.External || rhs == nil:
		b.WriteString("external ")
	case !attrs.Public:
		b.WriteString("hidden ")
	}

	b.WriteString(kind)
	b.WriteString(" ")
	b.WriteString(typeText(ty))

	if !attrs.External && rhs != nil {
		b.WriteString(" ")
		b.WriteString(e.literalText(e.deconstify(rhs)))
	}

	b.WriteString("\n")
	return b.String()
}

// declareText prints a function forward declaration: §4.2's "Declare"
// kind.
func (e *Emitter) declareText(d nir.DeclareDefn) string {
	var b strings.Builder
	b.WriteString("declare ")
	b.WriteString(typeText(d.Sig.Ret))
	b.WriteString(" ")
	b.WriteString(quotedGlobal(d.Name_))
	b.WriteString("(")
	b.WriteString(argTypesText(d.Sig.Args))
	b.WriteString(")")

	if !d.Attrs_.MayInline {
		b.WriteString(" noinline")
	}

	b.WriteString("\n")
	return b.String()
}

// defineText prints a full function definition: §4.2's "Define" kind.
// The printed parameter list comes from the entry block's label
// parameters so names line up with the body.
func (e *Emitter) defineText(d nir.DefineDefn) string {
	entryParams := entryParamsOf(d.Insts)

	var b strings.Builder
	b.WriteString("define ")
	b.WriteString(typeText(d.Sig.Ret))
	b.WriteString(" ")
	b.WriteString(quotedGlobal(d.Name_))
	b.WriteString("(")
	b.WriteString(paramListText(entryParams))
	b.WriteString(")")

	if !d.Attrs_.MayInline {
		b.WriteString(" noinline")
	}

	b.WriteString(" personality i8* bitcast (i32 (...)* @__gxx_personality_v0 to i8*) {\n")
	b.WriteString(e.emitFunctionBody(d))
	b.WriteString("}\n")

	return b.String()
}

// entryParamsOf returns the first Label instruction's parameter list: by
// construction the producer's instruction stream always opens with the
// entry block's Label.
func entryParamsOf(insts []nir.Inst) []nir.Param {
	for _, inst := range insts {
		if l, ok := inst.(nir.LabelInst); ok {
			return l.Params
		}
	}
	return nil
}

func paramListText(params []nir.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = typeText(p.Type) + " " + localIdent(p.Name)
	}
	return strings.Join(parts, ", ")
}

func argTypesText(args []nir.Type) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if _, ok := a.(nir.VarargType); ok {
			parts = append(parts, "...")
			continue
		}
		parts = append(parts, typeText(a))
	}
	return strings.Join(parts, ", ")
}
