package nir

// Attrs are the shared visibility/linkage attributes carried by every
// definition.
type Attrs struct {
	// Public definitions are emitted with default (externally visible)
	// linkage; non-public definitions are emitted `hidden`.
	Public bool

	// External marks a Var/Const/Declare/Define as a forward declaration
	// only: it has no local implementation in this shard and must be
	// printed as an extern form. Defns straight from the producer are
	// never External; External is set only by the prelude pass when an
	// emitted dependency belongs to another shard (see codegen's extern
	// re-emission of deps).
	External bool

	// MayInline, when false, causes Declare/Define to be emitted with the
	// `noinline` function attribute.
	MayInline bool
}

// Defn is the closed algebra of top-level NIR definitions.
type Defn interface {
	DefnName() Name
	DefnAttrs() Attrs
	defnNode()
}

// StructDefn declares the layout of a named struct type.
type StructDefn struct {
	Name_   Name
	Fields  []Type
	Attrs_  Attrs
}

// VarDefn is a mutable global variable. RHS is nil for a header
// declaration (no initializer, declared type only).
type VarDefn struct {
	Name_  Name
	Ty     Type
	RHS    Value
	Attrs_ Attrs
}

// ConstDefn is an immutable global constant. RHS is nil for a header
// declaration.
type ConstDefn struct {
	Name_  Name
	Ty     Type
	RHS    Value
	Attrs_ Attrs
}

// DeclareDefn is a function forward declaration with no body.
type DeclareDefn struct {
	Name_  Name
	Sig    FuncType
	Attrs_ Attrs
}

// DefineDefn is a full function definition: a signature plus the
// instruction stream of its body. The entry block's Label parameters
// supply the printed parameter list (see codegen's per-kind emission).
type DefineDefn struct {
	Name_  Name
	Sig    FuncType
	Insts  []Inst
	Attrs_ Attrs
}

func (d StructDefn) defnNode()  {}
func (d VarDefn) defnNode()     {}
func (d ConstDefn) defnNode()   {}
func (d DeclareDefn) defnNode() {}
func (d DefineDefn) defnNode()  {}

func (d StructDefn) DefnName() Name  { return d.Name_ }
func (d VarDefn) DefnName() Name     { return d.Name_ }
func (d ConstDefn) DefnName() Name   { return d.Name_ }
func (d DeclareDefn) DefnName() Name { return d.Name_ }
func (d DefineDefn) DefnName() Name  { return d.Name_ }

func (d StructDefn) DefnAttrs() Attrs  { return d.Attrs_ }
func (d VarDefn) DefnAttrs() Attrs     { return d.Attrs_ }
func (d ConstDefn) DefnAttrs() Attrs   { return d.Attrs_ }
func (d DeclareDefn) DefnAttrs() Attrs { return d.Attrs_ }
func (d DefineDefn) DefnAttrs() Attrs  { return d.Attrs_ }
