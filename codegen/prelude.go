package codegen

import "strings"

// runtimeDecls are the fixed runtime-support declarations every shard's
// prelude carries verbatim: the EH type-id intrinsic, the C++
// personality routine, cxa-begin/end-catch, and the exception-wrapper's
// typeinfo symbol (§4.2, §6's "fixed runtime symbols").
var runtimeDecls = []string{
	"declare i32 @llvm.eh.typeid.for(i8*)\n",
	"declare i32 @__gxx_personality_v0(...)\n",
	"declare i8* @__cxa_begin_catch(i8*)\n",
	"declare void @__cxa_end_catch()\n",
	"@" + wrapperTypeInfo + " = external constant " + wrapperTypeInfoType + "\n",
}

// emitPrelude implements §4.2's prelude production: target triple (if
// configured), fixed runtime declarations, interned constants sorted by
// emitted name, then extern declarations for every dependency not
// locally generated in this shard.
func (e *Emitter) emitPrelude() string {
	var b strings.Builder

	if e.target != nil && e.target.Triple != "" {
		b.WriteString(`target triple = "` + e.target.Triple + "\"\n")
	}

	for _, decl := range runtimeDecls {
		b.WriteString(decl)
	}

	for _, name := range e.sortedConstNames() {
		val := e.constVal[name.Normalize()]
		b.WriteString(quotedGlobal(name) + " = private unnamed_addr constant " + e.valueText(val) + "\n")
	}

	for _, key := range e.sortedDepNames() {
		b.WriteString(e.defnText(externDecl(e.index[key])))
	}

	return b.String()
}
