package codegen

import (
	"strings"
	"testing"

	"nirgen/nir"
)

// normalizeWS collapses all runs of whitespace to single spaces, so
// scenario assertions can compare against a fragment without caring
// about this emitter's exact indentation or line breaks.
func normalizeWS(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func mustContain(t *testing.T, got, fragment string) {
	t.Helper()
	if !strings.Contains(normalizeWS(got), normalizeWS(fragment)) {
		t.Errorf("output does not contain expected fragment:\n  want substring: %s\n  got: %s", fragment, got)
	}
}

func mustNotContain(t *testing.T, got, fragment string) {
	t.Helper()
	if strings.Contains(normalizeWS(got), normalizeWS(fragment)) {
		t.Errorf("output unexpectedly contains fragment:\n  fragment: %s\n  got: %s", fragment, got)
	}
}

func indexOf(defns ...nir.Defn) map[string]nir.Defn {
	index := make(map[string]nir.Defn, len(defns))
	for _, d := range defns {
		index[d.DefnName().Normalize()] = d
	}
	return index
}

// Scenario 1: an empty function.
func TestScenarioEmptyFunction(t *testing.T) {
	f := nir.DefineDefn{
		Name_:  nir.Top("f"),
		Sig:    nir.FuncType{Ret: nir.VoidType{}},
		Insts:  []nir.Inst{nir.LabelInst{Name: 0}, nir.RetInst{}},
		Attrs_: nir.Attrs{Public: true, MayInline: true},
	}

	e := NewEmitter(0, indexOf(f), nil)
	out := e.Gen([]nir.Defn{f})

	mustContain(t, out, `define void @"f"()`)
	mustContain(t, out, "_0.0: ret void")
}

// Scenario 2: the identity function on i32.
func TestScenarioIdentityI32(t *testing.T) {
	f := nir.DefineDefn{
		Name_: nir.Top("id"),
		Sig:   nir.FuncType{Args: []nir.Type{nir.I32}, Ret: nir.I32},
		Insts: []nir.Inst{
			nir.LabelInst{Name: 0, Params: []nir.Param{{Name: 1, Type: nir.I32}}},
			nir.RetInst{Value: nir.LocalValue{Name: 1, T: nir.I32}},
		},
		Attrs_: nir.Attrs{Public: true, MayInline: true},
	}

	e := NewEmitter(0, indexOf(f), nil)
	out := e.Gen([]nir.Defn{f})

	mustContain(t, out, `define i32 @"id"(i32 %_1)`)
	mustContain(t, out, "_0.0: ret i32 %_1")
}

// Scenario 3: a direct call whose callee is a known global with a
// matching recorded signature emits a plain call, no bitcast.
func TestScenarioDirectCallNoUnwind(t *testing.T) {
	sig := nir.FuncType{Args: []nir.Type{nir.I32}, Ret: nir.I32}

	g := nir.DeclareDefn{Name_: nir.Top("g"), Sig: sig, Attrs_: nir.Attrs{Public: true, MayInline: true}}

	f := nir.DefineDefn{
		Name_: nir.Top("f"),
		Sig:   sig,
		Insts: []nir.Inst{
			nir.LabelInst{Name: 0, Params: []nir.Param{{Name: 1, Type: nir.I32}}},
			nir.LetInst{
				Name: 2,
				Op: nir.CallOp{
					Callee: nir.GlobalValue{Name: nir.Top("g"), T: nir.PtrType{}},
					Args:   []nir.Value{nir.LocalValue{Name: 1, T: nir.I32}},
					Sig:    sig,
				},
			},
			nir.RetInst{Value: nir.LocalValue{Name: 2, T: nir.I32}},
		},
		Attrs_: nir.Attrs{Public: true, MayInline: true},
	}

	e := NewEmitter(0, indexOf(f, g), nil)
	out := e.Gen([]nir.Defn{f})

	mustContain(t, out, `%_2 = call i32 @"g"(i32 %_1)`)
	mustNotContain(t, out, "= bitcast")
}

// Scenario 4: an indirect call bitcasts the i8* callee to the required
// function-pointer type before calling through it.
func TestScenarioIndirectCall(t *testing.T) {
	sig := nir.FuncType{Ret: nir.VoidType{}}

	f := nir.DefineDefn{
		Name_: nir.Top("f"),
		Sig:   nir.FuncType{Args: []nir.Type{nir.PtrType{}}, Ret: nir.VoidType{}},
		Insts: []nir.Inst{
			nir.LabelInst{Name: 0, Params: []nir.Param{{Name: 1, Type: nir.PtrType{}}}},
			nir.LetInst{
				Name: 2,
				Op: nir.CallOp{
					Callee: nir.LocalValue{Name: 1, T: nir.PtrType{}},
					Sig:    sig,
				},
			},
			nir.RetInst{},
		},
		Attrs_: nir.Attrs{Public: true, MayInline: true},
	}

	e := NewEmitter(0, indexOf(f), nil)
	out := e.Gen([]nir.Defn{f})

	mustContain(t, out, "bitcast i8* %_1 to void ()*")
	mustContain(t, out, "call void %bc1()")
}

// Scenario 5: two structurally identical Const references in two
// different functions collapse to exactly one interned global.
func TestScenarioConstantInterning(t *testing.T) {
	arr := nir.ArrayVal{Elem: nir.I8, Vals: []nir.Value{
		nir.ByteValue{V: 1}, nir.ByteValue{V: 2}, nir.ByteValue{V: 3},
	}}

	mkFunc := func(name string) nir.DefineDefn {
		return nir.DefineDefn{
			Name_: nir.Top(name),
			Sig:   nir.FuncType{Ret: nir.PtrType{}},
			Insts: []nir.Inst{
				nir.LabelInst{Name: 0},
				nir.RetInst{Value: nir.ConstValue{Inner: arr}},
			},
			Attrs_: nir.Attrs{Public: true, MayInline: true},
		}
	}

	f1, f2 := mkFunc("f1"), mkFunc("f2")

	e := NewEmitter(0, indexOf(f1, f2), nil)
	out := e.Gen([]nir.Defn{f1, f2})

	mustContain(t, out, `@"__const::0" = private unnamed_addr constant [3 x i8] [ i8 1, i8 2, i8 3 ]`)
	mustNotContain(t, out, `"__const::1"`)
}

// Scenario 6: a handler block emits the bit-exact landing-pad sequence.
func TestScenarioExceptionHandlerPrologue(t *testing.T) {
	sig := nir.FuncType{Ret: nir.VoidType{}}
	callee := nir.GlobalValue{Name: nir.Top("mayThrow"), T: nir.PtrType{}}
	decl := nir.DeclareDefn{Name_: nir.Top("mayThrow"), Sig: sig, Attrs_: nir.Attrs{Public: true, MayInline: true}}

	f := nir.DefineDefn{
		Name_: nir.Top("f"),
		Sig:   sig,
		Insts: []nir.Inst{
			nir.LabelInst{Name: 0},
			nir.LetInst{
				Name:   1,
				Op:     nir.CallOp{Callee: callee, Sig: sig},
				Unwind: nir.Unwind(2),
			},
			nir.RetInst{},
			nir.LabelInst{Name: 2, Params: []nir.Param{{Name: 3, Type: nir.PtrType{}}}},
			nir.UnreachableInst{},
		},
		Attrs_: nir.Attrs{Public: true, MayInline: true},
	}

	e := NewEmitter(0, indexOf(f, decl), nil)
	out := e.Gen([]nir.Defn{f})

	order := []string{
		"landingpad { i8*, i32 } catch i8* bitcast (i8* @_ZTI15RuntimeException to i8*)",
		"extractvalue { i8*, i32 } %rec, 0",
		"extractvalue { i8*, i32 } %rec, 1",
		"call i32 @llvm.eh.typeid.for(i8* bitcast (i8* @_ZTI15RuntimeException to i8*))",
		"icmp eq i32 %r1, %id",
		"br i1 %cmp, label %succ, label %fail",
		"fail:",
		"resume { i8*, i32 } %rec",
		"succ:",
		"call i8* @__cxa_begin_catch(i8* %r0)",
		"bitcast i8* %w0 to i8**",
		"getelementptr i8*, i8** %w1, i32 1",
		"%_3 = load i8*, i8** %w2",
		"call void @__cxa_end_catch()",
	}

	norm := normalizeWS(out)
	pos := 0
	for _, frag := range order {
		idx := strings.Index(norm[pos:], normalizeWS(frag))
		if idx < 0 {
			t.Fatalf("expected fragment %q not found after position %d in:\n%s", frag, pos, out)
		}
		pos += idx + len(normalizeWS(frag))
	}
}
