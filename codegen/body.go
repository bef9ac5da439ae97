package codegen

import (
	"fmt"
	"sort"
	"strings"

	"nirgen/nir"
	"nirgen/report"
)

// wrapperTypeInfo is the Itanium typeinfo symbol for the language's
// exception-wrapper class — one of the fixed runtime symbols every
// emitted shard assumes the link step provides (§6).
const wrapperTypeInfo = `_ZTI15RuntimeException`

// wrapperTypeInfoType is the declared LLVM type of the wrapperTypeInfo
// global: an opaque single-byte placeholder, since only its address is
// ever used.
const wrapperTypeInfoType = "i8"

// logicalBlock is one Label-to-terminator run of a function's flat
// instruction stream, before any invoke-driven splitting.
type logicalBlock struct {
	name   nir.LocalName
	params []nir.Param
	body   []nir.Inst
	term   nir.Inst
}

// incomingEdge records one predecessor's contribution to a block's phi
// prologue: the predecessor block's own name, the split index of the
// sub-block its terminator actually lives in, and the phi-incoming
// values for that edge.
type incomingEdge struct {
	fromName  nir.LocalName
	fromSplit int
	args      []nir.Value
}

// emitFunctionBody runs the §4.3 construction algorithm and returns the
// function's block text (without the enclosing `define ... {`/`}`).
// e.copies is populated for the duration of this call and cleared
// before returning, per §3.2's invariant that it never leaks across
// functions.
func (e *Emitter) emitFunctionBody(d nir.DefineDefn) string {
	e.copies = make(map[nir.LocalName]nir.Value)
	defer func() { e.copies = make(map[nir.LocalName]nir.Value) }()

	blocks := splitIntoBlocks(d.Insts)
	if len(blocks) == 0 {
		return ""
	}

	collectCopies(blocks, e.copies)

	finalSplit := computeFinalSplits(blocks)
	handlers := handlerBlocks(blocks)
	incoming := collectIncoming(blocks, finalSplit)

	entryName := blocks[0].name

	var out strings.Builder
	for _, blk := range blocks {
		e.currentBlockName = blk.name
		e.currentBlockSplit = 0

		out.WriteString(blockLabel(blk.name, 0) + ":\n")

		switch {
		case blk.name == entryName:
			// no prologue
		case handlers[blk.name]:
			out.WriteString(e.landingPadPrologue(blk))
		default:
			out.WriteString(e.phiPrologue(blk, incoming[blk.name]))
		}

		for _, inst := range blk.body {
			out.WriteString(e.emitInst(inst))
		}
		out.WriteString(e.emitInst(blk.term))
	}

	return out.String()
}

// splitIntoBlocks groups a flat instruction stream into logical blocks:
// each run from a Label instruction up to and including its terminator.
func splitIntoBlocks(insts []nir.Inst) []logicalBlock {
	var blocks []logicalBlock
	var cur *logicalBlock

	for _, inst := range insts {
		if l, ok := inst.(nir.LabelInst); ok {
			cur = &logicalBlock{name: l.Name, params: l.Params}
			continue
		}

		if cur == nil {
			report.ICE("unsupported construct: instruction stream does not open with a Label")
			continue
		}

		if nir.IsTerminator(inst) {
			cur.term = inst
			blocks = append(blocks, *cur)
			cur = nil
			continue
		}

		cur.body = append(cur.body, inst)
	}

	return blocks
}

// collectCopies implements §4.3 step 1: every Let(n, Copy(v)) records
// copies[n] := v.
func collectCopies(blocks []logicalBlock, copies map[nir.LocalName]nir.Value) {
	for _, blk := range blocks {
		for _, inst := range blk.body {
			let, ok := inst.(nir.LetInst)
			if !ok {
				continue
			}
			if cp, ok := let.Op.(nir.CopyOp); ok {
				copies[let.Name] = cp.V
			}
		}
	}
}

// computeFinalSplits counts, for each block, how many invoke-style Lets
// it contains — equivalently, the split index of the sub-block its
// terminator ends up in once emission has walked the block splitting at
// every such Let (see emitInst's invoke handling).
func computeFinalSplits(blocks []logicalBlock) map[nir.LocalName]int {
	out := make(map[nir.LocalName]int)
	for _, blk := range blocks {
		n := 0
		for _, inst := range blk.body {
			if let, ok := inst.(nir.LetInst); ok {
				if _, ok := let.Op.(nir.CallOp); ok && let.Unwind.Kind == nir.NextUnwindKind {
					n++
				}
			}
		}
		out[blk.name] = n
	}
	return out
}

// handlerBlocks returns the set of block names reached via some unwind
// edge — §4.3's "exception handler" classification.
func handlerBlocks(blocks []logicalBlock) map[nir.LocalName]bool {
	out := make(map[nir.LocalName]bool)
	for _, blk := range blocks {
		for _, inst := range blk.body {
			if let, ok := inst.(nir.LetInst); ok && let.Unwind.Kind == nir.NextUnwindKind {
				out[let.Unwind.Target] = true
			}
		}
	}
	return out
}

// collectIncoming gathers, for every block, the list of edges that
// target it (from Jump/If/Switch Next values of kind Label or Case),
// each paired with the predecessor's final split index.
func collectIncoming(blocks []logicalBlock, finalSplit map[nir.LocalName]int) map[nir.LocalName][]incomingEdge {
	out := make(map[nir.LocalName][]incomingEdge)

	addEdge := func(from nir.LocalName, next nir.Next) {
		if next.Kind != nir.NextLabelKind && next.Kind != nir.NextCaseKind {
			return
		}
		out[next.Target] = append(out[next.Target], incomingEdge{
			fromName:  from,
			fromSplit: finalSplit[from],
			args:      next.Args,
		})
	}

	for _, blk := range blocks {
		switch t := blk.term.(type) {
		case nir.JumpInst:
			addEdge(blk.name, t.Next)
		case nir.IfInst:
			addEdge(blk.name, t.Then)
			addEdge(blk.name, t.Else)
		case nir.SwitchInst:
			addEdge(blk.name, t.Default)
			for _, c := range t.Cases {
				addEdge(blk.name, c)
			}
		}
	}

	for name, edges := range out {
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].fromName != edges[j].fromName {
				return edges[i].fromName < edges[j].fromName
			}
			return edges[i].fromSplit < edges[j].fromSplit
		})
		out[name] = edges
	}

	return out
}

// phiPrologue emits §4.3's regular-block prologue: one phi instruction
// per label parameter, each carrying that parameter's incoming value
// along every edge.
func (e *Emitter) phiPrologue(blk logicalBlock, edges []incomingEdge) string {
	var b strings.Builder

	for k, param := range blk.params {
		pairs := make([]string, len(edges))
		for i, edge := range edges {
			if k >= len(edge.args) {
				report.ICE("unsupported construct: edge from block %s to block %d supplies %d arg(s), short of parameter %d", blockLabel(edge.fromName, edge.fromSplit), blk.name, len(edge.args), k)
				continue
			}
			pairs[i] = fmt.Sprintf("[ %s, %%%s ]", e.literalText(e.deconstify(edge.args[k])), blockLabel(edge.fromName, edge.fromSplit))
		}
		b.WriteString(fmt.Sprintf("  %s = phi %s %s\n", localIdent(param.Name), typeText(param.Type), strings.Join(pairs, ", ")))
	}

	return b.String()
}

// landingPadPrologue emits §4.3's bit-exact exception-handler sequence.
// The caught payload pointer is bound to the handler block's own Label
// parameter (handler blocks always carry exactly one), so later
// instructions in the block reference it like any other local.
func (e *Emitter) landingPadPrologue(blk logicalBlock) string {
	wrapperPtr := fmt.Sprintf("bitcast (%s* @%s to i8*)", wrapperTypeInfoType, wrapperTypeInfo)

	excIdent := "%exc"
	if len(blk.params) > 0 {
		excIdent = localIdent(blk.params[0].Name)
	}

	var b strings.Builder
	b.WriteString("  %rec = landingpad { i8*, i32 } catch i8* " + wrapperPtr + "\n")
	b.WriteString("  %r0 = extractvalue { i8*, i32 } %rec, 0\n")
	b.WriteString("  %r1 = extractvalue { i8*, i32 } %rec, 1\n")
	b.WriteString("  %id = call i32 @llvm.eh.typeid.for(i8* " + wrapperPtr + ")\n")
	b.WriteString("  %cmp = icmp eq i32 %r1, %id\n")
	b.WriteString("  br i1 %cmp, label %succ, label %fail\n")
	b.WriteString("fail:\n")
	b.WriteString("  resume { i8*, i32 } %rec\n")
	b.WriteString("succ:\n")
	b.WriteString("  %w0 = call i8* @__cxa_begin_catch(i8* %r0)\n")
	b.WriteString("  %w1 = bitcast i8* %w0 to i8**\n")
	b.WriteString("  %w2 = getelementptr i8*, i8** %w1, i32 1\n")
	b.WriteString("  " + excIdent + " = load i8*, i8** %w2\n")
	b.WriteString("  call void @__cxa_end_catch()\n")
	return b.String()
}
