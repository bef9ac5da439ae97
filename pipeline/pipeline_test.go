package pipeline

import (
	"context"
	"sync"
	"testing"

	"nirgen/config"
	"nirgen/lower"
	"nirgen/nir"
	"nirgen/partition"
)

// capturedWrite is one recorded call to the writeShard seam.
type capturedWrite struct {
	dir   string
	shard partition.Shard
	total int
	text  string
}

// withCapturedWrites substitutes writeShard with a fake that records
// calls instead of touching the filesystem, runs fn, then restores the
// real implementation.
func withCapturedWrites(t *testing.T, fn func(capture func() []capturedWrite)) {
	t.Helper()

	var mu sync.Mutex
	var calls []capturedWrite

	orig := writeShard
	writeShard = func(dir string, shard partition.Shard, total int, text string) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, capturedWrite{dir: dir, shard: shard, total: total, text: text})
		return nil
	}
	defer func() { writeShard = orig }()

	fn(func() []capturedWrite {
		mu.Lock()
		defer mu.Unlock()
		out := make([]capturedWrite, len(calls))
		copy(out, calls)
		return out
	})
}

func makeFunc(name string) nir.Defn {
	return nir.DefineDefn{
		Name_:  nir.Top(name),
		Sig:    nir.FuncType{Ret: nir.VoidType{}},
		Insts:  []nir.Inst{nir.LabelInst{Name: 0}, nir.RetInst{}},
		Attrs_: nir.Attrs{Public: true, MayInline: true},
	}
}

func TestRunSingleShard(t *testing.T) {
	defns := []nir.Defn{makeFunc("a"), makeFunc("b")}
	target := &config.Target{ModeVal: config.Release, LTO: config.LTONone, WorkDir: "/tmp/out"}

	withCapturedWrites(t, func(capture func() []capturedWrite) {
		if err := Run(context.Background(), defns, lower.Identity{}, target); err != nil {
			t.Fatalf("Run: %v", err)
		}

		calls := capture()
		if len(calls) != 1 {
			t.Fatalf("got %d write calls, want 1 (single-shard build)", len(calls))
		}
		if calls[0].total != 1 {
			t.Errorf("total = %d, want 1", calls[0].total)
		}
		if calls[0].shard.ID != 0 {
			t.Errorf("shard.ID = %d, want 0", calls[0].shard.ID)
		}
		if len(calls[0].shard.Defns) != 2 {
			t.Errorf("shard carries %d defns, want 2", len(calls[0].shard.Defns))
		}
		if calls[0].dir != "/tmp/out" {
			t.Errorf("dir = %q, want /tmp/out", calls[0].dir)
		}
		if calls[0].text == "" {
			t.Error("emitted text is empty")
		}
	})
}

func TestRunMultiShard(t *testing.T) {
	defns := []nir.Defn{makeFunc("a"), makeFunc("b"), makeFunc("c"), makeFunc("d"), makeFunc("e")}
	target := &config.Target{ModeVal: config.Debug, WorkDir: "/tmp/out", Procs: 3}

	withCapturedWrites(t, func(capture func() []capturedWrite) {
		if err := Run(context.Background(), defns, lower.Identity{}, target); err != nil {
			t.Fatalf("Run: %v", err)
		}

		calls := capture()
		if len(calls) != 3 {
			t.Fatalf("got %d write calls, want 3 (one per shard, even if some are empty)", len(calls))
		}

		seen := make(map[int]bool)
		total := 0
		for _, c := range calls {
			if c.total != 3 {
				t.Errorf("call for shard %d has total %d, want 3", c.shard.ID, c.total)
			}
			seen[c.shard.ID] = true
			total += len(c.shard.Defns)
		}
		for i := 0; i < 3; i++ {
			if !seen[i] {
				t.Errorf("shard %d was never written", i)
			}
		}
		if total != 5 {
			t.Errorf("shards carry %d defns total, want 5", total)
		}
	})
}

// countingLowerer records which top-level names it was asked to lower,
// verifying lowerAll's grouping without depending on lowering order.
type countingLowerer struct {
	mu   sync.Mutex
	seen []string
}

func (c *countingLowerer) LowerGroup(top nir.Name, defns []nir.Defn) []nir.Defn {
	c.mu.Lock()
	c.seen = append(c.seen, top.Normalize())
	c.mu.Unlock()
	return defns
}

func TestRunGroupsByTopLevelNameBeforeLowering(t *testing.T) {
	defns := []nir.Defn{
		makeFunc("a"),
		nir.DeclareDefn{Name_: nir.Member(nir.Top("a"), "helper"), Sig: nir.FuncType{Ret: nir.VoidType{}}, Attrs_: nir.Attrs{Public: true, MayInline: true}},
		makeFunc("b"),
	}
	target := &config.Target{ModeVal: config.Release, LTO: config.LTONone, WorkDir: "/tmp/out"}
	l := &countingLowerer{}

	withCapturedWrites(t, func(capture func() []capturedWrite) {
		if err := Run(context.Background(), defns, l, target); err != nil {
			t.Fatalf("Run: %v", err)
		}
	})

	if len(l.seen) != 2 {
		t.Fatalf("lowerer was invoked %d times, want 2 (one per top-level name)", len(l.seen))
	}
	byName := map[string]bool{}
	for _, n := range l.seen {
		byName[n] = true
	}
	if !byName["a"] || !byName["b"] {
		t.Errorf("expected groups \"a\" and \"b\", got %v", l.seen)
	}
}
