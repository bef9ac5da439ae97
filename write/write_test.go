package write

import (
	"os"
	"path/filepath"
	"testing"

	"nirgen/partition"
)

func TestFilename(t *testing.T) {
	cases := []struct {
		shard partition.Shard
		total int
		want  string
	}{
		{partition.Shard{ID: 0}, 1, "out.ll"},
		{partition.Shard{ID: 0}, 3, "0.ll"},
		{partition.Shard{ID: 2}, 3, "2.ll"},
	}

	for _, c := range cases {
		if got := Filename(c.shard, c.total); got != c.want {
			t.Errorf("Filename(ID=%d, total=%d) = %q, want %q", c.shard.ID, c.total, got, c.want)
		}
	}
}

func TestShardWritesFileUnderDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "build")

	shard := partition.Shard{ID: 0}
	if err := Shard(dir, shard, 1, "; ir text\n"); err != nil {
		t.Fatalf("Shard: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "out.ll"))
	if err != nil {
		t.Fatalf("reading written shard: %v", err)
	}
	if string(got) != "; ir text\n" {
		t.Errorf("written content = %q, want %q", got, "; ir text\n")
	}
}

func TestShardMultiShardNaming(t *testing.T) {
	dir := t.TempDir()

	if err := Shard(dir, partition.Shard{ID: 1}, 4, "shard one\n"); err != nil {
		t.Fatalf("Shard: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "1.ll"))
	if err != nil {
		t.Fatalf("reading written shard: %v", err)
	}
	if string(got) != "shard one\n" {
		t.Errorf("written content = %q, want %q", got, "shard one\n")
	}
}
