// Package write implements the backend's final pipeline stage (spec
// §2 step 4): flushing each shard's emitted text to its own file in the
// configured working directory.
package write

import (
	"fmt"
	"os"
	"path/filepath"

	"nirgen/partition"
)

// Filename returns the on-disk name a shard's text is written to: a
// single-shard build (ID 0 and total == 1) writes "out.ll"; any other
// shard writes "<id>.ll".
func Filename(shard partition.Shard, total int) string {
	if total == 1 {
		return "out.ll"
	}
	return fmt.Sprintf("%d.ll", shard.ID)
}

// Shard writes text to shard's output file under dir, creating dir if
// it does not already exist. total is the number of shards in this
// build, needed to decide between the "out.ll" and "<id>.ll" naming.
func Shard(dir string, shard partition.Shard, total int, text string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating working directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, Filename(shard, total))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing shard %d to %s: %w", shard.ID, path, err)
	}

	return nil
}
