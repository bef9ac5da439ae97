package pipeline

import (
	"fmt"

	"nirgen/partition"
	"nirgen/write"
)

// defaultWriteShard is writeShard's real implementation: flush to disk
// via package write. Tests override the writeShard variable to capture
// output without touching the filesystem.
func defaultWriteShard(dir string, shard partition.Shard, total int, text string) error {
	return write.Shard(dir, shard, total, text)
}

func shardLabel(shard partition.Shard, total int) string {
	if total == 1 {
		return fmt.Sprintf("out.ll (%d defns)", len(shard.Defns))
	}
	return fmt.Sprintf("shard %d/%d (%d defns)", shard.ID, total, len(shard.Defns))
}
