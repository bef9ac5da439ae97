// Package partition implements the backend's work-partitioning strategy
// (spec §4.1): grouping definitions by their top-level owner, sharding
// those groups across N output files, and sorting each shard into a
// deterministic intra-shard order.
package partition

import (
	"hash/fnv"
	"sort"

	"nirgen/nir"
)

// Shard is one partition's definitions, destined for a single output
// file. ID is the shard's numeric index; in single-shard mode it is
// always 0 and the shard is written as out.ll rather than "<ID>.ll".
type Shard struct {
	ID    int
	Defns []nir.Defn
}

// Group groups defns by their top-level owner name, normalized so that
// two Defns nested under the same top-level name always land in the same
// group regardless of which member name first introduced it.
func Group(defns []nir.Defn) map[string][]nir.Defn {
	groups := make(map[string][]nir.Defn)

	for _, d := range defns {
		key := d.DefnName().TopName().Normalize()
		groups[key] = append(groups[key], d)
	}

	return groups
}

// bucket deterministically hashes a top-level name into one of n buckets.
// It uses the same 32-bit FNV-1a hash the reference compiler uses to turn
// a file path into a numeric module ID, applied here to a name instead of
// a path: both need nothing more than a fast, stable, non-cryptographic
// hash of a string into a bounded range.
func bucket(topName string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(topName))
	return int(h.Sum32() % uint32(n))
}

// Partition splits defns into n shards (n must be >= 1). When n == 1
// every definition lands in the single shard with ID 0. Otherwise groups
// are distributed across shards by hashing their top-level name, so the
// assignment of a given top-level name to a shard is a pure function of
// its name and n, independent of input order — a prerequisite for
// cacheable incremental builds (§4.1's rationale).
func Partition(defns []nir.Defn, n int) []Shard {
	if n <= 1 {
		return []Shard{{ID: 0, Defns: sortDefns(defns)}}
	}

	groups := Group(defns)

	buckets := make([][]nir.Defn, n)
	for top, group := range groups {
		b := bucket(top, n)
		buckets[b] = append(buckets[b], group...)
	}

	shards := make([]Shard, n)
	for i := range buckets {
		shards[i] = Shard{ID: i, Defns: sortDefns(buckets[i])}
	}

	return shards
}

// sortDefns sorts defns by the printed form of their global name, giving
// deterministic output independent of the order the producer emitted
// them in.
func sortDefns(defns []nir.Defn) []nir.Defn {
	sorted := make([]nir.Defn, len(defns))
	copy(sorted, defns)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DefnName().String() < sorted[j].DefnName().String()
	})

	return sorted
}
