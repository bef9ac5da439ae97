// Package config loads the backend's build-mode surface (§6's "Build-mode
// surface"): target triple, working directory, build mode, and LTO
// setting, from a TOML manifest in the style of the example compiler's
// chai-mod.toml loader.
package config

import (
	"fmt"
	"io/ioutil"
	"runtime"

	"github.com/pelletier/go-toml"
)

// Mode is the build mode: Debug or Release.
type Mode int

const (
	Debug Mode = iota
	Release
)

// LTONone means no external link-time-optimization is configured.
const LTONone = "none"

// Target is the resolved build-mode surface the pipeline consumes.
type Target struct {
	// Triple is the LLVM target triple string. Empty means "omit the
	// target triple line from the prelude".
	Triple string

	// WorkDir is the directory .ll shard files are written into.
	WorkDir string

	// ModeVal is the build mode.
	ModeVal Mode

	// LTO is "none" or an external toolchain identifier. Per §4.1's
	// effect table, LTO != "none" under Release still produces N shards;
	// only Release with LTONone collapses to a single shard.
	LTO string

	// Procs is the number of shards to request in Debug mode, or when
	// Release is paired with an external LTO toolchain. 0 means
	// runtime.NumCPU().
	Procs int
}

// Shards returns the number of shards Target configures, applying §4.1's
// effect table.
func (t *Target) Shards() int {
	if t.ModeVal == Release && t.LTO == LTONone {
		return 1
	}

	if t.Procs > 0 {
		return t.Procs
	}

	return runtime.NumCPU()
}

// tomlManifest mirrors the on-disk manifest shape.
type tomlManifest struct {
	Triple  string `toml:"triple"`
	WorkDir string `toml:"workdir"`
	Debug   bool   `toml:"debug"`
	LTO     string `toml:"lto,omitempty"`
	Procs   int    `toml:"procs,omitempty"`
}

// Load reads a TOML manifest at path and fills in defaults: LTO "none"
// when unset, WorkDir "." when unset. Debug false selects Release.
func Load(path string) (*Target, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m tomlManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	t := &Target{
		Triple:  m.Triple,
		WorkDir: m.WorkDir,
		LTO:     m.LTO,
		Procs:   m.Procs,
	}

	if m.Debug {
		t.ModeVal = Debug
	} else {
		t.ModeVal = Release
	}

	if t.LTO == "" {
		t.LTO = LTONone
	}

	if t.WorkDir == "" {
		t.WorkDir = "."
	}

	return t, nil
}
