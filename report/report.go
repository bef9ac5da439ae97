// Package report merges the backend's two upstream reporting lineages
// (compile diagnostics and internal-error aborts) into a single
// mutex-guarded sink, in the style of the example compiler's
// logging/report packages. Every other package in this repository routes
// its diagnostics through here instead of writing to stdout directly.
package report

import (
	"fmt"
	"os"
	"sync"

	"github.com/pterm/pterm"
)

// Enumeration of log levels, ordered from least to most verbose.
const (
	LevelSilent = iota
	LevelError
	LevelWarn
	LevelVerbose
)

var (
	mu         sync.Mutex
	level      = LevelVerbose
	errorCount int
)

// Init (re)initializes the global sink with the given log level.
func Init(lvl int) {
	mu.Lock()
	defer mu.Unlock()
	level = lvl
	errorCount = 0
}

// ShouldProceed reports whether no fatal error has been recorded yet.
func ShouldProceed() bool {
	mu.Lock()
	defer mu.Unlock()
	return errorCount == 0
}

// Warn logs a non-fatal warning, visible at LevelWarn and above.
func Warn(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level >= LevelWarn {
		pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Print(" Warning ")
		pterm.FgYellow.Println(" " + fmt.Sprintf(format, args...))
	}
}

// Info logs a progress message, visible only at LevelVerbose.
func Info(tag, msg string) {
	mu.Lock()
	defer mu.Unlock()
	if level >= LevelVerbose {
		pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack).Print(" " + tag + " ")
		pterm.FgLightGreen.Println(" " + msg)
	}
}

// Fatal reports a failure of the run outside the emitter (a CLI usage
// error, an unreadable manifest or input, or an error returned by the
// pipeline such as a working-directory write failure) and aborts the
// process. Unlike ICE, a Fatal is an expected failure mode of a
// misconfigured or incomplete build, not a backend bug.
func Fatal(format string, args ...interface{}) {
	mu.Lock()
	errorCount++
	msg := fmt.Sprintf(format, args...)
	mu.Unlock()

	pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Print(" Fatal ")
	pterm.FgRed.Println(" " + msg)
	os.Exit(1)
}

// ICE reports an internal compiler error — an unsupported NIR construct
// reaching the emitter, or a referenced global missing from the emitter's
// defn environment — and aborts the process. These
// errors are never supposed to happen: they indicate either a bug in
// upstream lowering or a bug in this package.
func ICE(format string, args ...interface{}) {
	mu.Lock()
	errorCount++
	msg := fmt.Sprintf(format, args...)
	mu.Unlock()

	pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Print(" Internal Error ")
	pterm.FgRed.Println(" " + msg)
	fmt.Fprintln(os.Stderr, "this is a bug in the backend, not in the program being compiled")
	os.Exit(1)
}
