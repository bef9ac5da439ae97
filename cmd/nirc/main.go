// Command nirc is the CLI entry point for the backend: it reads a
// JSON-encoded NIR defn stream from stdin or a file, loads a build
// manifest, and runs the emit-and-write pipeline.
package main

import (
	"context"
	"io"
	"os"

	"github.com/ComedicChimera/olive"

	"nirgen/config"
	"nirgen/lower"
	"nirgen/nirio"
	"nirgen/pipeline"
	"nirgen/report"
)

func main() {
	cli := olive.NewCLI("nirc", "nirc emits LLVM IR from a NIR defn stream", true)

	cli.AddPrimaryArg("input", "path to the NIR defn stream, or '-' for stdin", true)
	cli.AddStringArg("manifest", "m", "path to the nirc.toml build manifest", false)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "diagnostic verbosity", false,
		[]string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.Fatal("CLI usage error: %s", err)
	}

	report.Init(logLevelFromName(result.Arguments["loglevel"].(string)))

	inputPath, _ := result.PrimaryArg()
	manifestPath := "nirc.toml"
	if v, ok := result.Arguments["manifest"]; ok {
		manifestPath = v.(string)
	}

	target, err := config.Load(manifestPath)
	if err != nil {
		report.Fatal("loading manifest: %s", err)
	}

	data, err := readInput(inputPath)
	if err != nil {
		report.Fatal("reading NIR defn stream: %s", err)
	}

	defns, err := nirio.Decode(data)
	if err != nil {
		report.Fatal("decoding NIR defn stream: %s", err)
	}

	if err := pipeline.Run(context.Background(), defns, lower.Identity{}, target); err != nil {
		report.Fatal("generating IR: %s", err)
	}
}

// readInput reads the whole NIR defn stream from path, or from stdin
// when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func logLevelFromName(name string) int {
	switch name {
	case "silent":
		return report.LevelSilent
	case "error":
		return report.LevelError
	case "warn":
		return report.LevelWarn
	default:
		return report.LevelVerbose
	}
}
