// Command orapgsync is a thin CLI wrapper around the transpiler core.
// Grounded on cmd/tgpiler/main.go's run(args, stdin, stdout, stderr) int
// shape (a testable entry point, os.Exit only called from main itself).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Sayiza/orapgsync-sub008/ast"
	"github.com/Sayiza/orapgsync-sub008/diag"
	"github.com/Sayiza/orapgsync-sub008/metadata"
	"github.com/Sayiza/orapgsync-sub008/transpiler"
	"github.com/alecthomas/repr"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "transform-sql":
		return runTransformSQL(args[1:], stdout, stderr)
	case "transform-routine":
		return runTransformRoutine(args[1:], stdout, stderr)
	case "dump-ast":
		return runDumpAST(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		printUsage(stdout)
		return 0
	case "-v", "--version", "version":
		fmt.Fprintf(stdout, "orapgsync version %s\n", version)
		return 0
	default:
		fmt.Fprintf(stderr, "error: unknown subcommand %q\n", args[0])
		printUsage(stderr)
		return 2
	}
}

type commonFlags struct {
	schema      string
	indicesPath string
	input       string
}

func parseCommon(name string, args []string, stderr io.Writer) (*commonFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	schema := fs.String("schema", "public", "current schema used to qualify unresolved references")
	indicesPath := fs.String("indices-path", "", "path to a YAML snapshot of the Transformation Indices (metadata.LoadYAML)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return &commonFlags{schema: *schema, indicesPath: *indicesPath}, fs.Args(), nil
}

func loadIndices(path string) (*metadata.Indices, error) {
	if path == "" {
		return metadata.New(), nil
	}
	return metadata.LoadYAML(path)
}

// loadTree builds an ast.Statement from the given input path. This repo
// carries no Oracle parser (out of scope, §1 of the core specification) so
// every real invocation resolves here; fixtures that already hold an
// ast.Statement call transpiler.TransformSQL/TransformRoutine directly
// instead of going through this CLI. Swapping in a parser is a one-function
// change to this body.
func loadTree(path string) (ast.Statement, error) {
	return nil, fmt.Errorf("no Oracle PL/SQL parser is wired into this build; %s cannot be parsed from source (build the ast.Statement tree programmatically and call the transpiler package directly)", path)
}

func runTransformSQL(args []string, stdout, stderr io.Writer) int {
	cf, rest, err := parseCommon("transform-sql", args, stderr)
	if err != nil {
		return 2
	}
	if len(rest) != 1 {
		fmt.Fprintln(stderr, "error: transform-sql requires exactly one input path")
		return 2
	}
	tree, err := loadTree(rest[0])
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	idx, err := loadIndices(cf.indicesPath)
	if err != nil {
		fmt.Fprintf(stderr, "error loading indices: %v\n", err)
		return 1
	}

	sink := diag.NewSlogSink(nil)
	result := transpiler.TransformSQL(tree, cf.schema, idx, transpiler.WithSink(sink))
	return reportResult(result, stdout, stderr)
}

func runTransformRoutine(args []string, stdout, stderr io.Writer) int {
	cf, rest, err := parseCommon("transform-routine", args, stderr)
	if err != nil {
		return 2
	}
	if len(rest) != 1 {
		fmt.Fprintln(stderr, "error: transform-routine requires exactly one input path")
		return 2
	}
	tree, err := loadTree(rest[0])
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	idx, err := loadIndices(cf.indicesPath)
	if err != nil {
		fmt.Fprintf(stderr, "error loading indices: %v\n", err)
		return 1
	}

	sink := diag.NewSlogSink(nil)
	var result *transpiler.Result
	switch proc := tree.(type) {
	case *ast.CreateProcedureStatement:
		result = transpiler.TransformRoutine(proc, cf.schema, idx, transpiler.WithSink(sink))
	case *ast.CreateFunctionStatement:
		result = transpiler.TransformFunction(proc, cf.schema, idx, transpiler.WithSink(sink))
	default:
		fmt.Fprintf(stderr, "error: input is not a CREATE PROCEDURE/FUNCTION (got %T)\n", tree)
		return 1
	}
	return reportResult(result, stdout, stderr)
}

func runDumpAST(args []string, stdout, stderr io.Writer) int {
	_, rest, err := parseCommon("dump-ast", args, stderr)
	if err != nil {
		return 2
	}
	if len(rest) != 1 {
		fmt.Fprintln(stderr, "error: dump-ast requires exactly one input path")
		return 2
	}
	tree, err := loadTree(rest[0])
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, repr.String(tree, repr.Indent("  ")))
	return 0
}

func reportResult(result *transpiler.Result, stdout, stderr io.Writer) int {
	for _, d := range result.Diagnostics {
		fmt.Fprintf(stderr, "%s [%s] %s (line %d)\n", d.Severity, d.Kind, d.Message, d.Line)
	}
	if !result.Success {
		fmt.Fprintf(stderr, "error: %s: %s\n", result.ErrorKind, result.ErrorMessage)
		return 1
	}
	fmt.Fprintln(stdout, result.PostgresSource)
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `orapgsync - Oracle PL/SQL to PostgreSQL PL/pgSQL transpiler core

Usage:
  orapgsync transform-sql [options] <input>
  orapgsync transform-routine [options] <input>
  orapgsync dump-ast [options] <input>

Options:
  --schema <name>         current schema used to qualify unresolved references (default: public)
  --indices-path <path>   YAML snapshot of the Transformation Indices

  -h, --help              show this help
  -v, --version           show version

Exit codes:
  0  success
  1  transpile error
  2  CLI usage error
`)
}
