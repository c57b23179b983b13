package transpiler

import (
	"fmt"

	"github.com/Sayiza/orapgsync-sub008/ast"
	"github.com/Sayiza/orapgsync-sub008/diag"
	"github.com/Sayiza/orapgsync-sub008/metadata"
	"github.com/Sayiza/orapgsync-sub008/txcontext"
)

// Result is the top-level driver's success/failure union (§6).
type Result struct {
	UnitID         string
	OracleSource   string
	Success        bool
	PostgresSource string
	Diagnostics    []diag.Diagnostic
	ErrorKind      ErrorKind
	ErrorMessage   string
}

// Option configures a translation unit; the zero value of Options uses a
// no-op diagnostic sink.
type Option func(*rewriter)

// WithSink routes diagnostics through sink in addition to the Result.
func WithSink(sink diag.Sink) Option {
	return func(r *rewriter) { r.sink = sink }
}

// WithOracleSource attaches the original Oracle statement text to the
// Result, for callers (the emission sink, a diff-on-review UI) that want it
// alongside the rewritten PostgreSQL. The core itself never parses or
// otherwise reads src; it only carries it through.
func WithOracleSource(src string) Option {
	return func(r *rewriter) { r.oracleSource = src }
}

// TransformSQL rewrites a single SQL statement tree into PostgreSQL text.
// Grounded on the teacher's Transpile/TranspileWithDML entry points in this
// file, minus the parser call (parsing is out of scope, §1) and the Go
// import bookkeeping (there is no generated-Go-source import list here).
func TransformSQL(tree ast.Statement, schema string, idx *metadata.Indices, opts ...Option) (result *Result) {
	ctx := txcontext.New(schema, idx)
	r := newRewriter(ctx, nil)
	for _, opt := range opts {
		opt(r)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = failureResult(r, transformationBug(tree, fmt.Sprintf("internal rewrite panic: %v", rec)))
		}
	}()

	sql, err := r.statementAsTopLevelSQL(tree)
	if err != nil {
		return failureResult(r, err)
	}
	return successResult(r, sql)
}

// TransformRoutine rewrites a CREATE PROCEDURE/FUNCTION body into a
// PostgreSQL CREATE FUNCTION (PL/pgSQL always returns a value, so procedures
// with OUT parameters are emitted as functions returning those params,
// matching the teacher's own "output params become named Go returns"
// convention in transpileCreateProcedure, adapted to PL/pgSQL's OUT
// parameter syntax instead).
func TransformRoutine(proc *ast.CreateProcedureStatement, schema string, idx *metadata.Indices, opts ...Option) (result *Result) {
	ctx := txcontext.New(schema, idx)
	r := newRewriter(ctx, nil)
	for _, opt := range opts {
		opt(r)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = failureResult(r, transformationBug(proc, fmt.Sprintf("internal rewrite panic: %v", rec)))
		}
	}()

	sql, err := r.createProcedure(proc)
	if err != nil {
		return failureResult(r, err)
	}
	return successResult(r, sql)
}

// TransformFunction is TransformRoutine's analogue for CREATE FUNCTION.
func TransformFunction(fn *ast.CreateFunctionStatement, schema string, idx *metadata.Indices, opts ...Option) (result *Result) {
	ctx := txcontext.New(schema, idx)
	r := newRewriter(ctx, nil)
	for _, opt := range opts {
		opt(r)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = failureResult(r, transformationBug(fn, fmt.Sprintf("internal rewrite panic: %v", rec)))
		}
	}()

	sql, err := r.createFunction(fn)
	if err != nil {
		return failureResult(r, err)
	}
	return successResult(r, sql)
}

func (r *rewriter) statementAsTopLevelSQL(stmt ast.Statement) (string, error) {
	switch v := stmt.(type) {
	case *ast.SelectStatement:
		return r.selectStatement(v)
	case *ast.InsertStatement:
		return r.insertStatement(v)
	case *ast.UpdateStatement:
		return r.updateStatement(v)
	case *ast.DeleteStatement:
		return r.deleteStatement(v)
	case *ast.CreateProcedureStatement:
		return r.createProcedure(v)
	case *ast.CreateFunctionStatement:
		return r.createFunction(v)
	default:
		return "", transformationBug(stmt, fmt.Sprintf("unhandled top-level statement type %T", stmt))
	}
}

func successResult(r *rewriter, sql string) *Result {
	return &Result{
		UnitID:         r.unitID,
		OracleSource:   r.oracleSource,
		Success:        true,
		PostgresSource: sql,
		Diagnostics:    r.diagnostics,
	}
}

func failureResult(r *rewriter, err error) *Result {
	te, ok := err.(*TranspileError)
	if !ok {
		te = &TranspileError{Kind: ErrorKindTransformationBug, Message: err.Error()}
	}
	return &Result{
		UnitID:       r.unitID,
		OracleSource: r.oracleSource,
		Success:      false,
		Diagnostics:  r.diagnostics,
		ErrorKind:    te.Kind,
		ErrorMessage: te.Error(),
	}
}
