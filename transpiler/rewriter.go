package transpiler

import (
	"github.com/Sayiza/orapgsync-sub008/ast"
	"github.com/Sayiza/orapgsync-sub008/diag"
	"github.com/Sayiza/orapgsync-sub008/txcontext"
	"github.com/google/uuid"
)

// rewriter is the state holder threaded through one translation unit's
// rewrite, the analogue of the teacher's transpiler struct in
// transpiler/transpiler.go. Unlike the teacher it does not accumulate Go
// import sets; it accumulates diagnostics instead.
type rewriter struct {
	ctx          *txcontext.Context
	sink         diag.Sink
	unitID       string
	diagnostics  []diag.Diagnostic
	oracleSource string
}

func newRewriter(ctx *txcontext.Context, sink diag.Sink) *rewriter {
	if sink == nil {
		sink = diag.NewNopSink()
	}
	return &rewriter{ctx: ctx, sink: sink, unitID: uuid.NewString()}
}

// metadataMiss records a non-fatal MetadataMiss diagnostic (§7): the
// rewrite keeps going with a best-effort fallback.
func (r *rewriter) metadataMiss(node ast.Node, message string) {
	p := node.Pos()
	r.record(diag.SeverityWarning, "MetadataMiss", message, p.Line, p.Column)
}

func (r *rewriter) record(sev diag.Severity, kind, message string, line, column int) {
	d := diag.Diagnostic{UnitID: r.unitID, Severity: sev, Kind: kind, Message: message, Line: line, Column: column}
	r.diagnostics = append(r.diagnostics, d)
	r.sink.Record(d)
}
