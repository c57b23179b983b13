package transpiler

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub008/ast"
	"github.com/Sayiza/orapgsync-sub008/metadata"
)

// expr is the Expression Rewriter's (C7) entry point: a type-switch
// dispatch over every ast.Expression kind, directly grounded on the
// teacher's transpileExpression in transpiler/expressions.go.
func (r *rewriter) expr(e ast.Expression) (string, error) {
	switch v := e.(type) {
	case nil:
		return "", nil
	case *ast.Identifier:
		return r.identifier(v)
	case *ast.QualifiedIdentifier:
		return r.qualifiedIdentifier(v)
	case *ast.BindVariable:
		return v.Name, nil
	case *ast.IntegerLiteral:
		return fmt.Sprintf("%d", v.Value), nil
	case *ast.NumberLiteral:
		return v.Value.String(), nil
	case *ast.StringLiteral:
		return "'" + strings.ReplaceAll(v.Value, "'", "''") + "'", nil
	case *ast.NullLiteral:
		return "NULL", nil
	case *ast.BinaryExpr:
		return r.binaryExpr(v)
	case *ast.UnaryExpr:
		return r.unaryExpr(v)
	case *ast.OuterJoinExpr:
		// Surviving to here means the outer-join analyzer did not consume
		// this marker (an ambiguous shape); emit the bare operand and let
		// the caller's diagnostic cover the semantic gap.
		return r.expr(v.Operand)
	case *ast.FunctionCall:
		return r.functionCallExpr(v)
	case *ast.DotCallExpr:
		return r.dotCallExpr(v)
	case *ast.CaseExpr:
		return r.caseExpr(v)
	case *ast.BetweenExpr:
		return r.betweenExpr(v)
	case *ast.InExpr:
		return r.inExpr(v)
	case *ast.ExistsExpr:
		return r.existsExpr(v)
	case *ast.SubqueryExpr:
		sel, err := r.selectStatement(v.Select)
		if err != nil {
			return "", err
		}
		return "(" + sel + ")", nil
	case *ast.SelectStatement:
		sel, err := r.selectStatement(v)
		if err != nil {
			return "", err
		}
		return "(" + sel + ")", nil
	case *ast.IsNullExpr:
		return r.isNullExpr(v)
	case *ast.CursorAttributeExpr:
		return r.cursorAttributeExpr(v)
	case *ast.SequencePseudoColumnExpr:
		return r.sequenceExpr(v)
	case *ast.FieldAccessExpr:
		return r.fieldAccessExpr(v)
	case *ast.CastExpr:
		return r.castExpr(v)
	default:
		return "", transformationBug(e, fmt.Sprintf("unhandled expression type %T", e))
	}
}

func (r *rewriter) exprList(exprs []ast.Expression) ([]string, error) {
	out := make([]string, 0, len(exprs))
	for _, e := range exprs {
		s, err := r.expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *rewriter) identifier(id *ast.Identifier) (string, error) {
	upper := strings.ToUpper(id.Value)
	if upper == "ROWNUM" {
		// Bare ROWNUM outside a pattern the C6 analyzer recognized; Oracle's
		// runtime-assigned pseudo-column has no direct PostgreSQL expression
		// equivalent, so surface a MetadataMiss and fall back to a row
		// counter window function, the closest approximation.
		r.metadataMiss(id, "ROWNUM used outside a recognized LIMIT pattern, approximated with row_number()")
		return "row_number() OVER ()", nil
	}
	return strings.ToLower(id.Value), nil
}

func (r *rewriter) qualifiedIdentifier(q *ast.QualifiedIdentifier) (string, error) {
	if len(q.Parts) == 2 {
		alias, name := q.Parts[0].Value, q.Parts[1].Value
		if target, ok := r.ctx.Idx.ResolveSynonym(alias); ok {
			return target + "." + metadata.Canonicalize(name), nil
		}
	}
	return strings.ToLower(q.String()), nil
}

func (r *rewriter) binaryExpr(b *ast.BinaryExpr) (string, error) {
	left, err := r.expr(b.Left)
	if err != nil {
		return "", err
	}
	right, err := r.expr(b.Right)
	if err != nil {
		return "", err
	}
	switch b.Op {
	case "||":
		// Oracle's || treats NULL as empty string; PostgreSQL's || yields
		// NULL if either side is NULL. Use CONCAT(), which has Oracle
		// semantics, per §4.7's mandatory rewrite.
		return fmt.Sprintf("CONCAT(%s, %s)", left, right), nil
	case "=", "!=", "<>", "<", ">", "<=", ">=", "+", "-", "*", "/", "AND", "OR", "LIKE":
		op := b.Op
		if op == "!=" {
			op = "<>"
		}
		return fmt.Sprintf("(%s %s %s)", left, op, right), nil
	default:
		return fmt.Sprintf("(%s %s %s)", left, b.Op, right), nil
	}
}

func (r *rewriter) unaryExpr(u *ast.UnaryExpr) (string, error) {
	operand, err := r.expr(u.Operand)
	if err != nil {
		return "", err
	}
	switch strings.ToUpper(u.Op) {
	case "NOT":
		return fmt.Sprintf("(NOT %s)", operand), nil
	case "-":
		return fmt.Sprintf("(-%s)", operand), nil
	case "PRIOR":
		// PRIOR only appears inside CONNECT BY, consumed structurally by
		// the SQL statement rewriter's CONNECT BY->recursive CTE rewrite;
		// reaching here means it showed up somewhere else.
		return "", unsupported(u, "PRIOR outside CONNECT BY", "CONNECT BY hierarchical queries are rewritten as recursive CTEs")
	default:
		return fmt.Sprintf("(%s%s)", u.Op, operand), nil
	}
}

func (r *rewriter) functionCallExpr(fc *ast.FunctionCall) (string, error) {
	if fc.Over != nil {
		return r.windowFunctionCall(fc)
	}
	return r.rewriteFunctionCall(fc)
}

func (r *rewriter) windowFunctionCall(fc *ast.FunctionCall) (string, error) {
	base, err := r.rewriteFunctionCall(&ast.FunctionCall{Position: fc.Position, Function: fc.Function, Args: fc.Args, Distinct: fc.Distinct})
	if err != nil {
		return "", err
	}
	var parts []string
	if len(fc.Over.PartitionBy) > 0 {
		pb, err := r.exprList(fc.Over.PartitionBy)
		if err != nil {
			return "", err
		}
		parts = append(parts, "PARTITION BY "+strings.Join(pb, ", "))
	}
	if len(fc.Over.OrderBy) > 0 {
		ob, err := r.orderByList(fc.Over.OrderBy)
		if err != nil {
			return "", err
		}
		parts = append(parts, "ORDER BY "+strings.Join(ob, ", "))
	}
	if fc.Over.Frame != nil {
		parts = append(parts, fmt.Sprintf("%s BETWEEN %s AND %s", fc.Over.Frame.Mode, fc.Over.Frame.Start, fc.Over.Frame.End))
	}
	return fmt.Sprintf("%s OVER (%s)", base, strings.Join(parts, " ")), nil
}

// dotCallExpr disambiguates a dotted call chain using the indices: a known
// package routine is flattened to pkg__routine(...) (PostgreSQL has no
// package/namespace concept), schema-qualified only when the call target's
// schema differs from the current one; a known object-type method becomes
// target.method(args) rewritten as a function-style call (PostgreSQL has no
// method-call syntax); and anything else is treated as an unqualified
// package call in the current schema with a MetadataMiss.
func (r *rewriter) dotCallExpr(d *ast.DotCallExpr) (string, error) {
	args, err := r.exprList(d.Args)
	if err != nil {
		return "", err
	}
	n := len(d.Chain)
	if n >= 2 {
		pkg, routine := d.Chain[n-2].Value, d.Chain[n-1].Value
		schema := r.ctx.Schema
		if n >= 3 {
			schema = d.Chain[n-3].Value
		}
		if _, ok := r.ctx.Idx.LookupRoutine(schema, pkg, routine); ok {
			return fmt.Sprintf("%s(%s)", flattenPackageCall(schema, pkg, routine, r.ctx.Schema), strings.Join(args, ", ")), nil
		}
		if r.ctx.Idx.HasTypeMethod(schema, pkg, routine) {
			target, err := r.expr(&ast.Identifier{Value: pkg})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s_%s(%s%s)", metadata.Canonicalize(pkg), metadata.Canonicalize(routine), target, prependComma(args)), nil
		}
		r.metadataMiss(d, fmt.Sprintf("call target %q not found in package routines or type methods, assumed package routine in current schema", joinIdentChain(d.Chain)))
		return fmt.Sprintf("%s(%s)", flattenPackageCall(schema, pkg, routine, r.ctx.Schema), strings.Join(args, ", ")), nil
	}
	r.metadataMiss(d, fmt.Sprintf("call target %q not found in package routines or type methods, assumed package routine in current schema", joinIdentChain(d.Chain)))
	qualified := metadata.Canonicalize(r.ctx.Schema) + "." + strings.ToLower(joinIdentChain(d.Chain))
	return fmt.Sprintf("%s(%s)", qualified, strings.Join(args, ", ")), nil
}

// flattenPackageCall renders a package routine call as pkg__routine,
// PostgreSQL having no package namespace to mirror Oracle's, qualifying the
// flattened name with schema only when it differs from the caller's own.
func flattenPackageCall(schema, pkg, routine, currentSchema string) string {
	flat := metadata.Canonicalize(pkg) + "__" + metadata.Canonicalize(routine)
	if metadata.Canonicalize(schema) != metadata.Canonicalize(currentSchema) {
		flat = metadata.Canonicalize(schema) + "." + flat
	}
	return flat
}

func joinIdentChain(chain []*ast.Identifier) string {
	parts := make([]string, len(chain))
	for i, id := range chain {
		parts[i] = id.Value
	}
	return strings.Join(parts, ".")
}

func prependComma(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return ", " + strings.Join(args, ", ")
}

func (r *rewriter) caseExpr(c *ast.CaseExpr) (string, error) {
	var sb strings.Builder
	sb.WriteString("CASE")
	if c.Operand != nil {
		op, err := r.expr(c.Operand)
		if err != nil {
			return "", err
		}
		sb.WriteString(" " + op)
	}
	for _, w := range c.WhenClauses {
		cond, err := r.expr(w.Condition)
		if err != nil {
			return "", err
		}
		res, err := r.expr(w.Result)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, " WHEN %s THEN %s", cond, res)
	}
	if c.Else != nil {
		els, err := r.expr(c.Else)
		if err != nil {
			return "", err
		}
		sb.WriteString(" ELSE " + els)
	}
	sb.WriteString(" END")
	return sb.String(), nil
}

func (r *rewriter) betweenExpr(b *ast.BetweenExpr) (string, error) {
	e, err := r.expr(b.Expr)
	if err != nil {
		return "", err
	}
	low, err := r.expr(b.Low)
	if err != nil {
		return "", err
	}
	high, err := r.expr(b.High)
	if err != nil {
		return "", err
	}
	not := ""
	if b.Not {
		not = "NOT "
	}
	return fmt.Sprintf("(%s %sBETWEEN %s AND %s)", e, not, low, high), nil
}

func (r *rewriter) inExpr(in *ast.InExpr) (string, error) {
	e, err := r.expr(in.Expr)
	if err != nil {
		return "", err
	}
	not := ""
	if in.Not {
		not = "NOT "
	}
	if in.Subquery != nil {
		sub, err := r.selectStatement(in.Subquery)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %sIN (%s))", e, not, sub), nil
	}
	list, err := r.exprList(in.List)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %sIN (%s))", e, not, strings.Join(list, ", ")), nil
}

func (r *rewriter) existsExpr(ex *ast.ExistsExpr) (string, error) {
	sub, err := r.selectStatement(ex.Subquery)
	if err != nil {
		return "", err
	}
	not := ""
	if ex.Not {
		not = "NOT "
	}
	return fmt.Sprintf("(%sEXISTS (%s))", not, sub), nil
}

func (r *rewriter) isNullExpr(in *ast.IsNullExpr) (string, error) {
	e, err := r.expr(in.Expr)
	if err != nil {
		return "", err
	}
	if in.Not {
		return fmt.Sprintf("(%s IS NOT NULL)", e), nil
	}
	return fmt.Sprintf("(%s IS NULL)", e), nil
}

// cursorAttributeExpr rewrites cursor%FOUND/%NOTFOUND/%ROWCOUNT/%ISOPEN. The
// implicit SQL cursor's attributes map onto PL/pgSQL's built-in FOUND/
// ROW_COUNT; explicit cursors need a tracking variable the procedural
// rewriter (C9) injects once MarkCursorAttrUsed flips this cursor's flag.
func (r *rewriter) cursorAttributeExpr(ca *ast.CursorAttributeExpr) (string, error) {
	r.ctx.MarkCursorAttrUsed(ca.Cursor)
	implicit := metadata.Canonicalize(ca.Cursor) == "sql"
	switch strings.ToUpper(ca.Attr) {
	case "FOUND":
		if implicit {
			return "FOUND", nil
		}
		return cursorTrackingVar(ca.Cursor) + "_found", nil
	case "NOTFOUND":
		if implicit {
			return "(NOT FOUND)", nil
		}
		return "(NOT " + cursorTrackingVar(ca.Cursor) + "_found)", nil
	case "ROWCOUNT":
		if implicit {
			return "ROW_COUNT", nil
		}
		return cursorTrackingVar(ca.Cursor) + "_rowcount", nil
	case "ISOPEN":
		return cursorTrackingVar(ca.Cursor) + "_isopen", nil
	default:
		return "", semanticViolation(ca, fmt.Sprintf("unknown cursor attribute %%%s", ca.Attr))
	}
}

func cursorTrackingVar(cursor string) string {
	return "__" + metadata.Canonicalize(cursor)
}

// sequenceExpr rewrites seq.NEXTVAL/CURRVAL to PostgreSQL's
// nextval/currval('seq') function form (§4.7).
func (r *rewriter) sequenceExpr(s *ast.SequencePseudoColumnExpr) (string, error) {
	name := r.qualifyName(s.Sequence)
	fn := "nextval"
	if strings.ToUpper(s.Which) == "CURRVAL" {
		fn = "currval"
	}
	return fmt.Sprintf("%s('%s')", fn, name), nil
}

// fieldAccessExpr rewrites a record-field read against an inline RECORD
// type (jsonb under the hood) as a ->> extraction; an unrecognized dotted
// read gets the same ->> extraction with a MetadataMiss.
func (r *rewriter) fieldAccessExpr(f *ast.FieldAccessExpr) (string, error) {
	id, ok := f.Target.(*ast.Identifier)
	if !ok {
		target, err := r.expr(f.Target)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s->>'%s')", target, strings.ToLower(f.Field)), nil
	}
	if v, ok := r.ctx.LookupVar(id.Value); ok && v.InlineType != nil {
		if r.ctx.InAssignmentTarget() {
			// Only reached under WithAssignmentTarget; hand back the bare
			// path components for the caller to wrap in jsonb_set().
			return fmt.Sprintf("%s,'{%s}'", strings.ToLower(id.Value), strings.ToLower(f.Field)), nil
		}
		nested := v.InlineType.FieldNamed(f.Field)
		if nested != nil && nested.Nested != nil {
			return fmt.Sprintf("(%s->'%s')", strings.ToLower(id.Value), strings.ToLower(f.Field)), nil
		}
		return fmt.Sprintf("(%s->>'%s')", strings.ToLower(id.Value), strings.ToLower(f.Field)), nil
	}
	r.metadataMiss(f, fmt.Sprintf("%s.%s not resolved against a known inline type, emitted as a jsonb ->> field read", id.Value, f.Field))
	return fmt.Sprintf("(%s->>'%s')", strings.ToLower(id.Value), strings.ToLower(f.Field)), nil
}

func (r *rewriter) castExpr(c *ast.CastExpr) (string, error) {
	e, err := r.expr(c.Expr)
	if err != nil {
		return "", err
	}
	res := pgtypeConvert(c.DataType)
	return fmt.Sprintf("(%s)::%s", e, res), nil
}

func (r *rewriter) orderByList(items []ast.OrderByItem) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, err := r.orderByItem(it)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// orderByItem applies §4.7's mandatory DESC -> NULLS FIRST rewrite: Oracle
// sorts NULLs last for ASC and first for DESC by default, the opposite of
// PostgreSQL's default, so every DESC without an explicit NULLS clause gets
// one added.
func (r *rewriter) orderByItem(it ast.OrderByItem) (string, error) {
	e, err := r.expr(it.Expr)
	if err != nil {
		return "", err
	}
	dir := ""
	if it.Desc {
		dir = " DESC"
	}
	nulls := ""
	switch {
	case it.NullsFirst != nil && *it.NullsFirst:
		nulls = " NULLS FIRST"
	case it.NullsFirst != nil && !*it.NullsFirst:
		nulls = " NULLS LAST"
	case it.Desc:
		nulls = " NULLS FIRST"
	}
	return e + dir + nulls, nil
}
