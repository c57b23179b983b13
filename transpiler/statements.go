package transpiler

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub008/analyzer"
	"github.com/Sayiza/orapgsync-sub008/ast"
	"github.com/Sayiza/orapgsync-sub008/metadata"
)

// dualTable is Oracle's dummy single-row table; a FROM consisting only of
// DUAL/SYS.DUAL carries no real table and is omitted entirely (§4.8).
const dualTable = "dual"

// qualifyName schema-qualifies a bare (single-part) dotted name with the
// current schema: a name already carrying more than one part is left as-is
// (assumed to name its own schema), a registered CTE is never qualified, and
// otherwise a synonym's target is used before falling back to the current
// schema.
func (r *rewriter) qualifyName(q *ast.QualifiedIdentifier) string {
	if len(q.Parts) > 1 {
		return strings.ToLower(q.String())
	}
	name := q.Last()
	if r.ctx.IsCTE(name) {
		return strings.ToLower(name)
	}
	if target, ok := r.ctx.Idx.ResolveSynonym(name); ok {
		return target
	}
	return metadata.Canonicalize(r.ctx.Schema) + "." + strings.ToLower(name)
}

// isDualOnly reports whether from names nothing but DUAL/SYS.DUAL.
func isDualOnly(from *ast.FromClause) bool {
	if from == nil || len(from.Tables) != 1 {
		return false
	}
	base, ok := from.Tables[0].(*ast.BaseTableRef)
	if !ok || base.Alias != "" {
		return false
	}
	return metadata.Canonicalize(base.Name.Last()) == dualTable
}

// selectStatement is the SQL Statement Rewriter's (C8) SELECT path. It runs
// the two pre-pass analyzers (C5, C6) against the WHERE clause before
// rewriting the rest of the query block, exactly the ordering §4.5/§4.6
// describe ("runs before the main rewrite of a query block").
func (r *rewriter) selectStatement(sel *ast.SelectStatement) (string, error) {
	return r.selectStatementInto(sel, "")
}

// selectStatementInto is selectStatement's full implementation, taking an
// optional INTO STRICT target list that the procedural rewriter's
// SELECT ... INTO needs spliced between the select-list and the FROM clause
// (Universal Property #7) rather than appended after the whole statement.
func (r *rewriter) selectStatementInto(sel *ast.SelectStatement, into string) (string, error) {
	r.ctx.PushOuterJoinFrame()
	defer r.ctx.PopOuterJoinFrame()
	r.ctx.PushRownumFrame()
	defer r.ctx.PopRownumFrame()

	for _, t := range tableRefsOf(sel.From) {
		if base, ok := t.(*ast.BaseTableRef); ok && base.Alias != "" {
			r.ctx.RegisterAlias(base.Alias, base.Name.Last())
		}
	}
	if sel.With != nil {
		for _, cte := range sel.With.CTEs {
			r.ctx.RegisterCTE(cte.Name)
		}
	}

	ojResult := analyzer.AnalyzeOuterJoins(sel.Where)
	for _, amb := range ojResult.Ambiguous {
		r.metadataMiss(sel, fmt.Sprintf("ambiguous outer-join marker in predicate, left as-is: %v", amb))
	}
	rnResult := analyzer.AnalyzeRownum(ojResult.RemainingWhere)
	if rnResult.Unsupported {
		r.metadataMiss(sel, "ROWNUM comparison requires an OFFSET-producing subquery rewrite that is not attempted, left in WHERE")
	}

	if sel.ConnectBy != nil {
		if into != "" {
			return "", unsupported(sel.ConnectBy, "SELECT INTO over a CONNECT BY query", "assign the hierarchical query to a cursor-for-loop instead of a single-row INTO")
		}
		return r.connectByQuery(sel, rnResult)
	}

	var sb strings.Builder
	if sel.With != nil {
		with, err := r.withClause(sel.With)
		if err != nil {
			return "", err
		}
		sb.WriteString(with)
		sb.WriteString(" ")
	}

	sb.WriteString("SELECT ")
	cols, err := r.selectItems(sel.Columns)
	if err != nil {
		return "", err
	}
	sb.WriteString(cols)

	if into != "" {
		sb.WriteString(" INTO STRICT ")
		sb.WriteString(into)
	}

	if sel.From != nil && len(sel.From.Tables) > 0 && !isDualOnly(sel.From) {
		from, err := r.fromClause(sel.From, ojResult.Joins)
		if err != nil {
			return "", err
		}
		sb.WriteString(" FROM ")
		sb.WriteString(from)
	}

	if rnResult.RemainingWhere != nil {
		where, err := r.expr(rnResult.RemainingWhere)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if len(sel.GroupBy) > 0 {
		gb, err := r.exprList(sel.GroupBy)
		if err != nil {
			return "", err
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(gb, ", "))
	}
	if sel.Having != nil {
		having, err := r.expr(sel.Having)
		if err != nil {
			return "", err
		}
		sb.WriteString(" HAVING ")
		sb.WriteString(having)
	}
	if len(sel.OrderBy) > 0 {
		ob, err := r.orderByList(sel.OrderBy)
		if err != nil {
			return "", err
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(ob, ", "))
	}

	if rnResult.Limit != nil {
		limit, err := r.expr(rnResult.Limit)
		if err != nil {
			return "", err
		}
		sb.WriteString(" LIMIT ")
		sb.WriteString(limit)
	}

	if sel.SetOp != nil {
		right, err := r.selectStatement(sel.SetOp.Right)
		if err != nil {
			return "", err
		}
		sb.WriteString(" " + setOpKeyword(sel.SetOp.Op) + " " + right)
	}

	if sel.ForUpdate {
		sb.WriteString(" FOR UPDATE")
	}

	return sb.String(), nil
}

func setOpKeyword(op string) string {
	switch op {
	case "UNION_ALL":
		return "UNION ALL"
	default:
		return op
	}
}

func tableRefsOf(from *ast.FromClause) []ast.TableRef {
	if from == nil {
		return nil
	}
	return from.Tables
}

func (r *rewriter) withClause(w *ast.WithClause) (string, error) {
	var parts []string
	for _, cte := range w.CTEs {
		sel, err := r.selectStatement(cte.Select)
		if err != nil {
			return "", err
		}
		cols := ""
		if len(cte.Columns) > 0 {
			cols = "(" + strings.Join(cte.Columns, ", ") + ")"
		}
		parts = append(parts, fmt.Sprintf("%s%s AS (%s)", strings.ToLower(cte.Name), cols, sel))
	}
	return "WITH " + strings.Join(parts, ", "), nil
}

func (r *rewriter) selectItems(items []*ast.SelectItem) (string, error) {
	var parts []string
	for _, item := range items {
		if item.Star {
			if e, ok := item.Expr.(*ast.Identifier); ok {
				parts = append(parts, strings.ToLower(e.Value)+".*")
			} else {
				parts = append(parts, "*")
			}
			continue
		}
		s, err := r.expr(item.Expr)
		if err != nil {
			return "", err
		}
		if item.Alias != "" {
			s += " AS " + strings.ToLower(item.Alias)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

// joinGroup collects every (+) condition found for one ordered alias pair,
// so they emit as a single JOIN ... ON a AND b instead of one JOIN per
// predicate (which would reference the right-hand table more than once).
type joinGroup struct {
	rightAlias string
	joinType   string
	conditions []ast.Expression
}

// fromClause emits the FROM list, substituting any ANSI joins the outer-join
// analyzer derived for the comma-join tables they replace.
func (r *rewriter) fromClause(from *ast.FromClause, joins []analyzer.JoinPlan) (string, error) {
	joined := map[string]bool{}
	var order []string
	groups := map[string]*joinGroup{}
	for _, j := range joins {
		joined[j.RightAlias] = true
		key := j.LeftAlias + "\x00" + j.RightAlias
		g, ok := groups[key]
		if !ok {
			g = &joinGroup{rightAlias: j.RightAlias, joinType: j.JoinType}
			groups[key] = g
			order = append(order, key)
		}
		g.conditions = append(g.conditions, j.Condition)
	}

	var parts []string
	for _, t := range from.Tables {
		alias := tableAlias(t)
		if joined[alias] {
			continue // emitted as part of a JOIN below instead
		}
		s, err := r.tableRef(t)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	base := strings.Join(parts, ", ")

	for _, key := range order {
		g := groups[key]
		rightTable, ok := findTableByAlias(from, g.rightAlias)
		if !ok {
			continue
		}
		rightSQL, err := r.tableRef(rightTable)
		if err != nil {
			return "", err
		}
		var conds []string
		for _, c := range g.conditions {
			cs, err := r.expr(c)
			if err != nil {
				return "", err
			}
			conds = append(conds, cs)
		}
		base = fmt.Sprintf("%s %s JOIN %s ON %s", base, g.joinType, rightSQL, strings.Join(conds, " AND "))
	}
	return base, nil
}

func tableAlias(t ast.TableRef) string {
	switch v := t.(type) {
	case *ast.BaseTableRef:
		if v.Alias != "" {
			return v.Alias
		}
		return v.Name.Last()
	case *ast.SubqueryTableRef:
		return v.Alias
	default:
		return ""
	}
}

func findTableByAlias(from *ast.FromClause, alias string) (ast.TableRef, bool) {
	for _, t := range from.Tables {
		if tableAlias(t) == alias {
			return t, true
		}
	}
	return nil, false
}

func (r *rewriter) tableRef(t ast.TableRef) (string, error) {
	switch v := t.(type) {
	case *ast.BaseTableRef:
		name := r.qualifyName(v.Name)
		if v.Alias != "" {
			return name + " " + strings.ToLower(v.Alias), nil
		}
		return name, nil
	case *ast.SubqueryTableRef:
		sel, err := r.selectStatement(v.Select)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) %s", sel, strings.ToLower(v.Alias)), nil
	case *ast.ExplicitJoinRef:
		left, err := r.tableRef(v.Left)
		if err != nil {
			return "", err
		}
		right, err := r.tableRef(v.Right)
		if err != nil {
			return "", err
		}
		cond, err := r.expr(v.On)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s JOIN %s ON %s", left, v.JoinType, right, cond), nil
	default:
		return "", transformationBug(t, fmt.Sprintf("unhandled table reference type %T", t))
	}
}

func (r *rewriter) insertStatement(ins *ast.InsertStatement) (string, error) {
	if len(ins.Returning) > 0 {
		return "", unsupported(ins, "RETURNING clause", "RETURNING is out of scope for Phase 1 and must be rewritten by hand")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s", r.qualifyName(ins.Table))
	if len(ins.Columns) > 0 {
		cols := make([]string, len(ins.Columns))
		for i, c := range ins.Columns {
			cols[i] = strings.ToLower(c)
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(cols, ", "))
	}
	if ins.Select != nil {
		sel, err := r.selectStatement(ins.Select)
		if err != nil {
			return "", err
		}
		sb.WriteString(" " + sel)
	} else {
		vals, err := r.exprList(ins.Values)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, " VALUES (%s)", strings.Join(vals, ", "))
	}
	return sb.String(), nil
}

func (r *rewriter) updateStatement(upd *ast.UpdateStatement) (string, error) {
	if len(upd.Returning) > 0 {
		return "", unsupported(upd, "RETURNING clause", "RETURNING is out of scope for Phase 1 and must be rewritten by hand")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s", r.qualifyName(upd.Table))
	if upd.Alias != "" {
		sb.WriteString(" " + strings.ToLower(upd.Alias))
	}
	sb.WriteString(" SET ")
	var sets []string
	for _, sc := range upd.SetClauses {
		v, err := r.expr(sc.Value)
		if err != nil {
			return "", err
		}
		sets = append(sets, strings.ToLower(sc.Column)+" = "+v)
	}
	sb.WriteString(strings.Join(sets, ", "))
	if upd.Where != nil {
		where, err := r.expr(upd.Where)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE " + where)
	}
	return sb.String(), nil
}

func (r *rewriter) deleteStatement(del *ast.DeleteStatement) (string, error) {
	if len(del.Returning) > 0 {
		return "", unsupported(del, "RETURNING clause", "RETURNING is out of scope for Phase 1 and must be rewritten by hand")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "DELETE FROM %s", r.qualifyName(del.Table))
	if del.Alias != "" {
		sb.WriteString(" " + strings.ToLower(del.Alias))
	}
	if del.Where != nil {
		where, err := r.expr(del.Where)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE " + where)
	}
	return sb.String(), nil
}
