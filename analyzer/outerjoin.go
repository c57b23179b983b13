// Package analyzer implements the two pre-pass analyzers that run before the
// main rewrite of a query block: the Outer-Join Analyzer (C5), which turns
// Oracle's "(+)" marker syntax into an ANSI join plan, and the ROWNUM
// Analyzer (C6), which turns ROWNUM comparisons into a LIMIT (OFFSET-style
// ROWNUM shapes are flagged unsupported).
// Outer-join detection has no grounding example in the retrieval pack (no
// example repo speaks Oracle's (+) syntax); it follows §4.5's documented
// algorithm directly. The ROWNUM-to-LIMIT output shape is grounded on
// other_examples/axfor-aproxy's ast_visitor.go: visitLimit, which performs
// the analogous MySQL LIMIT-clause reordering into Postgres LIMIT/OFFSET.
package analyzer

import "github.com/Sayiza/orapgsync-sub008/ast"

// JoinPlan is one ANSI join the outer-join analyzer derived from a "(+)"
// marked predicate.
type JoinPlan struct {
	LeftAlias  string
	RightAlias string
	Condition  ast.Expression // the equality with OuterJoinExpr markers stripped
	JoinType   string         // always "LEFT"; a marker on the left operand swaps the aliases instead
}

// OuterJoinResult is the outcome of analyzing one query block's WHERE clause.
type OuterJoinResult struct {
	Joins          []JoinPlan
	RemainingWhere ast.Expression // WHERE predicates that were not outer-join markers
	// Ambiguous lists predicates the analyzer recognized as carrying a "(+)"
	// marker but could not resolve to a single clean two-table join (e.g. a
	// marker on a non-column operand); these are left
	// in RemainingWhere verbatim and reported so the caller can emit a
	// MetadataMiss/UnsupportedConstruct diagnostic instead of silently
	// mistranslating.
	Ambiguous []ast.Expression
}

// AnalyzeOuterJoins walks the top-level AND chain of where, extracting every
// predicate of the form "a.col = b.col(+)" (or with the marker on the left)
// into a JoinPlan. Predicates with no marker pass through untouched.
func AnalyzeOuterJoins(where ast.Expression) OuterJoinResult {
	var result OuterJoinResult
	conjuncts := splitConjuncts(where)
	var kept []ast.Expression

	for _, cond := range conjuncts {
		plan, ok := extractJoinPlan(cond)
		if !ok {
			kept = append(kept, cond)
			continue
		}
		if plan == nil {
			// Recognized a marker but couldn't classify it cleanly.
			result.Ambiguous = append(result.Ambiguous, cond)
			kept = append(kept, cond)
			continue
		}
		result.Joins = append(result.Joins, *plan)
	}

	result.RemainingWhere = joinConjuncts(kept)
	return result
}

// splitConjuncts flattens a right-leaning AND tree into its leaves.
func splitConjuncts(e ast.Expression) []ast.Expression {
	if e == nil {
		return nil
	}
	if bin, ok := e.(*ast.BinaryExpr); ok && bin.Op == "AND" {
		return append(splitConjuncts(bin.Left), splitConjuncts(bin.Right)...)
	}
	return []ast.Expression{e}
}

// joinConjuncts rebuilds an AND tree from leaves, nil if there are none.
func joinConjuncts(exprs []ast.Expression) ast.Expression {
	if len(exprs) == 0 {
		return nil
	}
	result := exprs[0]
	for _, e := range exprs[1:] {
		result = &ast.BinaryExpr{Op: "AND", Left: result, Right: e}
	}
	return result
}

// extractJoinPlan inspects one predicate. ok=false means "no marker, leave
// as a normal WHERE predicate". ok=true, plan=nil means "has a marker but
// isn't a clean equality the analyzer can turn into a join".
func extractJoinPlan(cond ast.Expression) (plan *JoinPlan, ok bool) {
	bin, isBin := cond.(*ast.BinaryExpr)
	if !isBin || bin.Op != "=" {
		if containsOuterJoinMarker(cond) {
			return nil, true
		}
		return nil, false
	}

	leftMarked, leftField := unwrapMarker(bin.Left)
	rightMarked, rightField := unwrapMarker(bin.Right)

	if !leftMarked && !rightMarked {
		return nil, false
	}
	if leftMarked && rightMarked {
		// Both sides marked is not valid Oracle syntax for a two-table join;
		// leave it ambiguous rather than guess.
		return nil, true
	}

	leftAlias, leftOK := qualifierOf(leftField)
	rightAlias, rightOK := qualifierOf(rightField)
	if !leftOK || !rightOK {
		return nil, true
	}

	// The side WITHOUT the marker is preserved (kept even with no match);
	// the marked side is the outer, nullable side. "a.x = b.y(+)" means
	// "keep every row of a, left join to b".
	unmarkedAlias, markedAlias := leftAlias, rightAlias
	if leftMarked {
		unmarkedAlias, markedAlias = rightAlias, leftAlias
	}

	return &JoinPlan{
		LeftAlias:  unmarkedAlias,
		RightAlias: markedAlias,
		Condition:  &ast.BinaryExpr{Op: "=", Left: leftField, Right: rightField},
		JoinType:   "LEFT",
	}, true
}

func containsOuterJoinMarker(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.OuterJoinExpr:
		return true
	case *ast.BinaryExpr:
		return containsOuterJoinMarker(v.Left) || containsOuterJoinMarker(v.Right)
	case *ast.UnaryExpr:
		return containsOuterJoinMarker(v.Operand)
	default:
		return false
	}
}

func unwrapMarker(e ast.Expression) (marked bool, inner ast.Expression) {
	if oj, ok := e.(*ast.OuterJoinExpr); ok {
		return true, oj.Operand
	}
	return false, e
}

// qualifierOf returns the table alias of a qualified column reference.
func qualifierOf(e ast.Expression) (string, bool) {
	switch v := e.(type) {
	case *ast.QualifiedIdentifier:
		if len(v.Parts) >= 2 {
			return v.Parts[len(v.Parts)-2].Value, true
		}
		return "", false
	case *ast.FieldAccessExpr:
		if id, ok := v.Target.(*ast.Identifier); ok {
			return id.Value, true
		}
		return "", false
	default:
		return "", false
	}
}
