package analyzer

import "github.com/Sayiza/orapgsync-sub008/ast"

// RownumResult is the outcome of analyzing one query block's WHERE clause
// for ROWNUM-based pagination.
type RownumResult struct {
	Limit          ast.Expression // nil if no recognized ROWNUM limit found
	RemainingWhere ast.Expression
	// Unsupported is true when a ROWNUM comparison was recognized but its
	// shape requires an OFFSET-producing subquery rewrite this analyzer does
	// not attempt (e.g. "ROWNUM > 10"), per the preserved-behavior note in
	// the design notes: flagged via diagnostic rather than silently wrong.
	Unsupported bool
}

// AnalyzeRownum walks the top-level AND chain of where, extracting a single
// ROWNUM <= N / < N / = 1 predicate into a LIMIT plan.
func AnalyzeRownum(where ast.Expression) RownumResult {
	var result RownumResult
	conjuncts := splitConjuncts(where)
	var kept []ast.Expression

	for _, cond := range conjuncts {
		limit, unsupported, matched := extractRownumLimit(cond)
		switch {
		case matched && limit != nil:
			result.Limit = limit
		case unsupported:
			result.Unsupported = true
			kept = append(kept, cond)
		default:
			kept = append(kept, cond)
		}
	}

	result.RemainingWhere = joinConjuncts(kept)
	return result
}

func isRownum(e ast.Expression) bool {
	id, ok := e.(*ast.Identifier)
	return ok && equalFoldASCII(id.Value, "ROWNUM")
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'a' && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if cb >= 'a' && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// extractRownumLimit recognizes "ROWNUM <op> N" (either operand order).
// matched=true means this predicate was about ROWNUM at all; AnalyzeRownum
// removes it from WHERE only when a LIMIT could be derived (unsupported=false).
func extractRownumLimit(cond ast.Expression) (limit ast.Expression, unsupported bool, matched bool) {
	bin, ok := cond.(*ast.BinaryExpr)
	if !ok {
		return nil, false, false
	}

	leftIsRownum := isRownum(bin.Left)
	rightIsRownum := isRownum(bin.Right)
	if !leftIsRownum && !rightIsRownum {
		return nil, false, false
	}

	op := bin.Op
	bound := bin.Right
	if rightIsRownum {
		// "N <op> ROWNUM" - flip the operator so ROWNUM is always on the left
		// conceptually.
		bound = bin.Left
		op = flipComparison(op)
	}

	switch op {
	case "<=":
		return bound, false, true
	case "=":
		if lit, ok := bound.(*ast.IntegerLiteral); ok && lit.Value == 1 {
			return bound, false, true
		}
		return nil, true, true
	case "<":
		return &ast.BinaryExpr{Op: "-", Left: bound, Right: &ast.IntegerLiteral{Value: 1}}, false, true
	default:
		// ">", ">=", "!=" require an OFFSET-style subquery this analyzer
		// does not produce.
		return nil, true, true
	}
}

func flipComparison(op string) string {
	switch op {
	case "<":
		return ">"
	case ">":
		return "<"
	case "<=":
		return ">="
	case ">=":
		return "<="
	default:
		return op
	}
}
