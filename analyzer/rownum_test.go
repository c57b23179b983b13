package analyzer

import (
	"testing"

	"github.com/Sayiza/orapgsync-sub008/ast"
)

func rownum() *ast.Identifier { return &ast.Identifier{Value: "ROWNUM"} }

func TestAnalyzeRownumLessEqualBecomesLimit(t *testing.T) {
	where := &ast.BinaryExpr{Op: "<=", Left: rownum(), Right: &ast.IntegerLiteral{Value: 10}}
	result := AnalyzeRownum(where)
	if result.Limit == nil {
		t.Fatal("expected a LIMIT expression")
	}
	lit, ok := result.Limit.(*ast.IntegerLiteral)
	if !ok || lit.Value != 10 {
		t.Fatalf("unexpected limit: %+v", result.Limit)
	}
	if result.RemainingWhere != nil {
		t.Fatalf("expected WHERE fully consumed, got %v", result.RemainingWhere)
	}
}

func TestAnalyzeRownumLessThanSubtractsOne(t *testing.T) {
	where := &ast.BinaryExpr{Op: "<", Left: rownum(), Right: &ast.IntegerLiteral{Value: 10}}
	result := AnalyzeRownum(where)
	bin, ok := result.Limit.(*ast.BinaryExpr)
	if !ok || bin.Op != "-" {
		t.Fatalf("expected a subtraction expr, got %+v", result.Limit)
	}
}

func TestAnalyzeRownumEqualsOne(t *testing.T) {
	where := &ast.BinaryExpr{Op: "=", Left: rownum(), Right: &ast.IntegerLiteral{Value: 1}}
	result := AnalyzeRownum(where)
	if result.Limit == nil || result.Unsupported {
		t.Fatalf("expected ROWNUM = 1 to produce a LIMIT, got %+v", result)
	}
}

func TestAnalyzeRownumGreaterThanIsUnsupported(t *testing.T) {
	where := &ast.BinaryExpr{Op: ">", Left: rownum(), Right: &ast.IntegerLiteral{Value: 10}}
	result := AnalyzeRownum(where)
	if !result.Unsupported {
		t.Fatal("expected ROWNUM > N to be flagged unsupported")
	}
	if result.RemainingWhere == nil {
		t.Fatal("expected the unsupported predicate to remain in WHERE for diagnostic purposes")
	}
}

func TestAnalyzeRownumOperandOrderIsFlippedCorrectly(t *testing.T) {
	// "10 >= ROWNUM" is equivalent to "ROWNUM <= 10"
	where := &ast.BinaryExpr{Op: ">=", Left: &ast.IntegerLiteral{Value: 10}, Right: rownum()}
	result := AnalyzeRownum(where)
	if result.Limit == nil || result.Unsupported {
		t.Fatalf("expected flipped comparison to yield a LIMIT, got %+v", result)
	}
}

func TestAnalyzeRownumLeavesUnrelatedPredicates(t *testing.T) {
	where := &ast.BinaryExpr{Op: "=", Left: &ast.Identifier{Value: "STATUS"}, Right: &ast.StringLiteral{Value: "X"}}
	result := AnalyzeRownum(where)
	if result.Limit != nil {
		t.Fatal("expected no limit for unrelated predicate")
	}
	if result.RemainingWhere == nil {
		t.Fatal("expected predicate preserved")
	}
}
