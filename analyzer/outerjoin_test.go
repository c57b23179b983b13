package analyzer

import (
	"testing"

	"github.com/Sayiza/orapgsync-sub008/ast"
)

func col(alias, name string) *ast.QualifiedIdentifier {
	return &ast.QualifiedIdentifier{Parts: []*ast.Identifier{{Value: alias}, {Value: name}}}
}

func TestAnalyzeOuterJoinsExtractsSimpleEquality(t *testing.T) {
	// a.dept_id = b.dept_id(+)
	where := &ast.BinaryExpr{
		Op:   "=",
		Left: col("a", "dept_id"),
		Right: &ast.OuterJoinExpr{Operand: col("b", "dept_id")},
	}

	result := AnalyzeOuterJoins(where)
	if len(result.Joins) != 1 {
		t.Fatalf("expected one join plan, got %d", len(result.Joins))
	}
	j := result.Joins[0]
	if j.LeftAlias != "a" || j.RightAlias != "b" || j.JoinType != "LEFT" {
		t.Fatalf("unexpected join plan: %+v", j)
	}
	if result.RemainingWhere != nil {
		t.Fatalf("expected no remaining WHERE, got %v", result.RemainingWhere)
	}
}

func TestAnalyzeOuterJoinsKeepsPlainPredicates(t *testing.T) {
	where := &ast.BinaryExpr{Op: "=", Left: col("a", "status"), Right: &ast.StringLiteral{Value: "ACTIVE"}}
	result := AnalyzeOuterJoins(where)
	if len(result.Joins) != 0 {
		t.Fatalf("expected no joins, got %d", len(result.Joins))
	}
	if result.RemainingWhere == nil {
		t.Fatal("expected the predicate to be preserved")
	}
}

func TestAnalyzeOuterJoinsSplitsAndChain(t *testing.T) {
	joinPred := &ast.BinaryExpr{Op: "=", Left: col("a", "dept_id"), Right: &ast.OuterJoinExpr{Operand: col("b", "dept_id")}}
	plainPred := &ast.BinaryExpr{Op: "=", Left: col("a", "status"), Right: &ast.StringLiteral{Value: "ACTIVE"}}
	where := &ast.BinaryExpr{Op: "AND", Left: joinPred, Right: plainPred}

	result := AnalyzeOuterJoins(where)
	if len(result.Joins) != 1 {
		t.Fatalf("expected one join, got %d", len(result.Joins))
	}
	if result.RemainingWhere == nil {
		t.Fatal("expected the plain predicate to remain in WHERE")
	}
}

func TestAnalyzeOuterJoinsBothSidesMarkedIsAmbiguous(t *testing.T) {
	where := &ast.BinaryExpr{
		Op:    "=",
		Left:  &ast.OuterJoinExpr{Operand: col("a", "x")},
		Right: &ast.OuterJoinExpr{Operand: col("b", "y")},
	}
	result := AnalyzeOuterJoins(where)
	if len(result.Joins) != 0 {
		t.Fatalf("expected no clean joins, got %d", len(result.Joins))
	}
	if len(result.Ambiguous) != 1 {
		t.Fatalf("expected one ambiguous predicate, got %d", len(result.Ambiguous))
	}
}
