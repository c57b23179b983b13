package transpiler

import (
	"strings"
	"testing"

	"github.com/Sayiza/orapgsync-sub008/ast"
	"github.com/Sayiza/orapgsync-sub008/metadata"
	"github.com/Sayiza/orapgsync-sub008/txcontext"
)

func newTestRewriter() *rewriter {
	return newRewriter(txcontext.New("public", metadata.New()), nil)
}

func ident(name string) *ast.Identifier { return &ast.Identifier{Value: name} }

// SELECT employee_id, manager_id FROM employees
// START WITH manager_id IS NULL
// CONNECT BY PRIOR employee_id = manager_id
func TestConnectByRewritesToRecursiveCTE(t *testing.T) {
	sel := &ast.SelectStatement{
		Columns: []*ast.SelectItem{
			{Expr: ident("employee_id")},
			{Expr: ident("manager_id")},
		},
		From: &ast.FromClause{Tables: []ast.TableRef{
			&ast.BaseTableRef{Name: &ast.QualifiedIdentifier{Parts: []*ast.Identifier{{Value: "employees"}}}},
		}},
		ConnectBy: &ast.ConnectByClause{
			StartWith: &ast.IsNullExpr{Expr: ident("manager_id")},
			Condition: &ast.BinaryExpr{
				Op:    "=",
				Left:  &ast.UnaryExpr{Op: "PRIOR", Operand: ident("employee_id")},
				Right: ident("manager_id"),
			},
		},
	}

	r := newTestRewriter()
	out, err := r.selectStatement(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "WITH RECURSIVE connect_by_employees AS (") {
		t.Fatalf("expected a WITH RECURSIVE connect_by_employees CTE, got: %s", out)
	}
	if !strings.Contains(out, "employees.manager_id = connect_by_employees.employee_id") {
		t.Fatalf("expected the recursive join to link child manager_id to ancestor employee_id, got: %s", out)
	}
	if !strings.Contains(out, "FROM connect_by_employees") {
		t.Fatalf("expected the final SELECT to read from the CTE, got: %s", out)
	}
}

func TestConnectByRejectsMultiTableFrom(t *testing.T) {
	sel := &ast.SelectStatement{
		Columns: []*ast.SelectItem{{Expr: ident("id")}},
		From: &ast.FromClause{Tables: []ast.TableRef{
			&ast.BaseTableRef{Name: &ast.QualifiedIdentifier{Parts: []*ast.Identifier{{Value: "a"}}}},
			&ast.BaseTableRef{Name: &ast.QualifiedIdentifier{Parts: []*ast.Identifier{{Value: "b"}}}},
		}},
		ConnectBy: &ast.ConnectByClause{
			StartWith: ident("true"),
			Condition: &ast.BinaryExpr{Op: "=", Left: &ast.UnaryExpr{Op: "PRIOR", Operand: ident("id")}, Right: ident("parent_id")},
		},
	}

	r := newTestRewriter()
	if _, err := r.selectStatement(sel); err == nil {
		t.Fatal("expected an unsupported error for a multi-table CONNECT BY")
	}
}
