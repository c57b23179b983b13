package transpiler

import (
	"strings"
	"testing"

	"github.com/Sayiza/orapgsync-sub008/ast"
	"github.com/Sayiza/orapgsync-sub008/metadata"
	"github.com/Sayiza/orapgsync-sub008/txcontext"
)

func newSchemaRewriter(schema string, idx *metadata.Indices) *rewriter {
	if idx == nil {
		idx = metadata.New()
	}
	return newRewriter(txcontext.New(schema, idx), nil)
}

func qid(parts ...string) *ast.QualifiedIdentifier {
	var ids []*ast.Identifier
	for _, p := range parts {
		ids = append(ids, &ast.Identifier{Value: p})
	}
	return &ast.QualifiedIdentifier{Parts: ids}
}

func col(alias, name string) *ast.QualifiedIdentifier { return qid(alias, name) }

func intLit(v int64) *ast.IntegerLiteral { return &ast.IntegerLiteral{Value: v} }

func strLit(v string) *ast.StringLiteral { return &ast.StringLiteral{Value: v} }

// TestScenarioS1OuterJoinAndDateFunction exercises the two analyzers that
// run before a query block's main rewrite together: the (+) marker becomes
// an ANSI LEFT JOIN, and an unmarked TRUNC() of a cataloged DATE column gets
// the DATE_TRUNC rewrite (a TRUNC() argument carrying its own (+) marker is
// left in WHERE rather than folded into the JOIN condition — the outer-join
// analyzer only recognizes markers directly on a predicate's two operands).
func TestScenarioS1OuterJoinAndDateFunction(t *testing.T) {
	idx := metadata.New()
	idx.RegisterColumn("hr", "a", "d", metadata.ColumnType{DataType: "DATE"})
	idx.RegisterColumn("hr", "b", "d", metadata.ColumnType{DataType: "DATE"})
	r := newSchemaRewriter("hr", idx)

	trunc := func(alias string) *ast.FunctionCall {
		return &ast.FunctionCall{Function: ident("TRUNC"), Args: []ast.Expression{col(alias, "d")}}
	}

	sel := &ast.SelectStatement{
		Columns: []*ast.SelectItem{{Expr: col("a", "id")}, {Expr: col("b", "val")}},
		From: &ast.FromClause{Tables: []ast.TableRef{
			&ast.BaseTableRef{Name: qid("a")},
			&ast.BaseTableRef{Name: qid("b")},
		}},
		Where: &ast.BinaryExpr{
			Op:    "AND",
			Left:  &ast.BinaryExpr{Op: "=", Left: col("a", "id"), Right: &ast.OuterJoinExpr{Operand: col("b", "id")}},
			Right: &ast.BinaryExpr{Op: "=", Left: trunc("a"), Right: trunc("b")},
		},
	}

	out, err := r.selectStatement(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT a.id, b.val FROM hr.a LEFT JOIN hr.b ON a.id = b.id" +
		" WHERE DATE_TRUNC('day', a.d)::date = DATE_TRUNC('day', b.d)::date"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

// TestScenarioS2RownumLimitAndDescNulls covers the ROWNUM<=N -> LIMIT
// rewrite alongside the mandatory DESC -> NULLS FIRST fixup.
func TestScenarioS2RownumLimitAndDescNulls(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	sel := &ast.SelectStatement{
		Columns: []*ast.SelectItem{{Expr: ident("empno")}},
		From:    &ast.FromClause{Tables: []ast.TableRef{&ast.BaseTableRef{Name: qid("emp")}}},
		Where: &ast.BinaryExpr{
			Op:   "AND",
			Left: &ast.BinaryExpr{Op: "=", Left: ident("dept"), Right: intLit(10)},
			Right: &ast.BinaryExpr{
				Op:    "<=",
				Left:  ident("ROWNUM"),
				Right: intLit(5),
			},
		},
		OrderBy: []ast.OrderByItem{{Expr: ident("empno"), Desc: true}},
	}

	out, err := r.selectStatement(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT empno FROM hr.emp WHERE dept = 10 ORDER BY empno DESC NULLS FIRST LIMIT 5"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

// TestScenarioS3SequenceAndConcatOverDual covers NEXTVAL/CURRVAL rewriting,
// the mandatory || -> CONCAT rewrite, and the DUAL-omission rule together.
func TestScenarioS3SequenceAndConcatOverDual(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	sel := &ast.SelectStatement{
		Columns: []*ast.SelectItem{
			{Expr: &ast.SequencePseudoColumnExpr{Sequence: qid("seq"), Which: "NEXTVAL"}},
			{Expr: &ast.BinaryExpr{
				Op:    "||",
				Left:  strLit("id="),
				Right: &ast.SequencePseudoColumnExpr{Sequence: qid("seq"), Which: "CURRVAL"},
			}},
		},
		From: &ast.FromClause{Tables: []ast.TableRef{&ast.BaseTableRef{Name: qid("dual")}}},
	}

	out, err := r.selectStatement(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT nextval('hr.seq'), CONCAT('id=', currval('hr.seq'))"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

// TestScenarioS4RaiseApplicationError covers the PRAGMA EXCEPTION_INIT
// SQLSTATE formula applied to a literal RAISE_APPLICATION_ERROR call.
func TestScenarioS4RaiseApplicationError(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	w := &indentWriter{}
	stmt := &ast.RaiseApplicationErrorStmt{Code: intLit(-20055), Message: strLit("bad")}

	if err := r.raiseApplicationErrorStmt(w, stmt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "RAISE EXCEPTION 'bad' USING ERRCODE = 'P0055', HINT = 'Original Oracle error code: -20055';\n"
	if w.sb.String() != want {
		t.Fatalf("got %q, want %q", w.sb.String(), want)
	}
}

// TestScenarioS5InlineRecordFieldAssignment covers an inline RECORD
// declaration's jsonb initializer and a field assignment's jsonb_set rewrite.
func TestScenarioS5InlineRecordFieldAssignment(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	block := &ast.Block{
		Declarations: []ast.Statement{
			&ast.TypeDeclStmt{Def: &ast.InlineTypeDef{
				Name:     "r",
				Category: ast.CategoryRecord,
				Fields: []*ast.RecordField{
					{Name: "x", DataType: &ast.DataType{Name: "NUMBER"}},
					{Name: "y", DataType: &ast.DataType{Name: "VARCHAR2", Length: 10}},
				},
			}},
			&ast.VarDecl{Name: "v", DataType: &ast.DataType{Name: "r"}},
		},
		Statements: []ast.Statement{
			&ast.AssignStmt{Target: &ast.FieldAccessExpr{Target: ident("v"), Field: "x"}, Value: intLit(7)},
		},
	}

	w := &indentWriter{}
	if err := r.writeBlockBody(w, block); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := w.sb.String()
	if !strings.Contains(out, "v jsonb := '{}'::jsonb;") {
		t.Fatalf("expected a jsonb RECORD initializer, got: %s", out)
	}
	if !strings.Contains(out, "v := jsonb_set(v, '{x}', to_jsonb(7));") {
		t.Fatalf("expected a jsonb_set field assignment, got: %s", out)
	}
}

// TestScenarioS6CursorAttributeTracking covers the cursor-attribute-usage
// pre-pass: DECLARE gains tracking variables only because the body below it
// references c%FOUND, and every OPEN/FETCH/CLOSE gets its companion update.
func TestScenarioS6CursorAttributeTracking(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	block := &ast.Block{
		Declarations: []ast.Statement{
			&ast.CursorDeclStmt{Name: "c", Select: &ast.SelectStatement{
				Columns: []*ast.SelectItem{{Expr: ident("id")}},
				From:    &ast.FromClause{Tables: []ast.TableRef{&ast.BaseTableRef{Name: qid("t")}}},
			}},
		},
		Statements: []ast.Statement{
			&ast.OpenStmt{Cursor: "c"},
			&ast.FetchStmt{Cursor: "c", Into: []ast.Expression{ident("r")}},
			&ast.IfStmt{
				Condition: &ast.CursorAttributeExpr{Cursor: "c", Attr: "FOUND"},
				Then:      &ast.Block{Statements: []ast.Statement{&ast.NullStmt{}}},
			},
			&ast.CloseStmt{Cursor: "c"},
		},
	}

	w := &indentWriter{}
	if err := r.writeBlockBody(w, block); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := w.sb.String()
	for _, want := range []string{
		"__c_found boolean;",
		"__c_rowcount integer := 0;",
		"__c_isopen boolean := FALSE;",
		"OPEN c;",
		"__c_isopen := TRUE;",
		"FETCH c INTO r;",
		"__c_found := FOUND;",
		"__c_rowcount := __c_rowcount + CASE WHEN FOUND THEN 1 ELSE 0 END;",
		"IF __c_found THEN",
		"CLOSE c;",
		"__c_isopen := FALSE;",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

// TestScenarioS6CursorWithoutAttributeUseHasNoTrackingVars is Universal
// Property #8's negative half: a cursor never referenced via %FOUND/
// %NOTFOUND/%ROWCOUNT/%ISOPEN gets no tracking declaration or updates.
func TestScenarioS6CursorWithoutAttributeUseHasNoTrackingVars(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	block := &ast.Block{
		Declarations: []ast.Statement{
			&ast.CursorDeclStmt{Name: "c", Select: &ast.SelectStatement{
				Columns: []*ast.SelectItem{{Expr: ident("id")}},
				From:    &ast.FromClause{Tables: []ast.TableRef{&ast.BaseTableRef{Name: qid("t")}}},
			}},
		},
		Statements: []ast.Statement{
			&ast.OpenStmt{Cursor: "c"},
			&ast.FetchStmt{Cursor: "c", Into: []ast.Expression{ident("r")}},
			&ast.CloseStmt{Cursor: "c"},
		},
	}

	w := &indentWriter{}
	if err := r.writeBlockBody(w, block); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := w.sb.String()
	if strings.Contains(out, "__c_found") || strings.Contains(out, "__c_isopen") || strings.Contains(out, "__c_rowcount") {
		t.Fatalf("expected no tracking variables for an attribute-free cursor, got:\n%s", out)
	}
}

// TestPropertyDeterministicRewrite is Universal Property #1: rewriting the
// same tree twice produces byte-identical output.
func TestPropertyDeterministicRewrite(t *testing.T) {
	build := func() *ast.SelectStatement {
		return &ast.SelectStatement{
			Columns: []*ast.SelectItem{{Expr: ident("empno")}, {Expr: ident("ename")}},
			From:    &ast.FromClause{Tables: []ast.TableRef{&ast.BaseTableRef{Name: qid("emp")}}},
			Where:   &ast.BinaryExpr{Op: "=", Left: ident("dept"), Right: intLit(10)},
		}
	}

	r1 := newSchemaRewriter("hr", nil)
	first, err := r1.selectStatement(build())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2 := newSchemaRewriter("hr", nil)
	second, err := r2.selectStatement(build())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected deterministic rewrite, got %q then %q", first, second)
	}
}

// TestPropertyNextvalCurrvalRewriteIsExclusive is Universal Property #3: a
// bare NEXTVAL/CURRVAL dot-chain rewrites to exactly one nextval/currval
// call and nothing else fires on it.
func TestPropertyNextvalCurrvalRewriteIsExclusive(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	for _, tc := range []struct {
		which, want string
	}{
		{"NEXTVAL", "nextval('hr.seq')"},
		{"CURRVAL", "currval('hr.seq')"},
	} {
		out, err := r.expr(&ast.SequencePseudoColumnExpr{Sequence: qid("seq"), Which: tc.which})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.which, out, tc.want)
		}
	}
}

// TestPropertyDescWithoutExplicitNullsGetsNullsFirst is Universal Property
// #4, looped over every DESC ORDER BY item that carries no explicit NULLS
// clause.
func TestPropertyDescWithoutExplicitNullsGetsNullsFirst(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	items := []ast.OrderByItem{
		{Expr: ident("a"), Desc: true},
		{Expr: ident("b"), Desc: true},
		{Expr: ident("c"), Desc: false},
	}
	out, err := r.orderByList(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out[0], "NULLS FIRST") || !strings.Contains(out[1], "NULLS FIRST") {
		t.Fatalf("expected every unqualified DESC item to carry NULLS FIRST, got %v", out)
	}
	if strings.Contains(out[2], "NULLS") {
		t.Fatalf("expected a plain ASC item to carry no NULLS clause, got %v", out)
	}
}

// TestPropertyConcatHasNoBarBar is Universal Property #5, checked over a
// chain of three || operators.
func TestPropertyConcatHasNoBarBar(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	expr := &ast.BinaryExpr{
		Op:   "||",
		Left: &ast.BinaryExpr{Op: "||", Left: strLit("a"), Right: strLit("b")},
		Right: strLit("c"),
	}
	out, err := r.expr(expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "||") {
		t.Fatalf("expected no bare || operator in output, got %q", out)
	}
	if strings.Count(out, "CONCAT(") != 2 {
		t.Fatalf("expected exactly one CONCAT per || operator, got %q", out)
	}
}

// TestPropertyLaterIdentifierResolvesToVariableNotFunctionCall is Universal
// Property #6: once a name is registered as a variable in scope, a bare
// identifier by that name resolves as the variable, not as an unqualified
// function/package-routine call.
func TestPropertyLaterIdentifierResolvesToVariableNotFunctionCall(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	r.ctx.PushScope()
	defer r.ctx.PopScope()
	r.ctx.RegisterVar(&txcontext.VarInfo{Name: "total", DataType: &ast.DataType{Name: "NUMBER"}})

	out, err := r.expr(ident("total"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "total" {
		t.Fatalf("expected the variable name itself with no call parens, got %q", out)
	}
}

// TestPropertySelectIntoAlwaysCarriesIntoStrict is Universal Property #7.
func TestPropertySelectIntoAlwaysCarriesIntoStrict(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	w := &indentWriter{}
	stmt := &ast.SelectIntoStmt{
		Select: &ast.SelectStatement{
			Columns: []*ast.SelectItem{{Expr: ident("empno")}},
			From:    &ast.FromClause{Tables: []ast.TableRef{&ast.BaseTableRef{Name: qid("emp")}}},
		},
		Into: []ast.Expression{ident("v_empno")},
	}
	if err := r.selectIntoStmt(w, stmt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(w.sb.String(), "INTO STRICT v_empno") {
		t.Fatalf("expected INTO STRICT in SELECT INTO output, got: %s", w.sb.String())
	}
}

// TestPropertyExceptionSQLStateIsStableWithinUnit is Universal Property #9:
// looking up the same exception name twice within one translation unit
// always yields the same SQLSTATE.
func TestPropertyExceptionSQLStateIsStableWithinUnit(t *testing.T) {
	r := newSchemaRewriter("hr", nil)
	r.ctx.DeclareException("insufficient_funds")

	first := r.ctx.ExceptionSQLState("insufficient_funds")
	second := r.ctx.ExceptionSQLState("insufficient_funds")
	if first != second {
		t.Fatalf("expected a stable SQLSTATE, got %q then %q", first, second)
	}
}

// TestPropertyPragmaSQLStateFormula is Universal Property #10, looped over
// representative -200NN codes.
func TestPropertyPragmaSQLStateFormula(t *testing.T) {
	for _, tc := range []struct {
		code int
		want string
	}{
		{-20000, "P0000"},
		{-20055, "P0055"},
		{-20999, "P0999"},
		{-20001, "P0001"},
	} {
		if got := pragmaSQLState(tc.code); got != tc.want {
			t.Fatalf("pragmaSQLState(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
