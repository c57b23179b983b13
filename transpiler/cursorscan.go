package transpiler

import "github.com/Sayiza/orapgsync-sub008/ast"

// scanCursorAttrUsage pre-walks a block's statements for cursor%attr
// references and flips cursor-attribute tracking on in the context before
// writeBlockBody emits the DECLARE section. Needed because the tracking
// variables (Universal Property #8) have to appear in DECLARE, but the flag
// that says whether a given cursor needs them is only discovered while
// walking the BEGIN...END body that comes after it — mirroring how the
// outer-join/ROWNUM analyzers pre-pass a WHERE clause before the rest of a
// query block is rewritten.
func (r *rewriter) scanCursorAttrUsage(stmts []ast.Statement) {
	for _, s := range stmts {
		r.scanStmtForCursorAttrs(s)
	}
}

func (r *rewriter) scanStmtForCursorAttrs(s ast.Statement) {
	switch v := s.(type) {
	case *ast.Block:
		r.scanCursorAttrUsage(v.Statements)
		if v.Exceptions != nil {
			for _, h := range v.Exceptions.Handlers {
				r.scanBlockBodyForCursorAttrs(h.Body)
			}
		}
	case *ast.AssignStmt:
		r.scanExprForCursorAttrs(v.Target)
		r.scanExprForCursorAttrs(v.Value)
	case *ast.IfStmt:
		r.scanExprForCursorAttrs(v.Condition)
		r.scanBlockBodyForCursorAttrs(v.Then)
		for _, ei := range v.ElsIfs {
			r.scanExprForCursorAttrs(ei.Condition)
			r.scanBlockBodyForCursorAttrs(ei.Then)
		}
		r.scanBlockBodyForCursorAttrs(v.Else)
	case *ast.CaseStmt:
		r.scanExprForCursorAttrs(v.Operand)
		for _, wc := range v.Whens {
			r.scanExprForCursorAttrs(wc.Condition)
			r.scanBlockBodyForCursorAttrs(wc.Then)
		}
		r.scanBlockBodyForCursorAttrs(v.Else)
	case *ast.NumericForLoopStmt:
		r.scanExprForCursorAttrs(v.Low)
		r.scanExprForCursorAttrs(v.High)
		r.scanBlockBodyForCursorAttrs(v.Body)
	case *ast.CursorForLoopStmt:
		r.scanSelectForCursorAttrs(v.Select)
		r.scanBlockBodyForCursorAttrs(v.Body)
	case *ast.NamedCursorForLoopStmt:
		r.scanBlockBodyForCursorAttrs(v.Body)
	case *ast.WhileStmt:
		r.scanExprForCursorAttrs(v.Condition)
		r.scanBlockBodyForCursorAttrs(v.Body)
	case *ast.BasicLoopStmt:
		r.scanBlockBodyForCursorAttrs(v.Body)
	case *ast.ExitStmt:
		r.scanExprForCursorAttrs(v.When)
	case *ast.ContinueStmt:
		r.scanExprForCursorAttrs(v.When)
	case *ast.OpenStmt:
		for _, a := range v.Args {
			r.scanExprForCursorAttrs(a)
		}
	case *ast.FetchStmt:
		for _, e := range v.Into {
			r.scanExprForCursorAttrs(e)
		}
	case *ast.RaiseApplicationErrorStmt:
		r.scanExprForCursorAttrs(v.Code)
		r.scanExprForCursorAttrs(v.Message)
	case *ast.CallStmt:
		for _, a := range v.Args {
			r.scanExprForCursorAttrs(a)
		}
	case *ast.SelectIntoStmt:
		r.scanSelectForCursorAttrs(v.Select)
		for _, e := range v.Into {
			r.scanExprForCursorAttrs(e)
		}
	case *ast.ReturnStmt:
		r.scanExprForCursorAttrs(v.Value)
	case *ast.InsertStatement:
		for _, e := range v.Values {
			r.scanExprForCursorAttrs(e)
		}
		r.scanSelectForCursorAttrs(v.Select)
	case *ast.UpdateStatement:
		for _, sc := range v.SetClauses {
			r.scanExprForCursorAttrs(sc.Value)
		}
		r.scanExprForCursorAttrs(v.Where)
	case *ast.DeleteStatement:
		r.scanExprForCursorAttrs(v.Where)
	case *ast.ForAllStmt:
		r.scanExprForCursorAttrs(v.Low)
		r.scanExprForCursorAttrs(v.High)
		r.scanStmtForCursorAttrs(v.Body)
	case *ast.ExecuteImmediateStmt:
		for _, e := range v.Using {
			r.scanExprForCursorAttrs(e)
		}
		for _, e := range v.Into {
			r.scanExprForCursorAttrs(e)
		}
	}
}

func (r *rewriter) scanBlockBodyForCursorAttrs(b *ast.Block) {
	if b == nil {
		return
	}
	r.scanCursorAttrUsage(b.Statements)
	if b.Exceptions != nil {
		for _, h := range b.Exceptions.Handlers {
			r.scanBlockBodyForCursorAttrs(h.Body)
		}
	}
}

func (r *rewriter) scanSelectForCursorAttrs(sel *ast.SelectStatement) {
	if sel == nil {
		return
	}
	for _, item := range sel.Columns {
		r.scanExprForCursorAttrs(item.Expr)
	}
	r.scanExprForCursorAttrs(sel.Where)
	r.scanExprForCursorAttrs(sel.Having)
}

func (r *rewriter) scanExprForCursorAttrs(e ast.Expression) {
	switch v := e.(type) {
	case nil:
	case *ast.CursorAttributeExpr:
		r.ctx.MarkCursorAttrUsed(v.Cursor)
	case *ast.BinaryExpr:
		r.scanExprForCursorAttrs(v.Left)
		r.scanExprForCursorAttrs(v.Right)
	case *ast.UnaryExpr:
		r.scanExprForCursorAttrs(v.Operand)
	case *ast.OuterJoinExpr:
		r.scanExprForCursorAttrs(v.Operand)
	case *ast.FunctionCall:
		for _, a := range v.Args {
			r.scanExprForCursorAttrs(a)
		}
	case *ast.DotCallExpr:
		for _, a := range v.Args {
			r.scanExprForCursorAttrs(a)
		}
	case *ast.CaseExpr:
		r.scanExprForCursorAttrs(v.Operand)
		for _, wc := range v.WhenClauses {
			r.scanExprForCursorAttrs(wc.Condition)
			r.scanExprForCursorAttrs(wc.Result)
		}
		r.scanExprForCursorAttrs(v.Else)
	case *ast.BetweenExpr:
		r.scanExprForCursorAttrs(v.Expr)
		r.scanExprForCursorAttrs(v.Low)
		r.scanExprForCursorAttrs(v.High)
	case *ast.InExpr:
		r.scanExprForCursorAttrs(v.Expr)
		for _, e := range v.List {
			r.scanExprForCursorAttrs(e)
		}
		r.scanSelectForCursorAttrs(v.Subquery)
	case *ast.ExistsExpr:
		r.scanSelectForCursorAttrs(v.Subquery)
	case *ast.SubqueryExpr:
		r.scanSelectForCursorAttrs(v.Select)
	case *ast.SelectStatement:
		r.scanSelectForCursorAttrs(v)
	case *ast.IsNullExpr:
		r.scanExprForCursorAttrs(v.Expr)
	case *ast.FieldAccessExpr:
		r.scanExprForCursorAttrs(v.Target)
	case *ast.CastExpr:
		r.scanExprForCursorAttrs(v.Expr)
	}
}
