package transpiler

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub008/ast"
	"github.com/Sayiza/orapgsync-sub008/inlinetype"
	"github.com/Sayiza/orapgsync-sub008/txcontext"
)

// indentWriter accumulates PL/pgSQL procedural source with simple two-space
// indentation, the analogue of the teacher's transpiler.output
// strings.Builder + indent counter in transpiler/transpiler.go.
type indentWriter struct {
	sb     strings.Builder
	indent int
}

func (w *indentWriter) line(format string, args ...interface{}) {
	w.sb.WriteString(strings.Repeat("  ", w.indent))
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteString("\n")
}

func (w *indentWriter) raw(s string) { w.sb.WriteString(s) }

// createProcedure emits a CREATE OR REPLACE FUNCTION ... RETURNS void AS $$
// ... $$ body; the RETURNS clause is left out when the procedure has OUT or
// INOUT parameters, so PostgreSQL derives the result from them.
// Grounded on the teacher's transpileCreateProcedure (output-params-as-
// named-returns, guaranteed context push/pop around the body).
func (r *rewriter) createProcedure(proc *ast.CreateProcedureStatement) (string, error) {
	r.ctx.PushScope()
	defer r.ctx.PopScope()

	params, err := r.paramList(proc.Parameters)
	if err != nil {
		return "", err
	}

	w := &indentWriter{}
	w.line("CREATE OR REPLACE FUNCTION %s(%s)", strings.ToLower(proc.Name.String()), params)
	hasOut := false
	for _, p := range proc.Parameters {
		if p.Mode == ast.ParamOut || p.Mode == ast.ParamInOut {
			hasOut = true
		}
	}
	if !hasOut {
		w.line("RETURNS void")
	}
	w.line("LANGUAGE plpgsql")
	w.line("AS $$")
	if err := r.writeBlockBody(w, proc.Body); err != nil {
		return "", err
	}
	w.line("$$;")
	return w.sb.String(), nil
}

// createFunction emits a CREATE OR REPLACE FUNCTION ... RETURNS type.
func (r *rewriter) createFunction(fn *ast.CreateFunctionStatement) (string, error) {
	r.ctx.PushScope()
	defer r.ctx.PopScope()

	params, err := r.paramList(fn.Parameters)
	if err != nil {
		return "", err
	}
	retType := r.resolveDataType(fn.ReturnType, fn)

	w := &indentWriter{}
	w.line("CREATE OR REPLACE FUNCTION %s(%s)", strings.ToLower(fn.Name.String()), params)
	w.line("RETURNS %s", retType)
	w.line("LANGUAGE plpgsql")
	w.line("AS $$")
	if err := r.writeBlockBody(w, fn.Body); err != nil {
		return "", err
	}
	w.line("$$;")
	return w.sb.String(), nil
}

func (r *rewriter) paramList(params []*ast.ParamDef) (string, error) {
	var parts []string
	for _, p := range params {
		r.ctx.RegisterVar(&txcontext.VarInfo{Name: p.Name, DataType: p.DataType})
		mode := "IN"
		switch p.Mode {
		case ast.ParamOut:
			mode = "OUT"
		case ast.ParamInOut:
			mode = "INOUT"
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", mode, strings.ToLower(p.Name), r.resolveDataType(p.DataType, p.DataType)))
	}
	return strings.Join(parts, ", "), nil
}

// writeBlockBody emits a block's DECLARE section (if any), BEGIN, body
// statements, EXCEPTION handlers (if any), and END, with guaranteed scope
// release even if a statement rewrite returns an error partway through.
func (r *rewriter) writeBlockBody(w *indentWriter, b *ast.Block) error {
	r.ctx.PushScope()
	defer r.ctx.PopScope()

	r.scanCursorAttrUsage(b.Statements)
	if b.Exceptions != nil {
		for _, h := range b.Exceptions.Handlers {
			r.scanBlockBodyForCursorAttrs(h.Body)
		}
	}

	if len(b.Declarations) > 0 {
		w.line("DECLARE")
		w.indent++
		for _, d := range b.Declarations {
			if err := r.declaration(w, d); err != nil {
				return err
			}
		}
		w.indent--
	}
	w.line("BEGIN")
	w.indent++
	for _, s := range b.Statements {
		if err := r.statement(w, s); err != nil {
			return err
		}
	}
	w.indent--
	if b.Exceptions != nil {
		w.line("EXCEPTION")
		w.indent++
		for _, h := range b.Exceptions.Handlers {
			if err := r.exceptionHandler(w, h); err != nil {
				return err
			}
		}
		w.indent--
	}
	w.line("END")
	return nil
}

func (r *rewriter) declaration(w *indentWriter, d ast.Statement) error {
	switch v := d.(type) {
	case *ast.VarDecl:
		return r.varDecl(w, v)
	case *ast.TypeDeclStmt:
		r.registerInlineTypeDecl(v.Def)
		return nil
	case *ast.CursorDeclStmt:
		return r.cursorDecl(w, v)
	case *ast.ExceptionDeclStmt:
		r.ctx.DeclareException(v.Name)
		return nil
	case *ast.PragmaExceptionInitStmt:
		if v.Code > -20000 || v.Code < -20999 {
			r.metadataMiss(v, fmt.Sprintf("PRAGMA EXCEPTION_INIT code %d for %s is outside -20000..-20999 and was not linked", v.Code, v.Name))
			return nil
		}
		r.ctx.LinkException(v.Name, pragmaSQLState(v.Code))
		return nil
	case *ast.PragmaAutonomousTransactionStmt:
		r.metadataMiss(v, "PRAGMA AUTONOMOUS_TRANSACTION has no PostgreSQL equivalent and was dropped")
		return nil
	default:
		return transformationBug(d, fmt.Sprintf("unhandled declaration type %T", d))
	}
}

func (r *rewriter) varDecl(w *indentWriter, v *ast.VarDecl) error {
	var typeName string
	var registered *inlinetype.Definition
	if v.InlineType != nil {
		r.registerInlineTypeDecl(v.InlineType)
		registered, _ = r.ctx.Types.Resolve(v.InlineType.Name)
		typeName = "jsonb"
	} else {
		typeName = r.resolveDataType(v.DataType, v)
		if v.DataType != nil {
			registered, _ = r.ctx.Types.Resolve(v.DataType.Name)
		}
	}
	r.ctx.RegisterVar(&txcontext.VarInfo{Name: v.Name, DataType: v.DataType, InlineType: registered, Constant: v.Constant})

	line := strings.ToLower(v.Name)
	if v.Constant {
		line += " CONSTANT"
	}
	line += " " + typeName
	if v.NotNull {
		line += " NOT NULL"
	}
	switch {
	case v.Default != nil:
		def, err := r.expr(v.Default)
		if err != nil {
			return err
		}
		line += " := " + def
	case registered != nil:
		line += " := " + registered.Initializer()
	}
	w.line("%s;", line)
	return nil
}

func (r *rewriter) cursorDecl(w *indentWriter, c *ast.CursorDeclStmt) error {
	sel, err := r.selectStatement(c.Select)
	if err != nil {
		return err
	}
	var params []string
	for _, p := range c.Params {
		params = append(params, strings.ToLower(p.Name)+" "+r.resolveDataType(p.DataType, p.DataType))
	}
	w.line("%s CURSOR%s FOR %s;", strings.ToLower(c.Name), paramsClause(params), sel)
	if r.ctx.NeedsCursorTracking(c.Name) {
		tv := cursorTrackingVar(c.Name)
		w.line("%s_found boolean;", tv)
		w.line("%s_rowcount integer := 0;", tv)
		w.line("%s_isopen boolean := FALSE;", tv)
	}
	return nil
}

func paramsClause(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "(" + strings.Join(params, ", ") + ")"
}

// statement is the Procedural Rewriter's (C9) dispatch over every
// ast.Statement procedural kind, grounded on the teacher's
// transpileStatement switch in transpiler/transpiler.go.
func (r *rewriter) statement(w *indentWriter, s ast.Statement) error {
	switch v := s.(type) {
	case *ast.Block:
		return r.writeBlockBody(w, v)
	case *ast.AssignStmt:
		return r.assignStmt(w, v)
	case *ast.IfStmt:
		return r.ifStmt(w, v)
	case *ast.CaseStmt:
		return r.caseStmt(w, v)
	case *ast.NumericForLoopStmt:
		return r.numericForLoop(w, v)
	case *ast.CursorForLoopStmt:
		return r.cursorForLoop(w, v)
	case *ast.NamedCursorForLoopStmt:
		return unsupported(v, "FOR ... IN named_cursor LOOP", "rewrite to a cursor-for-select-loop or add its declared SELECT inline")
	case *ast.WhileStmt:
		return r.whileStmt(w, v)
	case *ast.BasicLoopStmt:
		return r.basicLoopStmt(w, v)
	case *ast.ExitStmt:
		return r.exitStmt(w, v)
	case *ast.ContinueStmt:
		return r.continueStmt(w, v)
	case *ast.NullStmt:
		w.line("NULL;")
		return nil
	case *ast.OpenStmt:
		return r.openStmt(w, v)
	case *ast.FetchStmt:
		return r.fetchStmt(w, v)
	case *ast.CloseStmt:
		return r.closeStmt(w, v)
	case *ast.RaiseStmt:
		return r.raiseStmt(w, v)
	case *ast.RaiseApplicationErrorStmt:
		return r.raiseApplicationErrorStmt(w, v)
	case *ast.CallStmt:
		return r.callStmt(w, v)
	case *ast.SelectIntoStmt:
		return r.selectIntoStmt(w, v)
	case *ast.ReturnStmt:
		return r.returnStmt(w, v)
	case *ast.InsertStatement:
		sql, err := r.insertStatement(v)
		if err != nil {
			return err
		}
		w.line("%s;", sql)
		return nil
	case *ast.UpdateStatement:
		sql, err := r.updateStatement(v)
		if err != nil {
			return err
		}
		w.line("%s;", sql)
		return nil
	case *ast.DeleteStatement:
		sql, err := r.deleteStatement(v)
		if err != nil {
			return err
		}
		w.line("%s;", sql)
		return nil
	case *ast.ForAllStmt:
		return unsupported(v, "FORALL", "rewrite as an explicit loop or a set-based UPDATE/INSERT ... SELECT")
	case *ast.ExecuteImmediateStmt:
		return unsupported(v, "EXECUTE IMMEDIATE", "dynamic SQL strings are out of scope; rewrite the call site to call a known procedure directly")
	default:
		return transformationBug(s, fmt.Sprintf("unhandled statement type %T", s))
	}
}

func (r *rewriter) assignStmt(w *indentWriter, a *ast.AssignStmt) error {
	if field, ok := a.Target.(*ast.FieldAccessExpr); ok {
		return r.assignFieldTarget(w, field, a.Value)
	}
	target, err := r.expr(a.Target)
	if err != nil {
		return err
	}
	val, err := r.expr(a.Value)
	if err != nil {
		return err
	}
	w.line("%s := %s;", target, val)
	return nil
}

// assignFieldTarget rewrites "rec.field := value;" against a jsonb-backed
// inline RECORD as a jsonb_set() re-assignment of the whole variable, since
// PL/pgSQL's jsonb type has no in-place mutation syntax.
func (r *rewriter) assignFieldTarget(w *indentWriter, field *ast.FieldAccessExpr, value ast.Expression) error {
	id, ok := field.Target.(*ast.Identifier)
	if !ok {
		return semanticViolation(field, "assignment target must be a simple record field reference")
	}
	val, err := r.expr(value)
	if err != nil {
		return err
	}
	varName := strings.ToLower(id.Value)
	w.line("%s := jsonb_set(%s, '{%s}', to_jsonb(%s));", varName, varName, strings.ToLower(field.Field), val)
	return nil
}

func (r *rewriter) ifStmt(w *indentWriter, s *ast.IfStmt) error {
	cond, err := r.expr(s.Condition)
	if err != nil {
		return err
	}
	w.line("IF %s THEN", cond)
	w.indent++
	if err := r.statementsIn(w, s.Then); err != nil {
		return err
	}
	w.indent--
	for _, ei := range s.ElsIfs {
		c, err := r.expr(ei.Condition)
		if err != nil {
			return err
		}
		w.line("ELSIF %s THEN", c)
		w.indent++
		if err := r.statementsIn(w, ei.Then); err != nil {
			return err
		}
		w.indent--
	}
	if s.Else != nil {
		w.line("ELSE")
		w.indent++
		if err := r.statementsIn(w, s.Else); err != nil {
			return err
		}
		w.indent--
	}
	w.line("END IF;")
	return nil
}

// statementsIn emits a block's statements inline, without its own
// BEGIN/END/DECLARE wrapper (used for IF/CASE/loop bodies, which in
// PL/pgSQL are plain statement lists, not nested blocks).
func (r *rewriter) statementsIn(w *indentWriter, b *ast.Block) error {
	if len(b.Declarations) > 0 || b.Exceptions != nil {
		return r.writeBlockBody(w, b)
	}
	r.ctx.PushScope()
	defer r.ctx.PopScope()
	for _, s := range b.Statements {
		if err := r.statement(w, s); err != nil {
			return err
		}
	}
	return nil
}

// caseStmt emits the procedural CASE form, ending END CASE (not END),
// per §4.7's requirement that statement-CASE and expression-CASE be
// distinguished since Go (the teacher's target) has no CASE statement at
// all but PL/pgSQL needs the distinct terminator.
func (r *rewriter) caseStmt(w *indentWriter, c *ast.CaseStmt) error {
	w.line("CASE")
	w.indent++
	if c.Operand != nil {
		op, err := r.expr(c.Operand)
		if err != nil {
			return err
		}
		w.sb.Truncate(w.sb.Len() - 1) // drop the trailing newline from "CASE"
		w.raw(" " + op + "\n")
	}
	for _, wc := range c.Whens {
		cond, err := r.expr(wc.Condition)
		if err != nil {
			return err
		}
		w.line("WHEN %s THEN", cond)
		w.indent++
		if err := r.statementsIn(w, wc.Then); err != nil {
			return err
		}
		w.indent--
	}
	if c.Else != nil {
		w.line("ELSE")
		w.indent++
		if err := r.statementsIn(w, c.Else); err != nil {
			return err
		}
		w.indent--
	}
	w.indent--
	w.line("END CASE;")
	return nil
}

func (r *rewriter) numericForLoop(w *indentWriter, f *ast.NumericForLoopStmt) error {
	low, err := r.expr(f.Low)
	if err != nil {
		return err
	}
	high, err := r.expr(f.High)
	if err != nil {
		return err
	}
	r.ctx.PushScope()
	defer r.ctx.PopScope()
	r.ctx.RegisterVar(&txcontext.VarInfo{Name: f.Var, DataType: &ast.DataType{Name: "PLS_INTEGER"}})

	reverse := ""
	if f.Reverse {
		reverse = "REVERSE "
	}
	w.line("FOR %s IN %s%s..%s LOOP", strings.ToLower(f.Var), reverse, low, high)
	w.indent++
	if err := r.statementsIn(w, f.Body); err != nil {
		return err
	}
	w.indent--
	w.line("END LOOP;")
	return nil
}

func (r *rewriter) cursorForLoop(w *indentWriter, f *ast.CursorForLoopStmt) error {
	sel, err := r.selectStatement(f.Select)
	if err != nil {
		return err
	}
	r.ctx.PushScope()
	defer r.ctx.PopScope()
	r.ctx.RegisterVar(&txcontext.VarInfo{Name: f.RecordVar})

	w.line("FOR %s IN %s LOOP", strings.ToLower(f.RecordVar), sel)
	w.indent++
	if err := r.statementsIn(w, f.Body); err != nil {
		return err
	}
	w.indent--
	w.line("END LOOP;")
	return nil
}

func (r *rewriter) whileStmt(w *indentWriter, s *ast.WhileStmt) error {
	cond, err := r.expr(s.Condition)
	if err != nil {
		return err
	}
	w.line("WHILE %s LOOP", cond)
	w.indent++
	if err := r.statementsIn(w, s.Body); err != nil {
		return err
	}
	w.indent--
	w.line("END LOOP;")
	return nil
}

func (r *rewriter) basicLoopStmt(w *indentWriter, s *ast.BasicLoopStmt) error {
	w.line("LOOP")
	w.indent++
	if err := r.statementsIn(w, s.Body); err != nil {
		return err
	}
	w.indent--
	w.line("END LOOP;")
	return nil
}

func (r *rewriter) exitStmt(w *indentWriter, s *ast.ExitStmt) error {
	if s.When != nil {
		cond, err := r.expr(s.When)
		if err != nil {
			return err
		}
		w.line("EXIT WHEN %s;", cond)
		return nil
	}
	w.line("EXIT;")
	return nil
}

func (r *rewriter) continueStmt(w *indentWriter, s *ast.ContinueStmt) error {
	if s.When != nil {
		cond, err := r.expr(s.When)
		if err != nil {
			return err
		}
		w.line("CONTINUE WHEN %s;", cond)
		return nil
	}
	w.line("CONTINUE;")
	return nil
}

func (r *rewriter) openStmt(w *indentWriter, s *ast.OpenStmt) error {
	args, err := r.exprList(s.Args)
	if err != nil {
		return err
	}
	w.line("OPEN %s%s;", strings.ToLower(s.Cursor), paramsClause(args))
	if r.ctx.NeedsCursorTracking(s.Cursor) {
		w.line("%s_isopen := TRUE;", cursorTrackingVar(s.Cursor))
	}
	return nil
}

func (r *rewriter) fetchStmt(w *indentWriter, s *ast.FetchStmt) error {
	if s.BulkCollect {
		return unsupported(s, "FETCH BULK COLLECT INTO", "rewrite as a cursor-for-loop accumulating into an array")
	}
	into, err := r.exprList(s.Into)
	if err != nil {
		return err
	}
	w.line("FETCH %s INTO %s;", strings.ToLower(s.Cursor), strings.Join(into, ", "))
	if r.ctx.NeedsCursorTracking(s.Cursor) {
		tv := cursorTrackingVar(s.Cursor)
		w.line("%s_found := FOUND;", tv)
		w.line("%s_rowcount := %s_rowcount + CASE WHEN FOUND THEN 1 ELSE 0 END;", tv, tv)
	}
	return nil
}

func (r *rewriter) closeStmt(w *indentWriter, s *ast.CloseStmt) error {
	w.line("CLOSE %s;", strings.ToLower(s.Cursor))
	if r.ctx.NeedsCursorTracking(s.Cursor) {
		w.line("%s_isopen := FALSE;", cursorTrackingVar(s.Cursor))
	}
	return nil
}

// raiseStmt maps RAISE/RAISE exception_name to PL/pgSQL's two RAISE forms
// (§4.9): a standard Oracle exception raises its PostgreSQL condition name
// directly, while a user-declared exception raises via its linked SQLSTATE
// with no message literal.
func (r *rewriter) raiseStmt(w *indentWriter, s *ast.RaiseStmt) error {
	if s.Name == "" {
		w.line("RAISE;")
		return nil
	}
	if condition, ok := lookupStandardException(s.Name); ok {
		w.line("RAISE %s;", condition)
		return nil
	}
	w.line("RAISE EXCEPTION USING ERRCODE = '%s';", r.ctx.ExceptionSQLState(s.Name))
	return nil
}

// raiseApplicationErrorStmt maps RAISE_APPLICATION_ERROR(code, message) to
// RAISE EXCEPTION with the code mapped through the PRAGMA formula (§4.9).
func (r *rewriter) raiseApplicationErrorStmt(w *indentWriter, s *ast.RaiseApplicationErrorStmt) error {
	msg, err := r.expr(s.Message)
	if err != nil {
		return err
	}
	if lit, ok := s.Code.(*ast.IntegerLiteral); ok {
		sqlstate := pragmaSQLState(int(lit.Value))
		if _, ok := s.Message.(*ast.StringLiteral); ok {
			w.line("RAISE EXCEPTION %s USING ERRCODE = '%s', HINT = 'Original Oracle error code: %d';", msg, sqlstate, lit.Value)
			return nil
		}
		w.line("RAISE EXCEPTION '%%', %s USING ERRCODE = '%s', HINT = 'Original Oracle error code: %d';", msg, sqlstate, lit.Value)
		return nil
	}
	code, err := r.expr(s.Code)
	if err != nil {
		return err
	}
	w.line("RAISE EXCEPTION '%%', %s USING ERRCODE = orapgsync_pragma_sqlstate(%s);", msg, code)
	return nil
}

func (r *rewriter) exceptionHandler(w *indentWriter, h *ast.ExceptionHandler) error {
	var clauses []string
	hasOthers := false
	for _, name := range h.Names {
		if isOthers(name) {
			hasOthers = true
			continue
		}
		if condition, ok := lookupStandardException(name); ok {
			clauses = append(clauses, condition)
			continue
		}
		clauses = append(clauses, "SQLSTATE '"+r.ctx.ExceptionSQLState(name)+"'")
	}

	if hasOthers {
		w.line("WHEN OTHERS THEN")
	} else {
		w.line("WHEN %s THEN", strings.Join(clauses, " OR "))
	}
	w.indent++
	if err := r.statementsIn(w, h.Body); err != nil {
		return err
	}
	w.indent--
	return nil
}

// callStmt emits a standalone procedure call whose result is discarded as
// PERFORM, not CALL — §4.9's required form, matching PL/pgSQL's own
// restriction that CALL can't appear inside a function/procedure body.
func (r *rewriter) callStmt(w *indentWriter, s *ast.CallStmt) error {
	if dc, ok := s.Target.(*ast.DotCallExpr); ok {
		call, err := r.dotCallExpr(&ast.DotCallExpr{Position: dc.Position, Chain: dc.Chain, Args: s.Args})
		if err != nil {
			return err
		}
		w.line("PERFORM %s;", call)
		return nil
	}
	args, err := r.exprList(s.Args)
	if err != nil {
		return err
	}
	target, err := r.qualifyCallTarget(s.Target)
	if err != nil {
		return err
	}
	w.line("PERFORM %s(%s);", target, strings.Join(args, ", "))
	return nil
}

func (r *rewriter) selectIntoStmt(w *indentWriter, s *ast.SelectIntoStmt) error {
	into, err := r.exprList(s.Into)
	if err != nil {
		return err
	}
	sel, err := r.selectStatementInto(s.Select, strings.Join(into, ", "))
	if err != nil {
		return err
	}
	w.line("%s;", sel)
	return nil
}

func (r *rewriter) returnStmt(w *indentWriter, s *ast.ReturnStmt) error {
	if s.Value == nil {
		w.line("RETURN;")
		return nil
	}
	v, err := r.expr(s.Value)
	if err != nil {
		return err
	}
	w.line("RETURN %s;", v)
	return nil
}
