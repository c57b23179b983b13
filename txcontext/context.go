// Package txcontext implements the Transformation Context (C4): the
// per-translation-unit mutable state threaded through the rewrite — scope
// chain, alias/CTE maps, exception table, cursor-attribute tracking, and the
// outer-join/ROWNUM analyzer stacks — with guaranteed push/pop release on
// every exit path. Grounded on transpiler/symbols.go's symbolTable
// parent-chain shape and transpiler/transpiler.go's transpileTryCatch
// defer/recover idiom (the corpus's try/finally analogue) in the teacher.
package txcontext

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub008/ast"
	"github.com/Sayiza/orapgsync-sub008/inlinetype"
	"github.com/Sayiza/orapgsync-sub008/metadata"
)

// VarInfo is one registered variable binding visible in the current scope
// chain.
type VarInfo struct {
	Name       string
	DataType   *ast.DataType
	InlineType *inlinetype.Definition
	Constant   bool
}

// Scope is one link of the variable scope chain, innermost first lookup.
// Mirrors the teacher's symbolTable{variables, parent} shape exactly.
type Scope struct {
	variables map[string]*VarInfo
	parent    *Scope
}

func newScope(parent *Scope) *Scope {
	return &Scope{variables: map[string]*VarInfo{}, parent: parent}
}

// Register adds or shadows a variable in this scope.
func (s *Scope) Register(v *VarInfo) {
	s.variables[metadata.Canonicalize(v.Name)] = v
}

// Lookup walks this scope and its parents, innermost first (§3 invariant).
func (s *Scope) Lookup(name string) (*VarInfo, bool) {
	k := metadata.Canonicalize(name)
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.variables[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// ExceptionState is the per-name state of the exception name -> SQLSTATE
// machine (Undeclared -> Declared -> Linked).
type ExceptionState struct {
	Declared bool
	Linked   bool
	SQLState string
	// AutoAssigned is true when no PRAGMA EXCEPTION_INIT associated this
	// exception with a code, so the core minted a P9xxx SQLSTATE itself.
	AutoAssigned bool
}

// OuterJoinFrame is the outer-join analysis state for one query block,
// pushed before visiting a SELECT's WHERE clause and popped after the block
// is fully rewritten (§3 invariant: one frame per query block, never shared
// across nested subqueries).
type OuterJoinFrame struct {
	// Table alias -> side that carried the (+) marker in this block.
	OuterSide map[string]bool
}

// RownumFrame is the ROWNUM analysis state for one query block.
type RownumFrame struct {
	LimitExpr  ast.Expression
	OffsetExpr ast.Expression
	Detected   bool
}

// Context is the full per-translation-unit mutable state.
type Context struct {
	Schema string
	Idx    *metadata.Indices
	Types  *inlinetype.Registry

	scope *Scope

	aliases map[string]string // table alias -> canonical table name, accumulated over the translation unit
	ctes    map[string]bool   // canonicalized CTE names visible in the current statement

	exceptions map[string]*ExceptionState

	// cursorAttrsUsed records which cursor%attr combinations were seen, since
	// any use at all flips cursor-attribute tracking on for that cursor
	// (§4.9, irreversible once flipped for a translation unit).
	cursorAttrsUsed map[string]bool

	outerJoinStack []*OuterJoinFrame
	rownumStack    []*RownumFrame

	// assignmentTarget is true only inside WithAssignmentTarget, which lets
	// the expression rewriter hand back a bare jsonb path instead of a ->>
	// read. The AssignStmt rewriter does not set it: it sends record-field
	// targets to its own jsonb_set path.
	assignmentTarget bool

	nextAutoSQLState int // counter for minting P9xxx codes
}

// New creates a fresh Context for one translation unit.
func New(schema string, idx *metadata.Indices) *Context {
	if idx == nil {
		idx = metadata.New()
	}
	return &Context{
		Schema:           schema,
		Idx:              idx,
		Types:            inlinetype.New(),
		scope:            newScope(nil),
		aliases:          map[string]string{},
		ctes:             map[string]bool{},
		exceptions:       map[string]*ExceptionState{},
		cursorAttrsUsed:  map[string]bool{},
		nextAutoSQLState: 1,
	}
}

// PushScope enters a new nested scope (BEGIN block, FOR loop body). Callers
// must always pair this with a deferred PopScope immediately, the guaranteed
// -release pattern from design note "Context stacks and guaranteed release".
func (c *Context) PushScope() {
	c.scope = newScope(c.scope)
}

// PopScope exits the current scope, restoring its parent.
func (c *Context) PopScope() {
	if c.scope.parent != nil {
		c.scope = c.scope.parent
	}
}

// RegisterVar declares v in the current (innermost) scope.
func (c *Context) RegisterVar(v *VarInfo) { c.scope.Register(v) }

// LookupVar resolves a variable name through the scope chain.
func (c *Context) LookupVar(name string) (*VarInfo, bool) { return c.scope.Lookup(name) }

// RegisterAlias records alias -> table for the current query block.
func (c *Context) RegisterAlias(alias, table string) {
	c.aliases[metadata.Canonicalize(alias)] = metadata.Canonicalize(table)
}

// ResolveAlias returns the table an alias refers to.
func (c *Context) ResolveAlias(alias string) (string, bool) {
	t, ok := c.aliases[metadata.Canonicalize(alias)]
	return t, ok
}

// ClearAliases resets the alias map. The rewriter does not call it, so
// aliases registered in one query block stay resolvable in later ones.
func (c *Context) ClearAliases() { c.aliases = map[string]string{} }

// RegisterCTE marks name as a visible CTE for the current statement.
func (c *Context) RegisterCTE(name string) { c.ctes[metadata.Canonicalize(name)] = true }

// IsCTE reports whether name is a registered CTE.
func (c *Context) IsCTE(name string) bool { return c.ctes[metadata.Canonicalize(name)] }

// PushOuterJoinFrame begins outer-join analysis for one query block.
func (c *Context) PushOuterJoinFrame() *OuterJoinFrame {
	f := &OuterJoinFrame{OuterSide: map[string]bool{}}
	c.outerJoinStack = append(c.outerJoinStack, f)
	return f
}

// PopOuterJoinFrame ends outer-join analysis for the current query block.
func (c *Context) PopOuterJoinFrame() {
	if n := len(c.outerJoinStack); n > 0 {
		c.outerJoinStack = c.outerJoinStack[:n-1]
	}
}

// CurrentOuterJoinFrame returns the innermost active frame, or nil.
func (c *Context) CurrentOuterJoinFrame() *OuterJoinFrame {
	if n := len(c.outerJoinStack); n > 0 {
		return c.outerJoinStack[n-1]
	}
	return nil
}

// PushRownumFrame begins ROWNUM analysis for one query block.
func (c *Context) PushRownumFrame() *RownumFrame {
	f := &RownumFrame{}
	c.rownumStack = append(c.rownumStack, f)
	return f
}

// PopRownumFrame ends ROWNUM analysis for the current query block.
func (c *Context) PopRownumFrame() {
	if n := len(c.rownumStack); n > 0 {
		c.rownumStack = c.rownumStack[:n-1]
	}
}

// CurrentRownumFrame returns the innermost active frame, or nil.
func (c *Context) CurrentRownumFrame() *RownumFrame {
	if n := len(c.rownumStack); n > 0 {
		return c.rownumStack[n-1]
	}
	return nil
}

// DeclareException transitions name from Undeclared to Declared.
func (c *Context) DeclareException(name string) {
	c.exceptions[metadata.Canonicalize(name)] = &ExceptionState{Declared: true}
}

// LinkException attaches an explicit SQLSTATE to a declared exception
// (PRAGMA EXCEPTION_INIT), per §4.9's 'P' + lpad(NN,4,'0') formula applied
// by the caller before calling this.
func (c *Context) LinkException(name, sqlstate string) {
	st, ok := c.exceptions[metadata.Canonicalize(name)]
	if !ok {
		st = &ExceptionState{Declared: true}
		c.exceptions[metadata.Canonicalize(name)] = st
	}
	st.Linked = true
	st.SQLState = sqlstate
}

// ExceptionSQLState resolves name to a SQLSTATE, auto-minting a P9xxx code
// on first use if the exception was declared but never linked via PRAGMA
// EXCEPTION_INIT.
func (c *Context) ExceptionSQLState(name string) string {
	k := metadata.Canonicalize(name)
	st, ok := c.exceptions[k]
	if !ok {
		st = &ExceptionState{Declared: true}
		c.exceptions[k] = st
	}
	if !st.Linked {
		st.Linked = true
		st.AutoAssigned = true
		st.SQLState = autoSQLState(c.nextAutoSQLState)
		c.nextAutoSQLState++
	}
	return st.SQLState
}

// autoSQLState mints a custom SQLSTATE for an exception that was declared
// but never linked via PRAGMA EXCEPTION_INIT, using the P9xxx range so it
// can never collide with an explicit 'P' + lpad(NN,4,'0') mapping (the
// rewriter links only PRAGMA codes -20000..-20999, which map to P0000..P0999).
func autoSQLState(n int) string {
	return fmt.Sprintf("P9%03d", n%1000)
}

// MarkCursorAttrUsed records that cursor%attr was referenced; once true for
// a cursor it stays true for the rest of the translation unit (§4.9).
func (c *Context) MarkCursorAttrUsed(cursor string) {
	c.cursorAttrsUsed[metadata.Canonicalize(cursor)] = true
}

// NeedsCursorTracking reports whether cursor requires an explicit tracking
// variable in the emitted PL/pgSQL.
func (c *Context) NeedsCursorTracking(cursor string) bool {
	return c.cursorAttrsUsed[metadata.Canonicalize(cursor)]
}

// WithAssignmentTarget runs fn with the assignment-target flag set, always
// restoring the previous value afterward even if fn panics.
func (c *Context) WithAssignmentTarget(fn func()) {
	prev := c.assignmentTarget
	c.assignmentTarget = true
	defer func() { c.assignmentTarget = prev }()
	fn()
}

// InAssignmentTarget reports whether the rewriter is currently inside the
// left-hand side of an assignment.
func (c *Context) InAssignmentTarget() bool { return c.assignmentTarget }

// IsDateLike is the type evaluator (Open Question 1, spec.md §9): a
// heuristic, best-effort walker in the shape of the teacher's own inferType
// (transpiler/expressions.go), narrowed to the one question the function
// rewrite table needs answered — does this expression evaluate to a
// date/timestamp? It consults declared variable types and the column
// catalog and never errors, defaulting to false on anything it can't
// resolve rather than attempting a full type system.
func (c *Context) IsDateLike(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.Identifier:
		if vi, ok := c.LookupVar(v.Value); ok {
			return isDateDataType(vi.DataType)
		}
	case *ast.QualifiedIdentifier:
		if len(v.Parts) == 2 {
			alias, col := v.Parts[0].Value, v.Parts[1].Value
			table, ok := c.ResolveAlias(alias)
			if !ok {
				table = alias
			}
			if ct, ok := c.Idx.ColumnTypeOf(c.Schema, table, col); ok {
				return isDateTypeName(ct.DataType)
			}
		}
	case *ast.FunctionCall:
		if id, ok := v.Function.(*ast.Identifier); ok {
			switch strings.ToUpper(id.Value) {
			case "SYSDATE", "SYSTIMESTAMP", "TO_DATE", "TO_TIMESTAMP", "LAST_DAY", "ADD_MONTHS":
				return true
			}
		}
	case *ast.CastExpr:
		return isDateDataType(v.DataType)
	}
	return false
}

func isDateDataType(dt *ast.DataType) bool {
	if dt == nil {
		return false
	}
	return isDateTypeName(dt.Name)
}

func isDateTypeName(name string) bool {
	switch strings.ToUpper(name) {
	case "DATE", "TIMESTAMP", "TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITH LOCAL TIME ZONE":
		return true
	default:
		return false
	}
}
