package ast

import "github.com/shopspring/decimal"

// IntegerLiteral is a plain integer literal, e.g. ROWNUM comparisons.
type IntegerLiteral struct {
	Position
	Value int64
}

func (*IntegerLiteral) exprNode() {}

// NumberLiteral is an Oracle NUMBER literal, kept as an exact decimal so the
// rewrite never loses precision folding it through float64.
type NumberLiteral struct {
	Position
	Value decimal.Decimal
}

func (*NumberLiteral) exprNode() {}

// StringLiteral is a single-quoted Oracle string literal.
type StringLiteral struct {
	Position
	Value string
}

func (*StringLiteral) exprNode() {}

// NullLiteral is the NULL keyword used as an expression.
type NullLiteral struct {
	Position
}

func (*NullLiteral) exprNode() {}

// BinaryExpr is any two-operand operator expression: comparison, arithmetic,
// AND/OR, string concatenation (||), LIKE.
type BinaryExpr struct {
	Position
	Op    string
	Left  Expression
	Right Expression
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr is NOT, unary minus, PRIOR (hierarchical queries).
type UnaryExpr struct {
	Position
	Op      string
	Operand Expression
}

func (*UnaryExpr) exprNode() {}

// OuterJoinExpr wraps an operand that carried Oracle's "(+)" outer-join
// marker, e.g. b.dept_id(+). The analyzer consumes these; after rewriting
// they never survive into the emitted tree.
type OuterJoinExpr struct {
	Position
	Operand Expression
}

func (*OuterJoinExpr) exprNode() {}

// OverClause is a window specification attached to a FunctionCall.
type OverClause struct {
	Position
	PartitionBy []Expression
	OrderBy     []OrderByItem
	Frame       *WindowFrame
}

// WindowFrame is the ROWS/RANGE BETWEEN clause of a window function.
type WindowFrame struct {
	Mode  string // "ROWS" or "RANGE"
	Start string // e.g. "UNBOUNDED PRECEDING", "1 PRECEDING", "CURRENT ROW"
	End   string
}

// FunctionCall is any NAME(args...) call, scalar, aggregate, or window.
type FunctionCall struct {
	Position
	Function Expression // *Identifier or *QualifiedIdentifier
	Args     []Expression
	Distinct bool
	Over     *OverClause
}

func (*FunctionCall) exprNode() {}

// DotCallExpr is a dotted call chain, a.b.c(args), left for the rewriter to
// disambiguate (package routine call vs. object-type method call) using
// metadata, since the parser cannot know which without a symbol table.
type DotCallExpr struct {
	Position
	Chain []*Identifier
	Args  []Expression
}

func (*DotCallExpr) exprNode() {}

// CaseExpr is a CASE used as an expression (simple or searched form).
type CaseExpr struct {
	Position
	Operand     Expression // nil for searched CASE
	WhenClauses []*WhenClause
	Else        Expression
}

func (*CaseExpr) exprNode() {}

type WhenClause struct {
	Position
	Condition Expression
	Result    Expression
}

// BetweenExpr is "expr [NOT] BETWEEN low AND high".
type BetweenExpr struct {
	Position
	Expr Expression
	Low  Expression
	High Expression
	Not  bool
}

func (*BetweenExpr) exprNode() {}

// InExpr is "expr [NOT] IN (list)" or "expr [NOT] IN (subquery)".
type InExpr struct {
	Position
	Expr     Expression
	List     []Expression
	Subquery *SelectStatement
	Not      bool
}

func (*InExpr) exprNode() {}

// ExistsExpr is "[NOT] EXISTS (subquery)".
type ExistsExpr struct {
	Position
	Subquery *SelectStatement
	Not      bool
}

func (*ExistsExpr) exprNode() {}

// SubqueryExpr is a scalar subquery used in an expression position.
type SubqueryExpr struct {
	Position
	Select *SelectStatement
}

func (*SubqueryExpr) exprNode() {}

// IsNullExpr is "expr IS [NOT] NULL".
type IsNullExpr struct {
	Position
	Expr Expression
	Not  bool
}

func (*IsNullExpr) exprNode() {}

// CursorAttributeExpr is cursor%FOUND / %NOTFOUND / %ROWCOUNT / %ISOPEN.
// Cursor == "SQL" denotes the implicit cursor of the last DML statement.
type CursorAttributeExpr struct {
	Position
	Cursor string
	Attr   string // FOUND | NOTFOUND | ROWCOUNT | ISOPEN
}

func (*CursorAttributeExpr) exprNode() {}

// SequencePseudoColumnExpr is seq.NEXTVAL or seq.CURRVAL.
type SequencePseudoColumnExpr struct {
	Position
	Sequence *QualifiedIdentifier
	Which    string // NEXTVAL | CURRVAL
}

func (*SequencePseudoColumnExpr) exprNode() {}

// FieldAccessExpr is a dotted read with no call, record.field or v.n.m, left
// for the rewriter to classify as a record-field read or a package constant.
type FieldAccessExpr struct {
	Position
	Target Expression
	Field  string
}

func (*FieldAccessExpr) exprNode() {}

// CastExpr is CAST(expr AS type).
type CastExpr struct {
	Position
	Expr     Expression
	DataType *DataType
}

func (*CastExpr) exprNode() {}
