package ast

// OrderByItem is one ORDER BY term.
type OrderByItem struct {
	Expr       Expression
	Desc       bool
	NullsFirst *bool // nil = unspecified (Oracle default applies)
}

// SelectItem is one projected column or expression, with optional alias.
type SelectItem struct {
	Expr  Expression
	Alias string
	Star  bool // SELECT * or SELECT t.*
}

// TableRef is implemented by every FROM-clause entry.
type TableRef interface {
	Node
	tableRefNode()
}

// BaseTableRef is a plain table/view reference, optionally aliased.
type BaseTableRef struct {
	Position
	Name  *QualifiedIdentifier
	Alias string
}

func (*BaseTableRef) tableRefNode() {}

// SubqueryTableRef is an inline subquery used as a FROM-clause source.
type SubqueryTableRef struct {
	Position
	Select *SelectStatement
	Alias  string
}

func (*SubqueryTableRef) tableRefNode() {}

// ExplicitJoinRef is an already-ANSI JOIN ... ON ... table reference; these
// pass through the rewriter largely unchanged (only function/expr rewrites
// inside ON apply).
type ExplicitJoinRef struct {
	Position
	Left     TableRef
	Right    TableRef
	JoinType string // INNER | LEFT | RIGHT | FULL | CROSS
	On       Expression
}

func (*ExplicitJoinRef) tableRefNode() {}

// CommaTableRef is an old-style comma-separated FROM list entry; the pairing
// of two CommaTableRefs plus an OuterJoinExpr in WHERE is what the outer-join
// analyzer (C5) turns into a JoinPlan, which the FROM rewrite emits as JOIN
// text (no ExplicitJoinRef node is built).
type CommaTableRef = BaseTableRef

// FromClause is the FROM list of a SELECT.
type FromClause struct {
	Position
	Tables []TableRef
}

// ConnectByClause represents Oracle hierarchical query syntax.
type ConnectByClause struct {
	Position
	StartWith Expression
	Condition Expression
	Nocycle   bool
}

// CTE is one entry of a WITH clause.
type CTE struct {
	Position
	Name    string
	Columns []string
	Select  *SelectStatement
}

// WithClause is the WITH ... AS (...) prefix of a query.
type WithClause struct {
	Position
	CTEs []*CTE
}

// SetOperation chains a SELECT to a following UNION/UNION ALL/INTERSECT/MINUS.
type SetOperation struct {
	Position
	Op    string // UNION | UNION_ALL | INTERSECT | MINUS
	Right *SelectStatement
}

// SelectStatement is a full SELECT, including WITH/GROUP BY/ORDER BY/set ops.
type SelectStatement struct {
	Position
	With        *WithClause
	Columns     []*SelectItem
	From        *FromClause
	Where       Expression
	GroupBy     []Expression
	Having      Expression
	ConnectBy   *ConnectByClause
	OrderBy     []OrderByItem
	SetOp       *SetOperation
	RowLimit    Expression // not set by the rewriter; the C6 analyzer returns its LIMIT in RownumResult instead
	ForUpdate   bool
}

func (*SelectStatement) stmtNode() {}
func (*SelectStatement) exprNode() {} // also usable as a scalar/table subquery source

// InsertStatement is INSERT ... VALUES or INSERT ... SELECT.
type InsertStatement struct {
	Position
	Table     *QualifiedIdentifier
	Columns   []string
	Values    []Expression
	Select    *SelectStatement
	Returning []Expression
}

func (*InsertStatement) stmtNode() {}

// SetClause is one column = value pair of an UPDATE.
type SetClause struct {
	Column string
	Value  Expression
}

// UpdateStatement is UPDATE ... SET ... WHERE ....
type UpdateStatement struct {
	Position
	Table      *QualifiedIdentifier
	Alias      string
	SetClauses []*SetClause
	Where      Expression
	Returning  []Expression
}

func (*UpdateStatement) stmtNode() {}

// DeleteStatement is DELETE FROM ... WHERE ....
type DeleteStatement struct {
	Position
	Table     *QualifiedIdentifier
	Alias     string
	Where     Expression
	Returning []Expression
}

func (*DeleteStatement) stmtNode() {}
