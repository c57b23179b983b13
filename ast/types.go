package ast

// DataType is a scalar type reference: a built-in Oracle type name with
// optional precision/scale/length, or a reference to a user/package type.
type DataType struct {
	Position
	Name      string // e.g. "NUMBER", "VARCHAR2", "DATE", or a custom type name
	Precision int    // 0 if unspecified
	Scale     int
	Length    int
	IsRowType bool   // NAME%ROWTYPE
	IsType    bool   // NAME%TYPE
	RefTarget string // the identifier %ROWTYPE/%TYPE is attached to
}

// InlineTypeCategory enumerates the PL/SQL inline type shapes of §3/C2.
type InlineTypeCategory string

const (
	CategoryRecord  InlineTypeCategory = "RECORD"
	CategoryTableOf InlineTypeCategory = "TABLE_OF"
	CategoryVarray  InlineTypeCategory = "VARRAY"
	CategoryIndexBy InlineTypeCategory = "INDEX_BY"
)

// InlineTypeDef is a TYPE ... IS RECORD/TABLE OF/VARRAY/INDEX BY declaration.
type InlineTypeDef struct {
	Position
	Name         string
	Category     InlineTypeCategory
	Fields       []*RecordField // RECORD only
	ElementType  *DataType      // TABLE_OF / VARRAY / INDEX_BY element type
	SizeLimit    int            // VARRAY only, 0 = unbounded
	IndexKeyType *DataType      // INDEX_BY only (PLS_INTEGER or VARCHAR2)
}

// RecordField is one field of an inline RECORD type.
type RecordField struct {
	Position
	Name     string
	DataType *DataType
	Nested   *InlineTypeDef // set when the field's type is itself an inline RECORD
}
