// Package inlinetype implements the Inline Type Registry (C2): tracking
// TYPE ... IS RECORD/TABLE OF/VARRAY/INDEX BY declarations local to a block,
// package, or schema, and resolving %ROWTYPE/%TYPE/field-access references
// against them. Grounded on transpiler/symbols.go's typeInfo/classifyDataType
// shape in the teacher (a type-classification table keyed by declared shape).
package inlinetype

import (
	"strings"

	"github.com/Sayiza/orapgsync-sub008/ast"
)

// Definition is a registered inline type, resolved and ready for the
// rewriter to consult when emitting field access or variable declarations.
type Definition struct {
	Name     string
	Category ast.InlineTypeCategory
	Fields   []*Field // RECORD only
	Element  *ast.DataType
	Limit    int // VARRAY only
}

// Field is one RECORD field, possibly itself a nested inline RECORD.
type Field struct {
	Name     string
	DataType *ast.DataType
	Nested   *Definition
}

// Registry resolves inline type names through a three-level cascade: block,
// package, schema. Each level is a flat name->Definition map; a lookup walks
// block -> package -> schema in that order, matching §4.2's documented
// %ROWTYPE/%TYPE cascade; plain TYPE lookups walk the same cascade.
type Registry struct {
	block   map[string]*Definition
	pkg     map[string]*Definition
	schema  map[string]*Definition
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		block:  map[string]*Definition{},
		pkg:    map[string]*Definition{},
		schema: map[string]*Definition{},
	}
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// RegisterBlock registers a type at block scope (innermost, shadows package/schema).
func (r *Registry) RegisterBlock(def *Definition) { r.block[key(def.Name)] = def }

// RegisterPackage registers a type at package scope.
func (r *Registry) RegisterPackage(def *Definition) { r.pkg[key(def.Name)] = def }

// RegisterSchema registers a type at schema scope (outermost).
func (r *Registry) RegisterSchema(def *Definition) { r.schema[key(def.Name)] = def }

// Resolve looks up name through the block -> package -> schema cascade.
func (r *Registry) Resolve(name string) (*Definition, bool) {
	k := key(name)
	if d, ok := r.block[k]; ok {
		return d, true
	}
	if d, ok := r.pkg[k]; ok {
		return d, true
	}
	if d, ok := r.schema[k]; ok {
		return d, true
	}
	return nil, false
}

// FromAST converts a parsed inline type declaration into a Definition,
// recursively converting nested RECORD fields.
func FromAST(def *ast.InlineTypeDef) *Definition {
	if def == nil {
		return nil
	}
	d := &Definition{
		Name:     def.Name,
		Category: def.Category,
		Element:  def.ElementType,
		Limit:    def.SizeLimit,
	}
	for _, f := range def.Fields {
		field := &Field{Name: f.Name, DataType: f.DataType}
		if f.Nested != nil {
			field.Nested = FromAST(f.Nested)
		}
		d.Fields = append(d.Fields, field)
	}
	return d
}

// FieldNamed returns the field with the given name, or nil.
func (d *Definition) FieldNamed(name string) *Field {
	k := key(name)
	for _, f := range d.Fields {
		if key(f.Name) == k {
			return f
		}
	}
	return nil
}

// Initializer returns the PL/pgSQL literal used to initialize a variable of
// this type, following §3's jsonb/array initializer rule: RECORD types
// initialize to an empty jsonb object, TABLE OF/VARRAY/INDEX BY to an empty
// jsonb array (PL/pgSQL has no native associative-array or nested-record
// type, so both collection and record values are represented as jsonb).
func (d *Definition) Initializer() string {
	switch d.Category {
	case ast.CategoryRecord:
		return "'{}'::jsonb"
	default:
		return "'[]'::jsonb"
	}
}

// PostgresType returns the column/variable type PL/pgSQL declares for a
// value of this inline type. Every category is represented as jsonb because
// there is no structural equivalent of an Oracle PL/SQL RECORD or
// associative array in PL/pgSQL without a matching named composite/table
// type, and inline types by definition have no separately created one.
func (d *Definition) PostgresType() string {
	return "jsonb"
}
