// Package metadata holds the Transformation Indices (C3): the read-only
// catalog of Oracle schema facts the rewriter consults to disambiguate
// otherwise-ambiguous syntax (synonym targets, column types, package
// routines, object-type methods, sequences). An *Indices value is built once
// per run and shared, read-only, across every translation unit — it is
// never mutated after New plus Register*, or LoadYAML, has built it, matching §5's concurrency
// model.
package metadata

import "strings"

// ColumnType describes one table/view column's Oracle type, used by the
// expression type evaluator (txcontext.Context.IsDateLike) and by inline
// %TYPE resolution.
type ColumnType struct {
	DataType  string
	Precision int
	Scale     int
	Length    int
	Nullable  bool
}

// RoutineSignature describes one package-member procedure/function, enough
// to know it exists and how many/which parameters it takes for call-site
// rewriting (schema qualification, argument count checks are left to
// Postgres itself — the core does not validate arity).
type RoutineSignature struct {
	Package    string
	Name       string
	ParamNames []string
	IsFunction bool
}

// Indices is the canonical, lower-cased catalog snapshot.
type Indices struct {
	// Schema -> Table -> Column -> ColumnType.
	Columns map[string]map[string]map[string]ColumnType
	// Canonicalized synonym name -> canonicalized dotted target.
	Synonyms map[string]string
	// Canonicalized "schema.package.routine" -> signature.
	PackageRoutines map[string]RoutineSignature
	// Canonicalized "schema.type.method" -> true (existence only; arity
	// disambiguation is left to PostgreSQL's own overload resolution).
	TypeMethods map[string]bool
	// Canonicalized "schema.sequence" -> true.
	Sequences map[string]bool
}

// New returns an empty Indices ready for incremental registration (used by
// tests and by LoadYAML).
func New() *Indices {
	return &Indices{
		Columns:         map[string]map[string]map[string]ColumnType{},
		Synonyms:        map[string]string{},
		PackageRoutines: map[string]RoutineSignature{},
		TypeMethods:     map[string]bool{},
		Sequences:       map[string]bool{},
	}
}

// Canonicalize lower-cases a name the way every index key is stored,
// matching the teacher's case-fold-on-ingest idiom (transpiler/symbols.go:
// normaliseTypeName).
func Canonicalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RegisterColumn adds one column's type to the catalog.
func (idx *Indices) RegisterColumn(schema, table, column string, ct ColumnType) {
	schema, table, column = Canonicalize(schema), Canonicalize(table), Canonicalize(column)
	if idx.Columns[schema] == nil {
		idx.Columns[schema] = map[string]map[string]ColumnType{}
	}
	if idx.Columns[schema][table] == nil {
		idx.Columns[schema][table] = map[string]ColumnType{}
	}
	idx.Columns[schema][table][column] = ct
}

// ColumnTypeOf looks up a column's Oracle type, ok=false on miss.
func (idx *Indices) ColumnTypeOf(schema, table, column string) (ColumnType, bool) {
	schema, table, column = Canonicalize(schema), Canonicalize(table), Canonicalize(column)
	t, ok := idx.Columns[schema][table]
	if !ok {
		return ColumnType{}, false
	}
	ct, ok := t[column]
	return ct, ok
}

// RegisterSynonym records synonym -> dotted target (schema.object or
// schema.package.object).
func (idx *Indices) RegisterSynonym(synonym, target string) {
	idx.Synonyms[Canonicalize(synonym)] = Canonicalize(target)
}

// ResolveSynonym follows one synonym hop; ok=false if name is not a synonym.
func (idx *Indices) ResolveSynonym(name string) (string, bool) {
	target, ok := idx.Synonyms[Canonicalize(name)]
	return target, ok
}

// RegisterRoutine records a package member procedure/function.
func (idx *Indices) RegisterRoutine(schema, pkg, name string, sig RoutineSignature) {
	key := Canonicalize(schema) + "." + Canonicalize(pkg) + "." + Canonicalize(name)
	idx.PackageRoutines[key] = sig
}

// LookupRoutine checks whether schema.pkg.name is a known package routine.
func (idx *Indices) LookupRoutine(schema, pkg, name string) (RoutineSignature, bool) {
	key := Canonicalize(schema) + "." + Canonicalize(pkg) + "." + Canonicalize(name)
	sig, ok := idx.PackageRoutines[key]
	return sig, ok
}

// RegisterTypeMethod records that schema.typeName has a method with this name.
func (idx *Indices) RegisterTypeMethod(schema, typeName, method string) {
	key := Canonicalize(schema) + "." + Canonicalize(typeName) + "." + Canonicalize(method)
	idx.TypeMethods[key] = true
}

// HasTypeMethod reports whether schema.typeName.method is a known method.
func (idx *Indices) HasTypeMethod(schema, typeName, method string) bool {
	key := Canonicalize(schema) + "." + Canonicalize(typeName) + "." + Canonicalize(method)
	return idx.TypeMethods[key]
}

// RegisterSequence records a known sequence.
func (idx *Indices) RegisterSequence(schema, name string) {
	idx.Sequences[Canonicalize(schema)+"."+Canonicalize(name)] = true
}

// HasSequence reports whether schema.name is a known sequence.
func (idx *Indices) HasSequence(schema, name string) bool {
	return idx.Sequences[Canonicalize(schema)+"."+Canonicalize(name)]
}
