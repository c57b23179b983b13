package transpiler

import (
	"strings"

	"github.com/Sayiza/orapgsync-sub008/ast"
	"github.com/Sayiza/orapgsync-sub008/inlinetype"
	"github.com/Sayiza/orapgsync-sub008/metadata"
	"github.com/Sayiza/orapgsync-sub008/pgtype"
)

// pgtypeConvert is the package-level convenience wrapper expressions.go
// calls for a bare, diagnostic-free type name (used where the
// caller has no rewriter in scope, e.g. composing a CAST target). Adapted
// from the teacher's mapDataType in the same file: there it erred on an
// unknown name, here C1 never errs (§4.1), it only ever falls back to text.
func pgtypeConvert(dt *ast.DataType) string {
	return pgtype.Convert(dt).PostgresType
}

// resolveDataType is the rewriter-aware form used for variable declarations
// and CREATE FUNCTION return types: it resolves %ROWTYPE/%TYPE/inline types
// through the type registry first, emitting a MetadataMiss when the
// %ROWTYPE/%TYPE reference or the plain scalar type name can't be resolved,
// exactly as §4.1/§4.2 require.
func (r *rewriter) resolveDataType(dt *ast.DataType, node ast.Node) string {
	if dt == nil {
		return "text"
	}
	if dt.IsRowType {
		if def, ok := r.ctx.Types.Resolve(dt.RefTarget); ok {
			return def.PostgresType()
		}
		if def, ok := r.synthesizeRowType(dt.RefTarget); ok {
			r.ctx.Types.RegisterBlock(def)
			return def.PostgresType()
		}
		r.metadataMiss(node, "could not resolve "+dt.RefTarget+"%ROWTYPE against a known inline type or a cataloged table, falling back to jsonb")
		return "jsonb"
	}
	if dt.IsType {
		if def, ok := r.ctx.Types.Resolve(dt.RefTarget); ok {
			return def.PostgresType()
		}
		if pgType, ok := r.resolveColumnType(dt.RefTarget); ok {
			return pgType
		}
		r.metadataMiss(node, "could not resolve "+dt.RefTarget+"%TYPE against a known inline type or a cataloged column, falling back to jsonb")
		return "jsonb"
	}
	if def, ok := r.ctx.Types.Resolve(dt.Name); ok {
		return def.PostgresType()
	}
	res := pgtype.Convert(dt)
	if !res.Known {
		r.metadataMiss(node, "unrecognized Oracle type "+dt.Name+", falling back to "+res.PostgresType)
	}
	return res.PostgresType
}

// registerInlineTypeDecl converts a local TYPE ... IS RECORD/TABLE OF/...
// declaration and registers it at block scope, the cascade's innermost
// level (§3 SUPPLEMENTED FEATURES: three-level resolution cascade).
func (r *rewriter) registerInlineTypeDecl(def *ast.InlineTypeDef) {
	r.ctx.Types.RegisterBlock(inlinetype.FromAST(def))
}

// synthesizeRowType builds a RECORD definition from the column catalog for a
// NAME%ROWTYPE reference that names a real table rather than a declared
// cursor or inline RECORD, consulting the Transformation Indices the way
// resolveDataType's %TYPE fallback consults them for a single column.
func (r *rewriter) synthesizeRowType(ref string) (*inlinetype.Definition, bool) {
	schema, table := r.ctx.Schema, ref
	if parts := strings.SplitN(ref, ".", 2); len(parts) == 2 {
		schema, table = parts[0], parts[1]
	}
	cols, ok := r.ctx.Idx.Columns[metadata.Canonicalize(schema)][metadata.Canonicalize(table)]
	if !ok || len(cols) == 0 {
		return nil, false
	}
	def := &inlinetype.Definition{Name: ref, Category: ast.CategoryRecord}
	for name, ct := range cols {
		def.Fields = append(def.Fields, &inlinetype.Field{
			Name:     name,
			DataType: &ast.DataType{Name: ct.DataType, Precision: ct.Precision, Scale: ct.Scale, Length: ct.Length},
		})
	}
	return def, true
}

// resolveColumnType resolves a table.column (or schema.table.column) %TYPE
// reference against the column catalog, returning the PostgreSQL type the
// column's Oracle type converts to.
func (r *rewriter) resolveColumnType(ref string) (string, bool) {
	parts := strings.Split(ref, ".")
	var schema, table, column string
	switch len(parts) {
	case 2:
		schema, table, column = r.ctx.Schema, parts[0], parts[1]
	case 3:
		schema, table, column = parts[0], parts[1], parts[2]
	default:
		return "", false
	}
	ct, ok := r.ctx.Idx.ColumnTypeOf(schema, table, column)
	if !ok {
		return "", false
	}
	res := pgtype.Convert(&ast.DataType{Name: ct.DataType, Precision: ct.Precision, Scale: ct.Scale, Length: ct.Length})
	return res.PostgresType, true
}
