// Package pgtype implements the Type Converter (C1): mapping an Oracle
// scalar type reference onto a PostgreSQL type name string. Grounded on
// transpiler/types.go's mapDataType switch table in the teacher, but changed
// from "map to Go type, error on miss" to "map to Postgres type text,
// diagnostic on miss" since C1 must never fail the whole translation over an
// unrecognized or custom type name.
package pgtype

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub008/ast"
)

// Result is the outcome of converting one ast.DataType.
type Result struct {
	PostgresType string
	// Known is false when the Oracle type name wasn't recognized and the
	// PostgresType fallback ("text") was used instead.
	Known bool
}

// Convert maps dt to its PostgreSQL equivalent. It never returns an error:
// unknown names fall back to "text" with Known=false so callers can emit a
// MetadataMiss diagnostic without aborting the translation.
func Convert(dt *ast.DataType) Result {
	if dt == nil {
		return Result{PostgresType: "text", Known: false}
	}
	if dt.IsRowType || dt.IsType {
		// %ROWTYPE/%TYPE resolution belongs to the inline type registry (C2),
		// which calls back into Convert once it has resolved the underlying
		// column/record type. If it reaches here unresolved, surface the
		// inline type's own reference target as a row/composite type name.
		return Result{PostgresType: strings.ToLower(dt.RefTarget) + "_type", Known: false}
	}

	name := strings.ToUpper(strings.TrimSpace(dt.Name))
	switch name {
	case "NUMBER":
		return numberResult(dt)
	case "PLS_INTEGER", "BINARY_INTEGER", "SIMPLE_INTEGER", "INTEGER", "INT":
		return Result{PostgresType: "integer", Known: true}
	case "BINARY_FLOAT":
		return Result{PostgresType: "real", Known: true}
	case "BINARY_DOUBLE", "FLOAT":
		return Result{PostgresType: "double precision", Known: true}
	case "VARCHAR2", "VARCHAR":
		return Result{PostgresType: varcharResult(dt.Length), Known: true}
	case "NVARCHAR2":
		return Result{PostgresType: varcharResult(dt.Length), Known: true}
	case "CHAR", "NCHAR":
		return Result{PostgresType: charResult(dt.Length), Known: true}
	case "CLOB", "NCLOB", "LONG":
		return Result{PostgresType: "text", Known: true}
	case "BLOB", "RAW", "LONG RAW", "BFILE":
		return Result{PostgresType: "bytea", Known: true}
	case "DATE":
		// Oracle DATE always carries a time component; Postgres's DATE does
		// not, so TIMESTAMP is the faithful mapping.
		return Result{PostgresType: "timestamp", Known: true}
	case "TIMESTAMP":
		return Result{PostgresType: "timestamp", Known: true}
	case "TIMESTAMP WITH TIME ZONE":
		return Result{PostgresType: "timestamptz", Known: true}
	case "TIMESTAMP WITH LOCAL TIME ZONE":
		return Result{PostgresType: "timestamptz", Known: true}
	case "BOOLEAN":
		return Result{PostgresType: "boolean", Known: true}
	case "ROWID", "UROWID":
		return Result{PostgresType: "text", Known: true}
	case "XMLTYPE":
		return Result{PostgresType: "xml", Known: true}
	case "JSON":
		return Result{PostgresType: "jsonb", Known: true}
	default:
		return Result{PostgresType: "text", Known: false}
	}
}

func numberResult(dt *ast.DataType) Result {
	switch {
	case dt.Precision == 0 && dt.Scale == 0:
		// Unconstrained NUMBER: Oracle allows arbitrary precision, Postgres's
		// closest match is unconstrained NUMERIC.
		return Result{PostgresType: "numeric", Known: true}
	case dt.Scale == 0 && dt.Precision <= 4:
		return Result{PostgresType: "smallint", Known: true}
	case dt.Scale == 0 && dt.Precision <= 9:
		return Result{PostgresType: "integer", Known: true}
	case dt.Scale == 0 && dt.Precision <= 18:
		return Result{PostgresType: "bigint", Known: true}
	default:
		return Result{PostgresType: fmt.Sprintf("numeric(%d,%d)", dt.Precision, dt.Scale), Known: true}
	}
}

func varcharResult(length int) string {
	if length <= 0 {
		return "text"
	}
	return fmt.Sprintf("varchar(%d)", length)
}

func charResult(length int) string {
	if length <= 0 {
		length = 1
	}
	return fmt.Sprintf("char(%d)", length)
}
