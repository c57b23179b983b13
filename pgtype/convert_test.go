package pgtype

import (
	"testing"

	"github.com/Sayiza/orapgsync-sub008/ast"
)

func TestConvertNumberPrecisionScale(t *testing.T) {
	cases := []struct {
		name      string
		precision int
		scale     int
		want      string
	}{
		{"unconstrained", 0, 0, "numeric"},
		{"smallint range", 4, 0, "smallint"},
		{"integer range", 9, 0, "integer"},
		{"bigint range", 18, 0, "bigint"},
		{"decimal", 10, 2, "numeric(10,2)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Convert(&ast.DataType{Name: "NUMBER", Precision: c.precision, Scale: c.scale})
			if got.PostgresType != c.want || !got.Known {
				t.Fatalf("Convert(NUMBER(%d,%d)) = %+v, want %q known", c.precision, c.scale, got, c.want)
			}
		})
	}
}

func TestConvertVarchar2WithLength(t *testing.T) {
	got := Convert(&ast.DataType{Name: "VARCHAR2", Length: 100})
	if got.PostgresType != "varchar(100)" || !got.Known {
		t.Fatalf("Convert(VARCHAR2(100)) = %+v", got)
	}
}

func TestConvertDateBecomesTimestamp(t *testing.T) {
	got := Convert(&ast.DataType{Name: "DATE"})
	if got.PostgresType != "timestamp" {
		t.Fatalf("Convert(DATE) = %+v, want timestamp", got)
	}
}

func TestConvertUnknownFallsBackToText(t *testing.T) {
	got := Convert(&ast.DataType{Name: "SOME_CUSTOM_OBJECT_TYPE"})
	if got.Known {
		t.Fatal("expected Known=false for unrecognized type name")
	}
	if got.PostgresType != "text" {
		t.Fatalf("Convert(unknown) = %+v, want text fallback", got)
	}
}

func TestConvertNilDataType(t *testing.T) {
	got := Convert(nil)
	if got.Known || got.PostgresType != "text" {
		t.Fatalf("Convert(nil) = %+v, want text fallback", got)
	}
}
