package inlinetype

import (
	"testing"

	"github.com/Sayiza/orapgsync-sub008/ast"
)

func TestResolveCascadeBlockShadowsPackageAndSchema(t *testing.T) {
	r := New()
	r.RegisterSchema(&Definition{Name: "EMP_REC", Category: ast.CategoryRecord})
	r.RegisterPackage(&Definition{Name: "EMP_REC", Category: ast.CategoryTableOf})
	r.RegisterBlock(&Definition{Name: "EMP_REC", Category: ast.CategoryVarray})

	d, ok := r.Resolve("emp_rec")
	if !ok {
		t.Fatal("expected resolution")
	}
	if d.Category != ast.CategoryVarray {
		t.Fatalf("expected block-scope definition to win, got category %v", d.Category)
	}
}

func TestResolveFallsThroughToSchema(t *testing.T) {
	r := New()
	r.RegisterSchema(&Definition{Name: "ADDR_REC", Category: ast.CategoryRecord})

	d, ok := r.Resolve("ADDR_REC")
	if !ok || d.Category != ast.CategoryRecord {
		t.Fatalf("expected schema-scope fallback, got %+v ok=%v", d, ok)
	}
}

func TestResolveMiss(t *testing.T) {
	r := New()
	if _, ok := r.Resolve("nope"); ok {
		t.Fatal("expected miss")
	}
}

func TestInitializerByCategory(t *testing.T) {
	rec := &Definition{Category: ast.CategoryRecord}
	if got := rec.Initializer(); got != "'{}'::jsonb" {
		t.Fatalf("record initializer = %q", got)
	}
	tbl := &Definition{Category: ast.CategoryTableOf}
	if got := tbl.Initializer(); got != "'[]'::jsonb" {
		t.Fatalf("table of initializer = %q", got)
	}
}

func TestFromASTConvertsNestedRecordFields(t *testing.T) {
	def := &ast.InlineTypeDef{
		Name:     "OUTER_REC",
		Category: ast.CategoryRecord,
		Fields: []*ast.RecordField{
			{Name: "ID", DataType: &ast.DataType{Name: "NUMBER"}},
			{Name: "ADDR", Nested: &ast.InlineTypeDef{
				Name:     "ADDR_REC",
				Category: ast.CategoryRecord,
				Fields:   []*ast.RecordField{{Name: "CITY", DataType: &ast.DataType{Name: "VARCHAR2", Length: 50}}},
			}},
		},
	}
	got := FromAST(def)
	addr := got.FieldNamed("addr")
	if addr == nil || addr.Nested == nil {
		t.Fatal("expected nested record field to carry a Nested definition")
	}
	if addr.Nested.FieldNamed("city") == nil {
		t.Fatal("expected nested definition to expose its own fields")
	}
}
