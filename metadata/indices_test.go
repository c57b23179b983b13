package metadata

import "testing"

func TestCanonicalizeFoldsCaseAndTrims(t *testing.T) {
	if got := Canonicalize(" Hr.Employees "); got != "hr.employees" {
		t.Fatalf("Canonicalize = %q, want %q", got, "hr.employees")
	}
}

func TestColumnRegisterLookupCaseInsensitive(t *testing.T) {
	idx := New()
	idx.RegisterColumn("HR", "Employees", "Salary", ColumnType{DataType: "NUMBER", Precision: 8, Scale: 2})

	ct, ok := idx.ColumnTypeOf("hr", "employees", "SALARY")
	if !ok {
		t.Fatal("expected column to be found regardless of case")
	}
	if ct.DataType != "NUMBER" || ct.Precision != 8 || ct.Scale != 2 {
		t.Fatalf("unexpected column type: %+v", ct)
	}

	if _, ok := idx.ColumnTypeOf("hr", "employees", "missing"); ok {
		t.Fatal("expected miss for unregistered column")
	}
}

func TestSynonymResolution(t *testing.T) {
	idx := New()
	idx.RegisterSynonym("EMP", "HR.EMPLOYEES")

	target, ok := idx.ResolveSynonym("emp")
	if !ok || target != "hr.employees" {
		t.Fatalf("ResolveSynonym = (%q, %v), want (hr.employees, true)", target, ok)
	}

	if _, ok := idx.ResolveSynonym("not_a_synonym"); ok {
		t.Fatal("expected miss for non-synonym name")
	}
}

func TestPackageRoutineLookup(t *testing.T) {
	idx := New()
	idx.RegisterRoutine("HR", "EMP_PKG", "RAISE_SALARY", RoutineSignature{
		Package: "EMP_PKG", Name: "RAISE_SALARY", ParamNames: []string{"P_ID", "P_PCT"},
	})

	sig, ok := idx.LookupRoutine("hr", "emp_pkg", "raise_salary")
	if !ok {
		t.Fatal("expected routine to be found")
	}
	if len(sig.ParamNames) != 2 {
		t.Fatalf("unexpected param names: %v", sig.ParamNames)
	}
}

func TestSequenceRegistration(t *testing.T) {
	idx := New()
	idx.RegisterSequence("HR", "EMP_SEQ")
	if !idx.HasSequence("hr", "emp_seq") {
		t.Fatal("expected sequence to be registered")
	}
	if idx.HasSequence("hr", "other_seq") {
		t.Fatal("unexpected sequence match")
	}
}
