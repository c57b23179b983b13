package txcontext

import "testing"

func TestScopeChainInnermostFirst(t *testing.T) {
	c := New("hr", nil)
	c.RegisterVar(&VarInfo{Name: "v_id"})

	c.PushScope()
	defer c.PopScope()
	c.RegisterVar(&VarInfo{Name: "v_id", Constant: true}) // shadow

	v, ok := c.LookupVar("v_id")
	if !ok || !v.Constant {
		t.Fatalf("expected inner shadow to win, got %+v ok=%v", v, ok)
	}

	c.PopScope()
	v, ok = c.LookupVar("v_id")
	if !ok || v.Constant {
		t.Fatalf("expected outer scope after pop, got %+v ok=%v", v, ok)
	}
	c.PushScope() // keep the deferred PopScope balanced
}

func TestExceptionAutoSQLStateIsStableAndUnique(t *testing.T) {
	c := New("hr", nil)
	c.DeclareException("e1")
	c.DeclareException("e2")

	s1a := c.ExceptionSQLState("e1")
	s1b := c.ExceptionSQLState("e1")
	if s1a != s1b {
		t.Fatalf("expected stable SQLSTATE across calls, got %q then %q", s1a, s1b)
	}

	s2 := c.ExceptionSQLState("e2")
	if s1a == s2 {
		t.Fatalf("expected distinct auto-assigned SQLSTATEs, both got %q", s1a)
	}
}

func TestExceptionLinkedViaPragmaIsNotOverwritten(t *testing.T) {
	c := New("hr", nil)
	c.DeclareException("dup_val_on_index")
	c.LinkException("dup_val_on_index", "P0001")

	if got := c.ExceptionSQLState("dup_val_on_index"); got != "P0001" {
		t.Fatalf("ExceptionSQLState = %q, want linked value P0001", got)
	}
}

func TestCursorAttrTrackingIsIrreversible(t *testing.T) {
	c := New("hr", nil)
	if c.NeedsCursorTracking("c1") {
		t.Fatal("expected tracking off before any %attr use")
	}
	c.MarkCursorAttrUsed("C1")
	if !c.NeedsCursorTracking("c1") {
		t.Fatal("expected tracking on after %attr use, case-insensitively")
	}
}

func TestOuterJoinFrameStack(t *testing.T) {
	c := New("hr", nil)
	if c.CurrentOuterJoinFrame() != nil {
		t.Fatal("expected no frame initially")
	}
	f := c.PushOuterJoinFrame()
	f.OuterSide["b"] = true
	if c.CurrentOuterJoinFrame() != f {
		t.Fatal("expected pushed frame to be current")
	}
	c.PopOuterJoinFrame()
	if c.CurrentOuterJoinFrame() != nil {
		t.Fatal("expected no frame after pop")
	}
}

func TestAssignmentTargetRestoredAfterPanic(t *testing.T) {
	c := New("hr", nil)
	defer func() {
		recover()
		if c.InAssignmentTarget() {
			t.Fatal("expected assignment-target flag restored even after panic")
		}
	}()
	c.WithAssignmentTarget(func() {
		panic("boom")
	})
}
