package diag

import (
	"os"
	"strings"
	"testing"
)

type recordingSink struct {
	got []Diagnostic
}

func (r *recordingSink) Record(d Diagnostic) { r.got = append(r.got, d) }

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	multi := NewMultiSink(a, b)

	multi.Record(Diagnostic{Kind: "MetadataMiss", Message: "unknown column"})

	if len(a.got) != 1 || len(b.got) != 1 {
		t.Fatalf("expected both sinks to receive the diagnostic, got a=%d b=%d", len(a.got), len(b.got))
	}
}

func TestNopSinkDiscards(t *testing.T) {
	s := NewNopSink()
	s.Record(Diagnostic{Kind: "MetadataMiss"}) // must not panic
}

func TestFileSinkWritesJSONLines(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "diag-*.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	path := tmp.Name()
	tmp.Close()

	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatal(err)
	}
	sink.Record(Diagnostic{UnitID: "u1", Kind: "MetadataMiss", Message: "unknown type FOO"})
	sink.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "MetadataMiss") || !strings.Contains(string(data), "unknown type FOO") {
		t.Fatalf("unexpected file contents: %s", data)
	}
}
