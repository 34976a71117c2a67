package watchset

import (
	"testing"

	"ugdb/internal/miparser"
)

// fakeExec scripts a fixed sequence of Execute calls, the same style
// internal/completion's engine_test.go uses for its Executor fakes.
type fakeExec struct {
	script []func(op string, opts, params []string) (miparser.Record, error)
	calls  int
}

func (f *fakeExec) Execute(op string, opts, params []string) (miparser.Record, error) {
	fn := f.script[f.calls]
	f.calls++
	return fn(op, opts, params)
}

func strVal(s string) miparser.Value { return miparser.Value{Kind: miparser.ValString, Str: s} }

func mkDone(fields ...miparser.NamedValue) miparser.Record {
	return miparser.Record{Kind: miparser.KindResult, Class: miparser.ClassDone, Results: fields}
}

func TestAdd_CreatesVarObjectAndStoresValue(t *testing.T) {
	exec := &fakeExec{script: []func(string, []string, []string) (miparser.Record, error){
		func(op string, opts, params []string) (miparser.Record, error) {
			if op != "var-create" {
				t.Fatalf("op = %q, want var-create", op)
			}
			if len(params) != 3 || params[1] != "*" || params[2] != "counter" {
				t.Fatalf("params = %v", params)
			}
			return mkDone(
				miparser.NamedValue{Name: "value", Val: strVal("0")},
				miparser.NamedValue{Name: "type", Val: strVal("int")},
			), nil
		},
	}}

	s := NewSet(exec)
	e, err := s.Add("counter")
	if err != nil {
		t.Fatal(err)
	}
	if e.Expr != "counter" || e.Value != "0" || e.Type != "int" || !e.InScope {
		t.Fatalf("entry = %+v", e)
	}
	if len(s.Entries()) != 1 {
		t.Fatalf("Entries() = %v", s.Entries())
	}
}

func TestAdd_PropagatesVarCreateError(t *testing.T) {
	exec := &fakeExec{script: []func(string, []string, []string) (miparser.Record, error){
		func(op string, opts, params []string) (miparser.Record, error) {
			return miparser.Record{
				Kind:  miparser.KindResult,
				Class: miparser.ClassError,
				Results: []miparser.NamedValue{
					{Name: "msg", Val: strVal("No symbol \"nope\" in current context.")},
				},
			}, nil
		},
	}}

	s := NewSet(exec)
	if _, err := s.Add("nope"); err == nil {
		t.Fatal("expected an error for an unresolvable expression")
	}
	if len(s.Entries()) != 0 {
		t.Fatalf("Entries() = %v, want none added on error", s.Entries())
	}
}

func TestRefresh_AppliesChangelist(t *testing.T) {
	var created string
	exec := &fakeExec{script: []func(string, []string, []string) (miparser.Record, error){
		func(op string, opts, params []string) (miparser.Record, error) {
			created = params[0]
			return mkDone(miparser.NamedValue{Name: "value", Val: strVal("1")}), nil
		},
		func(op string, opts, params []string) (miparser.Record, error) {
			if op != "var-update" {
				t.Fatalf("op = %q, want var-update", op)
			}
			if params[0] != created {
				t.Fatalf("var-update target = %q, want %q", params[0], created)
			}
			return mkDone(miparser.NamedValue{Name: "changelist", Val: miparser.Value{
				Kind: miparser.ValArray,
				Arr: []miparser.Value{
					{Kind: miparser.ValMap, Map: []miparser.NamedValue{
						{Name: "name", Val: strVal(created)},
						{Name: "value", Val: strVal("2")},
						{Name: "in_scope", Val: strVal("true")},
					}},
				},
			}}), nil
		},
	}}

	s := NewSet(exec)
	if _, err := s.Add("i"); err != nil {
		t.Fatal(err)
	}
	entries, err := s.Refresh()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Value != "2" || !entries[0].InScope {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestRemove_DeletesVarObjectAndDrops(t *testing.T) {
	var deletedName string
	exec := &fakeExec{script: []func(string, []string, []string) (miparser.Record, error){
		func(op string, opts, params []string) (miparser.Record, error) {
			return mkDone(miparser.NamedValue{Name: "value", Val: strVal("0")}), nil
		},
		func(op string, opts, params []string) (miparser.Record, error) {
			if op != "var-delete" {
				t.Fatalf("op = %q, want var-delete", op)
			}
			deletedName = params[0]
			return mkDone(), nil
		},
	}}

	s := NewSet(exec)
	e, err := s.Add("x")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("x"); err != nil {
		t.Fatal(err)
	}
	if deletedName != e.varName {
		t.Fatalf("deleted %q, want %q", deletedName, e.varName)
	}
	if len(s.Entries()) != 0 {
		t.Fatalf("Entries() = %v, want empty after Remove", s.Entries())
	}
}

func TestRemove_UnknownExpressionErrors(t *testing.T) {
	s := NewSet(&fakeExec{})
	if err := s.Remove("nope"); err == nil {
		t.Fatal("expected an error removing an unwatched expression")
	}
}
