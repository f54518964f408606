package tomldb

import (
	"errors"
	"testing"
)

// reqOf builds a request the short way for resolver tests.
func reqOf(table, key string, vt ValueType, value *Item, remove, modify bool) *Request {
	return &Request{Table: table, Key: key, Type: vt, Value: value, Remove: remove, Modify: modify}
}

func docWith(t *testing.T, input string) *Document {
	t.Helper()
	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("fixture parse failed: %v", err)
	}
	return doc
}

// TestInsertThenExists: inserting a key into an empty table resolves
// Insert; resolving the identical request again resolves Exists.
func TestInsertThenExists(t *testing.T) {
	doc := docWith(t, "[t]\n")
	req := reqOf("t", "k", TypeString, StringItem("v"), false, false)

	kind, ok := resolveAction(doc, req)
	if !ok || kind != ActionInsert {
		t.Fatalf("first resolution = %s, %v, want insert", kind, ok)
	}
	if err := applyAction(doc, Action{Kind: kind, Req: req}, nil); err != nil {
		t.Fatal(err)
	}

	kind, ok = resolveAction(doc, req)
	if !ok || kind != ActionExists {
		t.Fatalf("second resolution = %s, %v, want exists", kind, ok)
	}
}

// TestTypeMismatchIsStable: once a key holds a float, a string-typed
// request resolves to a type-mismatch rejection in every flag branch.
func TestTypeMismatchIsStable(t *testing.T) {
	doc := docWith(t, "[t]\nk = 1.5\n")

	branches := []struct {
		name           string
		remove, modify bool
	}{
		{"plain", false, false},
		{"modify", false, true},
		{"remove", true, false},
		{"force", true, true},
	}
	for _, b := range branches {
		t.Run(b.name, func(t *testing.T) {
			req := reqOf("t", "k", TypeString, StringItem("x"), b.remove, b.modify)
			kind, ok := resolveAction(doc, req)
			if !ok || kind != ActionRejectTypeMismatch {
				t.Errorf("resolution = %s, %v, want reject-type-mismatch", kind, ok)
			}
		})
	}
}

// TestModifyRequiresValueAgreement pins the guarded confirm-and-set
// branch: same value resolves Replace, different value rejects, no
// value resolves View.
func TestModifyRequiresValueAgreement(t *testing.T) {
	doc := docWith(t, "[t]\nk = 5\n")

	kind, ok := resolveAction(doc, reqOf("t", "k", TypeInteger, IntegerItem(7), false, true))
	if !ok || kind != ActionRejectValueMismatch {
		t.Errorf("different value = %s, %v, want reject-existing-value-mismatch", kind, ok)
	}

	kind, ok = resolveAction(doc, reqOf("t", "k", TypeInteger, IntegerItem(5), false, true))
	if !ok || kind != ActionReplace {
		t.Errorf("same value = %s, %v, want replace", kind, ok)
	}

	kind, ok = resolveAction(doc, reqOf("t", "k", TypeInteger, nil, false, true))
	if !ok || kind != ActionView {
		t.Errorf("no value = %s, %v, want view", kind, ok)
	}
}

// TestForceReplaceBypassesValueAgreement pins the asymmetry with the
// branch above: remove+modify overwrites without the value check.
func TestForceReplaceBypassesValueAgreement(t *testing.T) {
	doc := docWith(t, "[t]\nk = 5\n")
	req := reqOf("t", "k", TypeInteger, IntegerItem(7), true, true)

	kind, ok := resolveAction(doc, req)
	if !ok || kind != ActionReplace {
		t.Fatalf("resolution = %s, %v, want replace", kind, ok)
	}
	if err := applyAction(doc, Action{Kind: kind, Req: req}, nil); err != nil {
		t.Fatal(err)
	}
	tbl, _ := doc.Table("t")
	if it, _ := tbl.Get("k"); it.String() != "7" {
		t.Errorf("k = %s after force replace, want 7", it)
	}
}

func TestRemoveWithoutModifyIsDryRun(t *testing.T) {
	doc := docWith(t, "[t]\nk = 5\n")

	kind, ok := resolveAction(doc, reqOf("t", "k", TypeInteger, nil, true, false))
	if !ok || kind != ActionWouldRemove {
		t.Fatalf("resolution = %s, %v, want would-remove", kind, ok)
	}

	// Applying the dry run must not touch the document.
	if err := applyAction(doc, Action{Kind: kind, Req: reqOf("t", "k", TypeInteger, nil, true, false)}, nil); err != nil {
		t.Fatal(err)
	}
	tbl, _ := doc.Table("t")
	if !tbl.Has("k") {
		t.Error("dry-run removal deleted the key")
	}
}

// TestMissingTableSignal: a request against an absent table resolves to
// the internal materialize-and-retry signal regardless of flags.
func TestMissingTableSignal(t *testing.T) {
	doc := NewDocument()
	for _, flags := range [][2]bool{{false, false}, {false, true}, {true, false}, {true, true}} {
		req := reqOf("a.b.c", "k", TypeString, StringItem("v"), flags[0], flags[1])
		kind, ok := resolveAction(doc, req)
		if !ok || kind != actionMissingTable {
			t.Errorf("remove=%v modify=%v: resolution = %s, %v, want missing-table", flags[0], flags[1], kind, ok)
		}
	}
}

// TestAbsentKeyUnderModifyFlags: modify and remove aimed at a key that
// does not exist have nothing to do; the resolver reports no action at
// all rather than inventing one.
func TestAbsentKeyUnderModifyFlags(t *testing.T) {
	doc := docWith(t, "[t]\n")
	for _, flags := range [][2]bool{{false, true}, {true, false}, {true, true}} {
		req := reqOf("t", "missing", TypeString, StringItem("v"), flags[0], flags[1])
		if kind, ok := resolveAction(doc, req); ok {
			t.Errorf("remove=%v modify=%v: resolved %s for absent key", flags[0], flags[1], kind)
		}
	}
}

// TestSerializedFormEquality: the existing-value comparison is over
// canonical text, so an integer 5 and a float 5.0 under a float request
// never compare equal, and identical renderings do.
func TestSerializedFormEquality(t *testing.T) {
	doc := docWith(t, "[t]\nk = \"a\"\n")

	kind, _ := resolveAction(doc, reqOf("t", "k", TypeString, StringItem("a"), false, false))
	if kind != ActionExists {
		t.Errorf("identical rendering = %s, want exists", kind)
	}
	kind, _ = resolveAction(doc, reqOf("t", "k", TypeString, StringItem("a "), false, false))
	if kind != ActionRejectValueMismatch {
		t.Errorf("different rendering = %s, want reject-existing-value-mismatch", kind)
	}
}

func TestPlainNoValueIsNoOp(t *testing.T) {
	doc := docWith(t, "[t]\nk = 5\n")
	kind, ok := resolveAction(doc, reqOf("t", "k", TypeInteger, nil, false, false))
	if !ok || kind != ActionNoOp {
		t.Errorf("resolution = %s, %v, want no-op", kind, ok)
	}
}

// TestSetItemLastMomentTypeCheck: apply re-checks the occupant type
// right before writing, independently of the resolver's earlier check.
func TestSetItemLastMomentTypeCheck(t *testing.T) {
	doc := docWith(t, "[t]\nk = 5\n")
	req := reqOf("t", "k", TypeString, StringItem("v"), true, true)
	if err := applyAction(doc, Action{Kind: ActionReplace, Req: req}, nil); err == nil {
		t.Error("expected type-mismatch error writing string over integer")
	}
}

// TestApplyWithoutValueErrors: a valueless insert is reachable through
// ordinary input (a failed import degrades to None), so it errors and
// leaves the document untouched rather than panicking.
func TestApplyWithoutValueErrors(t *testing.T) {
	doc := NewDocument()
	req := reqOf("", "k", TypeString, nil, false, false)
	err := applyAction(doc, Action{Kind: ActionInsert, Req: req}, nil)
	if !errors.Is(err, ErrNoValue) {
		t.Errorf("err = %v, want ErrNoValue", err)
	}
	if doc.Root().Has("k") {
		t.Error("valueless insert wrote a key")
	}
}

func TestRemoveItemGuards(t *testing.T) {
	doc := docWith(t, "[t]\nk = 5\n")

	// Value-less removal is unconditional.
	if err := removeItem(doc, reqOf("t", "k", TypeInteger, nil, true, true)); err != nil {
		t.Fatal(err)
	}
	tbl, _ := doc.Table("t")
	if tbl.Has("k") {
		t.Fatal("k survived removal")
	}

	// With a value, the occupant must agree.
	tbl.Set("k", IntegerItem(5))
	if err := removeItem(doc, reqOf("t", "k", TypeInteger, IntegerItem(7), true, true)); err == nil {
		t.Error("expected error removing with disagreeing value")
	}
	if err := removeItem(doc, reqOf("t", "k", TypeInteger, IntegerItem(5), true, true)); err != nil {
		t.Errorf("agreeing removal failed: %v", err)
	}
}

func TestActionLineRendering(t *testing.T) {
	req := reqOf("t", "k", TypeString, StringItem("v"), false, false)

	if got := (Action{Kind: ActionInsert, Req: req}).Line(); got != `insert -t 't' -X str 'k' -- "v"` {
		t.Errorf("insert line = %q", got)
	}
	// Non-carrying outcomes still occupy a journal line, but render empty.
	if got := (Action{Kind: ActionRejectTypeMismatch, Req: req}).Line(); got != "" {
		t.Errorf("rejection line = %q, want empty", got)
	}
	if got := (Action{Kind: ActionWouldRemove, Req: req}).Line(); got != "" {
		t.Errorf("dry-run line = %q, want empty", got)
	}
}
