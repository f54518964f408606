package tomldb

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValueTypeTokens(t *testing.T) {
	want := map[ValueType]string{
		TypeString:  "str",
		TypeBool:    "bool",
		TypeFloat:   "float",
		TypeInteger: "int",
		TypeObject:  "obj",
		TypeAppend:  "append",
		TypeImport:  "import",
	}
	for vt, tok := range want {
		if vt.String() != tok {
			t.Errorf("%d.String() = %q, want %q", int(vt), vt.String(), tok)
		}
		parsed, err := ParseValueType(tok)
		if err != nil || parsed != vt {
			t.Errorf("ParseValueType(%q) = %v, %v", tok, parsed, err)
		}
	}
	if _, err := ParseValueType("datetime"); err == nil {
		t.Error("expected error for unknown token")
	}
}

func TestMatches(t *testing.T) {
	items := map[Kind]*Item{
		KindString:  StringItem("s"),
		KindBool:    BoolItem(true),
		KindFloat:   FloatItem(1.5),
		KindInteger: IntegerItem(1),
		KindInline:  InlineItem(NewTable()),
		KindArray:   ArrayItem(nil),
		KindTable:   TableItem(NewTable()),
	}
	want := map[ValueType]Kind{
		TypeString:  KindString,
		TypeBool:    KindBool,
		TypeFloat:   KindFloat,
		TypeInteger: KindInteger,
		TypeObject:  KindInline,
		TypeAppend:  KindArray,
		TypeImport:  KindTable,
	}
	for vt, matching := range want {
		for kind, it := range items {
			got := vt.Matches(it)
			if got != (kind == matching) {
				t.Errorf("%s.Matches(%s) = %v", vt, kind, got)
			}
		}
		if vt.Matches(None()) {
			t.Errorf("%s matches None", vt)
		}
	}
}

func TestConstruct(t *testing.T) {
	tests := []struct {
		vt   ValueType
		raw  string
		want string // canonical rendering, "" means expect error
	}{
		{TypeString, "hello", `"hello"`},
		{TypeString, `"hello"`, `"hello"`},
		{TypeString, "'hello'", `"hello"`},
		{TypeString, "5", `"5"`},
		{TypeBool, "true", "true"},
		{TypeBool, "yes", ""},
		{TypeInteger, "42", "42"},
		{TypeInteger, "4.2", ""},
		{TypeFloat, "4.2", "4.2"},
		{TypeFloat, "4", "4.0"},
		{TypeObject, "{ a = 1 }", "{ a = 1 }"},
		{TypeObject, "[1]", ""},
		{TypeAppend, "[1, 2]", "[1, 2]"},
		{TypeAppend, "5", "[5]"},
		{TypeAppend, "word", `["word"]`},
	}
	for _, tt := range tests {
		it, err := tt.vt.Construct(tt.raw)
		if tt.want == "" {
			if err == nil {
				t.Errorf("%s.Construct(%q) = %s, want error", tt.vt, tt.raw, it)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s.Construct(%q) failed: %v", tt.vt, tt.raw, err)
			continue
		}
		if it.String() != tt.want {
			t.Errorf("%s.Construct(%q) = %s, want %s", tt.vt, tt.raw, it, tt.want)
		}
		if !tt.vt.Matches(it) {
			t.Errorf("%s.Construct(%q) does not match its own type", tt.vt, tt.raw)
		}
	}
}

func TestConstructImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "import.toml")
	if err := os.WriteFile(path, []byte("a = 1\n\n[sub]\nb = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	it, err := TypeImport.Construct(path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	tbl, ok := it.AsTable()
	if !ok {
		t.Fatalf("import produced %s, want table", it.Kind())
	}
	if !tbl.Has("a") || !tbl.Has("sub") {
		t.Errorf("imported table missing keys: %v", tbl.Keys())
	}
}

// TestConstructImportDegradesToNone: a bad import is not a hard error.
// The None value flows into resolution and is rejected there by normal
// rules, which keeps one bad import from aborting a whole batch.
func TestConstructImportDegradesToNone(t *testing.T) {
	it, err := TypeImport.Construct("/does/not/exist.toml")
	if err != nil {
		t.Fatalf("missing import should not error, got %v", err)
	}
	if !it.IsNone() {
		t.Errorf("missing import = %s, want None", it.Kind())
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(path, []byte("[[nope]]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	it, err = TypeImport.Construct(path)
	if err != nil {
		t.Fatalf("unparseable import should not error, got %v", err)
	}
	if !it.IsNone() {
		t.Errorf("unparseable import = %s, want None", it.Kind())
	}
}
