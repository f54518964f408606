// Document values and ordered tables.
//
// Item is a closed union over the value shapes the store understands:
// string, integer, float, boolean, array, inline table, and full table.
// The zero Item is the None value — the absence of a value — which is
// what a failed import degrades to and what a valueless request carries.
//
// Every Item has exactly one canonical textual rendering, produced by
// String. Value equality throughout the store is defined over this
// rendering, not over structure, so the rendering must stay stable: the
// journal file and the existing-value-mismatch checks both depend on it.
package tomldb

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the concrete shape of an Item.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBool
	KindArray
	KindInline // inline table, { a = 1 }
	KindTable  // full table, materialized from a header or an import
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindInline:
		return "inline-table"
	case KindTable:
		return "table"
	}
	return "<unknown kind>"
}

// Item is one document value. The zero value is None.
type Item struct {
	kind Kind
	str  string
	num  int64
	fl   float64
	b    bool
	arr  []*Item
	tbl  *Table
}

// Constructors. Tables are shared, not copied; callers that need an
// independent tree clone first.

func None() *Item                { return &Item{kind: KindNone} }
func StringItem(s string) *Item  { return &Item{kind: KindString, str: s} }
func IntegerItem(n int64) *Item  { return &Item{kind: KindInteger, num: n} }
func FloatItem(f float64) *Item  { return &Item{kind: KindFloat, fl: f} }
func BoolItem(b bool) *Item      { return &Item{kind: KindBool, b: b} }
func ArrayItem(el []*Item) *Item { return &Item{kind: KindArray, arr: el} }
func InlineItem(t *Table) *Item  { return &Item{kind: KindInline, tbl: t} }
func TableItem(t *Table) *Item   { return &Item{kind: KindTable, tbl: t} }

// Kind returns the shape discriminant.
func (it *Item) Kind() Kind {
	if it == nil {
		return KindNone
	}
	return it.kind
}

// IsNone reports whether the item is the None value.
func (it *Item) IsNone() bool { return it.Kind() == KindNone }

// Accessors mirror the classifier predicates: each returns the payload
// and whether the item actually has that shape.

func (it *Item) AsString() (string, bool) {
	if it.Kind() != KindString {
		return "", false
	}
	return it.str, true
}

func (it *Item) AsInteger() (int64, bool) {
	if it.Kind() != KindInteger {
		return 0, false
	}
	return it.num, true
}

func (it *Item) AsFloat() (float64, bool) {
	if it.Kind() != KindFloat {
		return 0, false
	}
	return it.fl, true
}

func (it *Item) AsBool() (bool, bool) {
	if it.Kind() != KindBool {
		return false, false
	}
	return it.b, true
}

func (it *Item) AsArray() ([]*Item, bool) {
	if it.Kind() != KindArray {
		return nil, false
	}
	return it.arr, true
}

func (it *Item) AsInline() (*Table, bool) {
	if it.Kind() != KindInline {
		return nil, false
	}
	return it.tbl, true
}

func (it *Item) AsTable() (*Table, bool) {
	if it.Kind() != KindTable {
		return nil, false
	}
	return it.tbl, true
}

// String renders the canonical textual form. None renders empty.
func (it *Item) String() string {
	var sb strings.Builder
	it.render(&sb)
	return sb.String()
}

func (it *Item) render(sb *strings.Builder) {
	switch it.Kind() {
	case KindNone:
	case KindString:
		sb.WriteString(quoteString(it.str))
	case KindInteger:
		sb.WriteString(strconv.FormatInt(it.num, 10))
	case KindFloat:
		sb.WriteString(formatFloat(it.fl))
	case KindBool:
		sb.WriteString(strconv.FormatBool(it.b))
	case KindArray:
		sb.WriteByte('[')
		for i, el := range it.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			el.render(sb)
		}
		sb.WriteByte(']')
	case KindInline, KindTable:
		// Full tables render inline too: the form only feeds equality
		// checks and journal lines, never the data file.
		sb.WriteString("{ ")
		for i, k := range it.tbl.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(renderKey(k))
			sb.WriteString(" = ")
			it.tbl.items[k].render(sb)
		}
		sb.WriteString(" }")
	}
}

// Equal reports canonical-form equality. Formatting is part of the
// contract: two values are the same iff they serialize identically.
func (it *Item) Equal(other *Item) bool {
	return it.String() == other.String()
}

// Clone returns a deep copy.
func (it *Item) Clone() *Item {
	if it == nil {
		return None()
	}
	out := &Item{kind: it.kind, str: it.str, num: it.num, fl: it.fl, b: it.b}
	if it.arr != nil {
		out.arr = make([]*Item, len(it.arr))
		for i, el := range it.arr {
			out.arr[i] = el.Clone()
		}
	}
	if it.tbl != nil {
		out.tbl = it.tbl.Clone()
	}
	return out
}

// Table is an ordered mapping from keys to items. Insertion order is
// preserved and survives serialization.
type Table struct {
	keys  []string
	items map[string]*Item
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{items: map[string]*Item{}}
}

// Get returns the item stored under key.
func (t *Table) Get(key string) (*Item, bool) {
	it, ok := t.items[key]
	return it, ok
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	_, ok := t.items[key]
	return ok
}

// Set stores item under key, appending to the key order on first
// insertion and keeping the original position on overwrite.
func (t *Table) Set(key string, item *Item) {
	if _, ok := t.items[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.items[key] = item
}

// Remove deletes key and returns the previous item, if any.
func (t *Table) Remove(key string) (*Item, bool) {
	it, ok := t.items[key]
	if !ok {
		return nil, false
	}
	delete(t.items, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
	return it, true
}

// Keys returns the keys in insertion order. The slice is a copy.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.items) }

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{keys: make([]string, len(t.keys)), items: make(map[string]*Item, len(t.items))}
	copy(out.keys, t.keys)
	for k, v := range t.items {
		out.items[k] = v.Clone()
	}
	return out
}

// quoteString renders a TOML basic string.
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04X`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// formatFloat renders a float with a guaranteed decimal point or
// exponent, as TOML requires.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	switch s {
	case "+Inf", "Inf":
		return "inf"
	case "-Inf":
		return "-inf"
	case "NaN":
		return "nan"
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// renderKey emits a key bare when legal, quoted otherwise.
func renderKey(k string) string {
	if isBareKey(k) {
		return k
	}
	return quoteString(k)
}

// isBareKey reports whether k is a legal bare TOML key.
func isBareKey(k string) bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
