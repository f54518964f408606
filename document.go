// Document tree and dotted-path table resolution.
//
// A Document is the in-memory form of one data file: a root table whose
// entries are scalars, arrays, inline tables, or nested tables. Tables
// are addressed by dot-separated paths. Read-only resolution reports
// absence; materializing resolution creates every missing intermediate
// table and fails only when a path segment is occupied by a non-table
// value.
//
// Serialization is canonical: entries in insertion order, then
// sub-tables in insertion order, one header per table including empty
// ones. Empty tables must survive the round trip because path
// materialization can leave them behind on purpose.
package tomldb

import (
	"fmt"
	"strings"
)

// Document is an ordered tree of tables backing one data file.
type Document struct {
	root *Table
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{root: NewTable()}
}

// Root returns the top-level table. The empty path addresses it.
func (d *Document) Root() *Table { return d.root }

// splitPath breaks a dotted path into segments. The empty path is the
// root and yields no segments.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Table resolves path read-only. Absent tables and paths blocked by
// non-table values both report false.
func (d *Document) Table(path string) (*Table, bool) {
	t := d.root
	for _, seg := range splitPath(path) {
		it, ok := t.Get(seg)
		if !ok {
			return nil, false
		}
		sub, ok := it.AsTable()
		if !ok {
			return nil, false
		}
		t = sub
	}
	return t, true
}

// HasTable reports whether path resolves to an existing table.
func (d *Document) HasTable(path string) bool {
	_, ok := d.Table(path)
	return ok
}

// Materialize resolves path for mutation, creating every missing
// intermediate table. A segment already holding a non-table value is an
// error; nothing created before the failing segment is rolled back.
func (d *Document) Materialize(path string) (*Table, error) {
	t := d.root
	for _, seg := range splitPath(path) {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidKey, path)
		}
		it, ok := t.Get(seg)
		if !ok {
			sub := NewTable()
			t.Set(seg, TableItem(sub))
			t = sub
			continue
		}
		sub, ok := it.AsTable()
		if !ok {
			return nil, fmt.Errorf("%w: %q in %q holds a %s", ErrTableBlocked, seg, path, it.Kind())
		}
		t = sub
	}
	return t, nil
}

// String serializes the document to its canonical textual form.
func (d *Document) String() string {
	var sb strings.Builder
	writeTable(&sb, d.root, nil)
	return sb.String()
}

// writeTable emits the entries of t, then recurses into its sub-tables.
// Non-table entries always precede sub-table headers so the output is
// valid TOML regardless of interleaved insertion order.
func writeTable(sb *strings.Builder, t *Table, path []string) {
	for _, k := range t.keys {
		it := t.items[k]
		if it.Kind() == KindTable {
			continue
		}
		sb.WriteString(renderKey(k))
		sb.WriteString(" = ")
		it.render(sb)
		sb.WriteByte('\n')
	}
	for _, k := range t.keys {
		it := t.items[k]
		sub, ok := it.AsTable()
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sub.writeHeader(sb, append(path, k))
		writeTable(sb, sub, append(path, k))
	}
}

// writeHeader emits a [a.b.c] header line.
func (t *Table) writeHeader(sb *strings.Builder, path []string) {
	sb.WriteByte('[')
	for i, seg := range path {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(renderKey(seg))
	}
	sb.WriteString("]\n")
}
