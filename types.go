// Value type classification and construction.
//
// ValueType is the closed set of logical types a request may declare.
// Each type knows whether a stored item matches it and how to build an
// item from raw textual input. Import is the only type with an I/O
// effect: its raw input is a filesystem path whose contents are parsed
// as a document. Import failures degrade to the None item rather than
// erroring, so a bad import path is rejected later by the normal
// resolution rules instead of aborting the whole batch.
package tomldb

import (
	"fmt"
	"os"
	"strconv"
)

// ValueType declares the logical type of a requested value.
type ValueType int

const (
	TypeString ValueType = iota
	TypeBool
	TypeFloat
	TypeInteger
	TypeObject // inline table
	TypeAppend // array
	TypeImport // table materialized from an external document
)

// Boundary tokens, one per type.
const (
	tokString  = "str"
	tokBool    = "bool"
	tokFloat   = "float"
	tokInteger = "int"
	tokObject  = "obj"
	tokAppend  = "append"
	tokImport  = "import"
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return tokString
	case TypeBool:
		return tokBool
	case TypeFloat:
		return tokFloat
	case TypeInteger:
		return tokInteger
	case TypeObject:
		return tokObject
	case TypeAppend:
		return tokAppend
	case TypeImport:
		return tokImport
	}
	return "<unknown value type>"
}

// ParseValueType maps a boundary token to its type.
func ParseValueType(tok string) (ValueType, error) {
	switch tok {
	case tokString:
		return TypeString, nil
	case tokBool:
		return TypeBool, nil
	case tokFloat:
		return TypeFloat, nil
	case tokInteger:
		return TypeInteger, nil
	case tokObject:
		return TypeObject, nil
	case tokAppend:
		return TypeAppend, nil
	case tokImport:
		return TypeImport, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, tok)
}

// ValueTypes returns every type, in token order.
func ValueTypes() []ValueType {
	return []ValueType{TypeString, TypeBool, TypeFloat, TypeInteger, TypeObject, TypeAppend, TypeImport}
}

// Matches reports whether a stored item has the shape this type
// declares.
func (t ValueType) Matches(it *Item) bool {
	switch t {
	case TypeString:
		_, ok := it.AsString()
		return ok
	case TypeBool:
		_, ok := it.AsBool()
		return ok
	case TypeFloat:
		_, ok := it.AsFloat()
		return ok
	case TypeInteger:
		_, ok := it.AsInteger()
		return ok
	case TypeObject:
		_, ok := it.AsInline()
		return ok
	case TypeAppend:
		_, ok := it.AsArray()
		return ok
	case TypeImport:
		_, ok := it.AsTable()
		return ok
	}
	return false
}

// Construct builds an item of this type from raw textual input. Every
// type except Import is a pure conversion.
func (t ValueType) Construct(raw string) (*Item, error) {
	switch t {
	case TypeString:
		// Quoted input is parsed as a TOML string; anything else is
		// taken verbatim. "hello" and hello construct the same value.
		if len(raw) > 0 && (raw[0] == '"' || raw[0] == '\'') {
			if it, err := ParseValue(raw); err == nil {
				if _, ok := it.AsString(); ok {
					return it, nil
				}
			}
		}
		return StringItem(raw), nil
	case TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a bool", ErrParseValue, raw)
		}
		return BoolItem(b), nil
	case TypeFloat:
		it, err := ParseValue(raw)
		if err != nil {
			return nil, err
		}
		if n, ok := it.AsInteger(); ok {
			it = FloatItem(float64(n))
		}
		if _, ok := it.AsFloat(); !ok {
			return nil, fmt.Errorf("%w: %q is not a float", ErrParseValue, raw)
		}
		return it, nil
	case TypeInteger:
		it, err := ParseValue(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := it.AsInteger(); !ok {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrParseValue, raw)
		}
		return it, nil
	case TypeObject:
		it, err := ParseValue(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := it.AsInline(); !ok {
			return nil, fmt.Errorf("%w: %q is not an inline table", ErrParseValue, raw)
		}
		return it, nil
	case TypeAppend:
		it, err := ParseValue(raw)
		if err != nil {
			// Bare words append as strings, mirroring TypeString.
			it = StringItem(raw)
		}
		if _, ok := it.AsArray(); ok {
			return it, nil
		}
		return ArrayItem([]*Item{it}), nil
	case TypeImport:
		return importDocument(raw), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
}

// importDocument reads and parses an external document. Read or parse
// failure yields None; callers treat an empty import as "no value".
func importDocument(path string) *Item {
	data, err := os.ReadFile(path)
	if err != nil {
		return None()
	}
	doc, err := Parse(data)
	if err != nil {
		return None()
	}
	return TableItem(doc.root)
}
