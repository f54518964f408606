// Parser for the data-file syntax.
//
// Line-oriented: blank lines and # comments are skipped, [a.b.c] headers
// switch the current table, and key = value lines add entries to it.
// Values are scanned by a small recursive-descent scanner that handles
// basic and literal strings, integers, floats, booleans, single-line
// arrays, and inline tables. That is the closed set the store can write,
// so it is also the closed set it reads; anything else (multiline
// strings, datetimes, arrays of tables) is a parse error rather than a
// silently mangled value.
package tomldb

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses a full document.
func Parse(data []byte) (*Document, error) {
	doc := NewDocument()
	current := doc.root

	for n, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(trimmed, "[") {
			if strings.HasPrefix(trimmed, "[[") {
				return nil, fmt.Errorf("%w: line %d: arrays of tables are not supported", ErrParse, n+1)
			}
			path, err := parseHeader(trimmed)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrParse, n+1, err)
			}
			// Segment-wise rather than Document.Materialize: quoted
			// header segments may legally contain dots.
			t, err := materializeSegments(doc, path)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrParse, n+1, err)
			}
			current = t
			continue
		}

		key, value, err := parseEntry(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrParse, n+1, err)
		}
		current.Set(key, value)
	}
	return doc, nil
}

// materializeSegments is Materialize over pre-split segments, used by
// the parser where header segments may legally contain dots.
func materializeSegments(d *Document, segs []string) (*Table, error) {
	t := d.root
	for _, seg := range segs {
		it, ok := t.Get(seg)
		if !ok {
			sub := NewTable()
			t.Set(seg, TableItem(sub))
			t = sub
			continue
		}
		sub, ok := it.AsTable()
		if !ok {
			return nil, fmt.Errorf("%w: %q holds a %s", ErrTableBlocked, seg, it.Kind())
		}
		t = sub
	}
	return t, nil
}

// parseHeader parses "[a.b.c]" into path segments.
func parseHeader(line string) ([]string, error) {
	body, ok := strings.CutPrefix(line, "[")
	if !ok {
		return nil, fmt.Errorf("not a header")
	}
	// Allow a trailing comment after the closing bracket.
	end := strings.Index(body, "]")
	if end < 0 {
		return nil, fmt.Errorf("unterminated table header")
	}
	rest := strings.TrimSpace(body[end+1:])
	if rest != "" && !strings.HasPrefix(rest, "#") {
		return nil, fmt.Errorf("trailing characters after table header")
	}

	s := &scanner{src: strings.TrimSpace(body[:end])}
	var segs []string
	for {
		seg, err := s.key()
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
		s.skipSpace()
		if s.eof() {
			return segs, nil
		}
		if !s.consume('.') {
			return nil, fmt.Errorf("unexpected character %q in table header", s.peek())
		}
		s.skipSpace()
	}
}

// parseEntry parses one "key = value" line.
func parseEntry(line string) (string, *Item, error) {
	s := &scanner{src: line}
	key, err := s.key()
	if err != nil {
		return "", nil, err
	}
	s.skipSpace()
	if !s.consume('=') {
		return "", nil, fmt.Errorf("expected '=' after key %q", key)
	}
	s.skipSpace()
	val, err := s.value()
	if err != nil {
		return "", nil, err
	}
	s.skipSpace()
	if !s.eof() && s.peek() != '#' {
		return "", nil, fmt.Errorf("trailing characters after value for %q", key)
	}
	return key, val, nil
}

// ParseValue parses a single value from s, rejecting trailing input.
func ParseValue(raw string) (*Item, error) {
	s := &scanner{src: strings.TrimSpace(raw)}
	val, err := s.value()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseValue, err)
	}
	s.skipSpace()
	if !s.eof() {
		return nil, fmt.Errorf("%w: trailing characters after value", ErrParseValue)
	}
	return val, nil
}

// scanner walks one line of input.
type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) consume(c byte) bool {
	if s.peek() == c {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) skipSpace() {
	for !s.eof() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

// key scans a bare, basic-quoted, or literal-quoted key.
func (s *scanner) key() (string, error) {
	s.skipSpace()
	switch s.peek() {
	case '"':
		return s.basicString()
	case '\'':
		return s.literalString()
	}
	start := s.pos
	for !s.eof() && isBareKeyByte(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", fmt.Errorf("expected key")
	}
	return s.src[start:s.pos], nil
}

func isBareKeyByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// value scans one value.
func (s *scanner) value() (*Item, error) {
	s.skipSpace()
	switch {
	case s.eof():
		return nil, fmt.Errorf("expected value")
	case s.peek() == '"':
		str, err := s.basicString()
		if err != nil {
			return nil, err
		}
		return StringItem(str), nil
	case s.peek() == '\'':
		str, err := s.literalString()
		if err != nil {
			return nil, err
		}
		return StringItem(str), nil
	case s.peek() == '[':
		return s.array()
	case s.peek() == '{':
		return s.inlineTable()
	case strings.HasPrefix(s.src[s.pos:], "true"):
		s.pos += 4
		return BoolItem(true), nil
	case strings.HasPrefix(s.src[s.pos:], "false"):
		s.pos += 5
		return BoolItem(false), nil
	default:
		return s.number()
	}
}

// basicString scans a "..." string with escapes.
func (s *scanner) basicString() (string, error) {
	if !s.consume('"') {
		return "", fmt.Errorf("expected '\"'")
	}
	if strings.HasPrefix(s.src[s.pos:], `""`) {
		return "", fmt.Errorf("multiline strings are not supported")
	}
	var sb strings.Builder
	for {
		if s.eof() {
			return "", fmt.Errorf("unterminated string")
		}
		c := s.src[s.pos]
		s.pos++
		switch c {
		case '"':
			return sb.String(), nil
		case '\\':
			if s.eof() {
				return "", fmt.Errorf("unterminated escape")
			}
			e := s.src[s.pos]
			s.pos++
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'u', 'U':
				width := 4
				if e == 'U' {
					width = 8
				}
				if len(s.src)-s.pos < width {
					return "", fmt.Errorf("truncated unicode escape")
				}
				n, err := strconv.ParseUint(s.src[s.pos:s.pos+width], 16, 32)
				if err != nil {
					return "", fmt.Errorf("invalid unicode escape: %w", err)
				}
				s.pos += width
				sb.WriteRune(rune(n))
			default:
				return "", fmt.Errorf("invalid escape \\%c", e)
			}
		default:
			sb.WriteByte(c)
		}
	}
}

// literalString scans a '...' string with no escapes.
func (s *scanner) literalString() (string, error) {
	if !s.consume('\'') {
		return "", fmt.Errorf("expected '''")
	}
	end := strings.IndexByte(s.src[s.pos:], '\'')
	if end < 0 {
		return "", fmt.Errorf("unterminated literal string")
	}
	str := s.src[s.pos : s.pos+end]
	s.pos += end + 1
	return str, nil
}

// array scans [v, v, ...] on a single line.
func (s *scanner) array() (*Item, error) {
	if !s.consume('[') {
		return nil, fmt.Errorf("expected '['")
	}
	var els []*Item
	for {
		s.skipSpace()
		if s.consume(']') {
			return ArrayItem(els), nil
		}
		if len(els) > 0 {
			if !s.consume(',') {
				return nil, fmt.Errorf("expected ',' or ']' in array")
			}
			s.skipSpace()
			if s.consume(']') { // trailing comma
				return ArrayItem(els), nil
			}
		}
		el, err := s.value()
		if err != nil {
			return nil, err
		}
		els = append(els, el)
	}
}

// inlineTable scans { k = v, ... } on a single line.
func (s *scanner) inlineTable() (*Item, error) {
	if !s.consume('{') {
		return nil, fmt.Errorf("expected '{'")
	}
	t := NewTable()
	for {
		s.skipSpace()
		if s.consume('}') {
			return InlineItem(t), nil
		}
		if t.Len() > 0 {
			if !s.consume(',') {
				return nil, fmt.Errorf("expected ',' or '}' in inline table")
			}
			s.skipSpace()
		}
		key, err := s.key()
		if err != nil {
			return nil, err
		}
		s.skipSpace()
		if !s.consume('=') {
			return nil, fmt.Errorf("expected '=' in inline table")
		}
		val, err := s.value()
		if err != nil {
			return nil, err
		}
		t.Set(key, val)
	}
}

// number scans an integer or float, including inf and nan forms.
func (s *scanner) number() (*Item, error) {
	start := s.pos
	for !s.eof() {
		c := s.src[s.pos]
		if c == ',' || c == ']' || c == '}' || c == ' ' || c == '\t' || c == '#' {
			break
		}
		s.pos++
	}
	raw := s.src[start:s.pos]
	if raw == "" {
		return nil, fmt.Errorf("expected value")
	}

	switch strings.TrimPrefix(strings.TrimPrefix(raw, "+"), "-") {
	case "inf", "nan":
		f, err := strconv.ParseFloat(strings.TrimPrefix(raw, "+"), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", raw)
		}
		return FloatItem(f), nil
	}

	clean := strings.ReplaceAll(raw, "_", "")
	if n, err := strconv.ParseInt(clean, 10, 64); err == nil && !strings.ContainsAny(clean, ".eE") {
		return IntegerItem(n), nil
	}
	if f, err := strconv.ParseFloat(clean, 64); err == nil {
		return FloatItem(f), nil
	}
	return nil, fmt.Errorf("invalid number %q", raw)
}
