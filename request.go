// Mutation requests and their canonical journal rendering.
//
// A Request describes one intended change (or query) against one key:
// target table path, key, declared value type, optional value, and the
// remove/modify flags. Requests render to a stable argv-style line —
// the form recorded in the journal file — and parse back from the same
// form, which is what makes the journal a replayable recovery log.
package tomldb

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Request is the input unit of the mutation engine.
type Request struct {
	Table      string     // dot-separated table path; empty addresses the root
	Key        string     // non-empty legal table key
	Type       ValueType  // declared logical type
	Extended   *ValueType // optional extended type (-Y), recorded but not resolved
	Value      *Item      // nil or None when the request carries no value
	ImportPath string     // original path when Type is TypeImport
	Remove     bool
	Modify     bool
}

// HasValue reports whether the request carries a usable value. A None
// item (failed import) counts as no value.
func (r *Request) HasValue() bool {
	return r.Value != nil && !r.Value.IsNone()
}

// Validate checks the structural invariants: a present, quotable key
// and a value whose shape agrees with the declared type.
func (r *Request) Validate() error {
	if err := validateKey(r.Key); err != nil {
		return err
	}
	for _, seg := range splitPath(r.Table) {
		if err := validateKey(seg); err != nil {
			return fmt.Errorf("%w: table path %q", err, r.Table)
		}
	}
	if r.HasValue() && !r.Type.Matches(r.Value) {
		return fmt.Errorf("%w: value is %s, declared %s", ErrTypeMismatch, r.Value.Kind(), r.Type)
	}
	return nil
}

// validateKey rejects keys that cannot round-trip through the journal
// rendering. Whitespace is out entirely: a key containing " -- " would
// shift the raw-value cut on replay.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.ContainsAny(key, "'\" \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// String renders the canonical journal form:
//
//	[--modify ][--remove ]-t '<table>' -X <type> [-Y <ext> ]'<key>'[ -- <value>]
//
// The rendering is the recovery source of truth and must not change.
func (r *Request) String() string {
	var sb strings.Builder
	if r.Modify {
		sb.WriteString("--modify ")
	}
	if r.Remove {
		sb.WriteString("--remove ")
	}
	fmt.Fprintf(&sb, "-t '%s' ", r.Table)
	fmt.Fprintf(&sb, "-X %s ", r.Type)
	if r.Extended != nil {
		fmt.Fprintf(&sb, "-Y %s ", *r.Extended)
	}
	fmt.Fprintf(&sb, "'%s'", r.Key)

	// Imports journal the path, not the imported contents.
	if r.Type == TypeImport && r.ImportPath != "" {
		fmt.Fprintf(&sb, " -- '%s'", r.ImportPath)
	} else if r.HasValue() {
		sb.WriteString(" -- ")
		sb.WriteString(r.Value.String())
	}
	return sb.String()
}

// ParseRequestArgs builds a Request from argv-style tokens, the inverse
// of String. Tokens usually come from SplitCommand, so a raw value
// segment after " -- " arrives as a single token.
func ParseRequestArgs(args []string) (*Request, error) {
	fs := flag.NewFlagSet("request", flag.ContinueOnError)
	fs.SetOutput(nilWriter{})
	remove := fs.BoolP("remove", "r", false, "remove the key")
	modify := fs.BoolP("modify", "m", false, "allow modification of existing values")
	table := fs.StringP("table", "t", "", "target table path")
	typeTok := fs.StringP("value-type", "X", tokString, "value type token")
	extTok := fs.StringP("extended-value-type", "Y", "", "extended value type token")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing request args: %w", err)
	}

	vt, err := ParseValueType(*typeTok)
	if err != nil {
		return nil, err
	}
	req := &Request{
		Table:  *table,
		Type:   vt,
		Remove: *remove,
		Modify: *modify,
	}
	if *extTok != "" {
		ext, err := ParseValueType(*extTok)
		if err != nil {
			return nil, err
		}
		req.Extended = &ext
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: missing key argument", ErrInvalidKey)
	}
	req.Key = unquoteToken(rest[0])
	if len(rest) > 1 {
		raw := unquoteToken(rest[1])
		val, err := vt.Construct(raw)
		if err != nil {
			return nil, err
		}
		req.Value = val
		if vt == TypeImport {
			req.ImportPath = raw
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// unquoteToken strips one level of single quotes, the form String emits
// for keys, table paths, and import paths.
func unquoteToken(tok string) string {
	if len(tok) >= 2 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
		return tok[1 : len(tok)-1]
	}
	return tok
}

// nilWriter discards flag-parse noise; errors are returned, not printed.
type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }
