// Command-string tokenization.
//
// SplitCommand turns one composite command string into discrete argv
// tokens, with one twist over plain shell splitting: the first " -- "
// separator marks the start of a raw value segment. Everything after it
// is a single token, trimmed of surrounding whitespace and never
// re-tokenized, so values containing quotes or spaces survive intact.
package tomldb

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// SplitCommand tokenizes cmd shell-style, honouring the raw-tail rule.
func SplitCommand(cmd string) ([]string, error) {
	head, tail, found := strings.Cut(cmd, " -- ")
	if !found {
		toks, err := shlex.Split(cmd)
		if err != nil {
			return nil, fmt.Errorf("splitting command: %w", err)
		}
		return toks, nil
	}

	toks, err := shlex.Split(head)
	if err != nil {
		return nil, fmt.Errorf("splitting command: %w", err)
	}
	return append(toks, "--", strings.TrimSpace(tail)), nil
}
