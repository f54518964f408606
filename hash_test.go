package tomldb

import (
	"regexp"
	"testing"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestChecksumFormat(t *testing.T) {
	for _, alg := range []int{AlgXXHash3, AlgFNV1a, AlgBlake2b} {
		result := checksum([]byte("key = 1\n"), alg)
		if !hexPattern.MatchString(result) {
			t.Errorf("alg %d did not produce 16 hex chars: %q", alg, result)
		}
	}
}

// TestChecksumDeterministic: a snapshot written with one sum must
// verify against the same sum on retrieval.
func TestChecksumDeterministic(t *testing.T) {
	for _, alg := range []int{AlgXXHash3, AlgFNV1a, AlgBlake2b} {
		h1 := checksum([]byte("foo"), alg)
		h2 := checksum([]byte("foo"), alg)
		if h1 != h2 {
			t.Errorf("alg %d: same content produced different sums: %q vs %q", alg, h1, h2)
		}
	}
}

func TestChecksumDifferentContent(t *testing.T) {
	for _, alg := range []int{AlgXXHash3, AlgFNV1a, AlgBlake2b} {
		if checksum([]byte("foo"), alg) == checksum([]byte("bar"), alg) {
			t.Errorf("alg %d: different content produced same sum", alg)
		}
	}
}

// TestChecksumInvalidAlgorithm: unknown algorithms must return an empty
// string, which can never match a recorded sum, rather than inventing a
// value some other algorithm might collide with.
func TestChecksumInvalidAlgorithm(t *testing.T) {
	if result := checksum([]byte("test"), 99); result != "" {
		t.Errorf("invalid alg should return empty string, got: %q", result)
	}
}

// TestChecksumAlgorithmConstants guards the numeric values persisted in
// history records. If a constant changed, existing snapshots would be
// verified with the wrong algorithm and fail their checksum.
func TestChecksumAlgorithmConstants(t *testing.T) {
	if AlgXXHash3 != 1 {
		t.Errorf("AlgXXHash3 = %d, want 1", AlgXXHash3)
	}
	if AlgFNV1a != 2 {
		t.Errorf("AlgFNV1a = %d, want 2", AlgFNV1a)
	}
	if AlgBlake2b != 3 {
		t.Errorf("AlgBlake2b = %d, want 3", AlgBlake2b)
	}
}
