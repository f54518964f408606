// Package tomldb is an embedded document store for a single TOML data
// file, mutated through discrete type-checked operations.
//
// A Database names a data file and a journal file. A Transaction wraps
// advisory file locks around both: a shared lock on the data file for
// reads, an exclusive lock on the journal file while mutations are
// buffered, and an exclusive lock on the data file taken only at the
// final commit instant. Mutations are pushed into a Journal as Requests,
// resolved against the in-memory document by a pure decision table, and
// committed write-ahead: the journal file records every resolved action
// before the data file is rewritten in full. Recovery tooling replays
// the journal against the last good data file.
package tomldb

import "errors"

// Sentinel errors for programmatic handling. Callers use errors.Is to
// distinguish expected conditions (ErrCancelled, lock contention) from
// malformed input (ErrParse, ErrInvalidKey) and misuse (ErrState).
var (
	ErrCancelled     = errors.New("transaction cancelled")
	ErrState         = errors.New("invalid transaction state")
	ErrInvalidKey    = errors.New("invalid table key")
	ErrTableBlocked  = errors.New("path segment holds a non-table value")
	ErrTypeMismatch  = errors.New("existing value has a different type")
	ErrNoValue       = errors.New("request carries no value")
	ErrParse         = errors.New("malformed document")
	ErrParseValue    = errors.New("malformed value")
	ErrUnknownType   = errors.New("unknown value type token")
	ErrUnresolvable  = errors.New("could not resolve an action for request")
	ErrCorruptRecord = errors.New("corrupt history record")
	ErrChecksum      = errors.New("history record checksum mismatch")
	ErrDecompress    = errors.New("decompression failed")
)
