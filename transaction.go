// Transaction state machine over the data and journal files.
//
// A Transaction moves through at most two of four states:
//
//	Empty --Read--->  Read    shared lock on the data file
//	Empty --Write-->  Write   exclusive lock on the journal file
//	Write --Commit--> Commit  journal lock kept, exclusive lock on the
//	                          data file opened for truncating rewrite
//
// Read and Commit are terminal; the only way out is Close, which
// releases every lock the transaction still holds. Close runs on every
// exit path, success or failure, so a dropped transaction can never
// strand a lock — though it does nothing to undo a partial data-file
// write; that is the journal's job.
//
// Lock acquisition is the only blocking step. It races the caller's
// context, and a transaction whose context loses the race stays Empty.
package tomldb

import (
	"context"
	"fmt"
	"io"
	"os"
)

// txState tags the current state of a Transaction.
type txState int

const (
	stateEmpty txState = iota
	stateRead
	stateWrite
	stateCommit
	stateClosed
)

func (s txState) String() string {
	switch s {
	case stateEmpty:
		return "empty"
	case stateRead:
		return "read"
	case stateWrite:
		return "write"
	case stateCommit:
		return "commit"
	case stateClosed:
		return "closed"
	}
	return "<unknown state>"
}

// Transaction is a locked session against one Database. Not safe for
// concurrent use; a transaction belongs to one goroutine.
type Transaction struct {
	db      *Database
	state   txState
	journal *lockedFile // exclusive, Write and Commit
	data    *lockedFile // shared in Read, exclusive in Commit
}

// Read pivots an empty transaction to the Read state by taking a shared
// lock on the data file. Concurrent readers are fine; any writer in its
// commit instant blocks us.
func (tx *Transaction) Read(ctx context.Context) error {
	if tx.state != stateEmpty {
		return fmt.Errorf("%w: cannot pivot to read from %s", ErrState, tx.state)
	}
	data, err := acquireLock(ctx, tx.db.dataPath, os.O_RDONLY, LockShared)
	if err != nil {
		return err
	}
	tx.data = data
	tx.state = stateRead
	return nil
}

// Write pivots an empty transaction to the Write state by taking an
// exclusive lock on the journal file, serializing writers against each
// other for the buffering phase. The current data file is read in full
// into the returned Journal's document.
func (tx *Transaction) Write(ctx context.Context) (*Journal, error) {
	if tx.state != stateEmpty {
		return nil, fmt.Errorf("%w: cannot pivot to write from %s", ErrState, tx.state)
	}
	journal, err := acquireLock(ctx, tx.db.journalPath, os.O_RDWR|os.O_APPEND, LockExclusive)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(tx.db.dataPath)
	if err != nil {
		journal.release()
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	doc, err := Parse(raw)
	if err != nil {
		journal.release()
		return nil, err
	}

	tx.journal = journal
	tx.state = stateWrite
	return newJournal(tx.db, doc, raw), nil
}

// Commit pivots a write transaction to the Commit state: the journal
// lock carries over and an exclusive lock is added on the data file,
// opened for truncating rewrite. This is the only window during which
// readers are blocked.
func (tx *Transaction) Commit(ctx context.Context) error {
	if tx.state != stateWrite {
		return fmt.Errorf("%w: can only commit from write, not %s", ErrState, tx.state)
	}
	if tx.journal == nil {
		panic("tomldb: write transaction has no journal handle")
	}
	data, err := acquireLock(ctx, tx.db.dataPath, os.O_WRONLY|os.O_TRUNC, LockExclusive)
	if err != nil {
		return err
	}
	tx.data = data
	tx.state = stateCommit
	return nil
}

// Document reads and parses the data file through the shared lock of a
// Read transaction.
func (tx *Transaction) Document() (*Document, error) {
	if tx.state != stateRead {
		return nil, fmt.Errorf("%w: document is only readable from read, not %s", ErrState, tx.state)
	}
	raw, err := io.ReadAll(tx.data.File())
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	return Parse(raw)
}

// Close releases whatever the transaction holds. Idempotent, and legal
// in every state; this is the lock-release guarantee the rest of the
// package leans on.
func (tx *Transaction) Close() error {
	if tx.journal != nil {
		tx.journal.release()
		tx.journal = nil
	}
	if tx.data != nil {
		tx.data.release()
		tx.data = nil
	}
	tx.state = stateClosed
	return nil
}
