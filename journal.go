// Journal buffering, evaluation, and write-ahead commit.
//
// The Journal owns the in-memory document for the life of one write
// transaction. Push buffers requests without validation. Evaluate
// drains them FIFO, resolves each against the document, and applies the
// resolved actions as it goes; a request whose table path does not
// exist yet gets the path materialized and is resolved exactly once
// more. Materialization happens for every request kind, so a view or
// exists aimed at an absent table leaves a surviving empty table
// behind; tests pin this so the side effect stays deliberate.
//
// Per-request failures never abort the batch: they are logged and the
// request is dropped from the evaluated log. Commit is write-ahead —
// one journal line per evaluated action, in order, before the data file
// is rewritten in full.
package tomldb

import "fmt"

// Journal buffers pending requests and the actions resolved from them,
// and owns the document being mutated.
type Journal struct {
	db        *Database
	doc       *Document
	prev      []byte // data-file bytes as read at Write time
	pending   []*Request
	evaluated []Action

	// OnView receives the observed item each time a View action is
	// applied. Nil means views resolve silently.
	OnView func(*Request, *Item)
}

func newJournal(db *Database, doc *Document, prev []byte) *Journal {
	return &Journal{db: db, doc: doc, prev: prev}
}

// Document returns the document owned by this journal.
func (j *Journal) Document() *Document { return j.doc }

// Push appends a request to the pending buffer. No validation happens
// here; bad requests surface during Evaluate.
func (j *Journal) Push(req *Request) {
	j.pending = append(j.pending, req)
}

// Pending returns the buffered requests in push order.
func (j *Journal) Pending() []*Request {
	out := make([]*Request, len(j.pending))
	copy(out, j.pending)
	return out
}

// Evaluated returns the resolved actions in evaluation order.
func (j *Journal) Evaluated() []Action {
	out := make([]Action, len(j.evaluated))
	copy(out, j.evaluated)
	return out
}

// Evaluate drains the pending buffer in push order, resolving and
// applying each request. Rejections are recorded as outcomes, not
// raised; requests that fail structurally are logged and dropped.
func (j *Journal) Evaluate() {
	log := j.db.config.Logger
	pending := j.pending
	j.pending = nil

	for _, req := range pending {
		if err := req.Validate(); err != nil {
			log.Error("dropping request", "request", req.String(), "err", err)
			continue
		}

		kind, ok := resolveAction(j.doc, req)
		if kind == actionMissingTable {
			if _, err := j.doc.Materialize(req.Table); err != nil {
				log.Error("dropping request", "request", req.String(), "err", err)
				continue
			}
			kind, ok = resolveAction(j.doc, req)
			if kind == actionMissingTable {
				// The table was just created; a second miss means the
				// resolver contradicted itself.
				panic("tomldb: table " + req.Table + " missing after materialization")
			}
		}
		if !ok {
			log.Error("dropping request",
				"request", req.String(),
				"err", fmt.Errorf("%w: nothing to do for an absent key", ErrUnresolvable))
			continue
		}

		act := Action{Kind: kind, Req: req}
		if err := applyAction(j.doc, act, j.OnView); err != nil {
			log.Error("dropping request", "request", req.String(), "err", err)
			continue
		}
		j.evaluated = append(j.evaluated, act)
	}
}

// Commit writes the evaluated log and the document through the
// transaction's locked handles.
//
// In the Commit state the write is guaranteed: every resolved action is
// appended to the journal file first (one line each, empty renderings
// included), then the data file is overwritten with the serialized
// document. A transaction still in the Write state commits as a no-op
// success — nothing is guaranteed yet, so nothing is written. Any other
// state is a caller bug.
func (j *Journal) Commit(tx *Transaction) error {
	switch tx.state {
	case stateCommit:
		if j.db.config.KeepHistory {
			if err := j.db.appendHistory(j.prev); err != nil {
				return err
			}
		}

		jf := tx.journal.File()
		for _, act := range j.evaluated {
			if _, err := fmt.Fprintf(jf, "%s\n", act.Line()); err != nil {
				return fmt.Errorf("writing journal record: %w", err)
			}
		}
		if j.db.config.SyncWrites {
			if err := jf.Sync(); err != nil {
				return fmt.Errorf("syncing journal: %w", err)
			}
		}

		df := tx.data.File()
		if _, err := df.WriteString(j.doc.String()); err != nil {
			return fmt.Errorf("writing data file: %w", err)
		}
		if j.db.config.SyncWrites {
			if err := df.Sync(); err != nil {
				return fmt.Errorf("syncing data file: %w", err)
			}
		}
		return nil
	case stateWrite:
		// Not yet guaranteed; deliberately writes nothing.
		return nil
	default:
		return fmt.Errorf("%w: expected write or commit, got %s", ErrState, tx.state)
	}
}
