// Action resolution: the decision table of the mutation engine.
//
// resolveAction is a pure function from (document, request) to the
// action the engine would take. The remove/modify flag pair selects the
// branch; within a branch the outcome depends on whether the key is
// present, whether the occupant matches the declared type, and whether
// the supplied value serializes identically to the occupant.
//
// The flag branches are deliberately asymmetric: modify alone is a
// guarded confirm-and-set (the supplied value must agree with what is
// already stored), while modify+remove is a forced overwrite that skips
// the value check. Both render differently in the journal, so recovery
// replay depends on keeping the asymmetry.
package tomldb

import "fmt"

// ActionKind enumerates resolution outcomes.
type ActionKind int

const (
	ActionInsert ActionKind = iota
	ActionReplace
	ActionRemove
	ActionView
	ActionExists
	ActionWouldRemove
	ActionWouldReplace
	ActionRejectTypeMismatch
	ActionRejectValueMismatch
	ActionNoOp
	actionMissingTable // internal signal, never a terminal result
)

func (k ActionKind) String() string {
	switch k {
	case ActionInsert:
		return "insert"
	case ActionReplace:
		return "replace"
	case ActionRemove:
		return "remove"
	case ActionView:
		return "view"
	case ActionExists:
		return "exists"
	case ActionWouldRemove:
		return "would-remove"
	case ActionWouldReplace:
		return "would-replace"
	case ActionRejectTypeMismatch:
		return "reject-type-mismatch"
	case ActionRejectValueMismatch:
		return "reject-existing-value-mismatch"
	case ActionNoOp:
		return "no-op"
	case actionMissingTable:
		return "missing-table"
	}
	return "<unknown action>"
}

// Mutates reports whether applying this action changes the document.
func (k ActionKind) Mutates() bool {
	switch k {
	case ActionInsert, ActionReplace, ActionRemove:
		return true
	}
	return false
}

// Action pairs a resolution outcome with the request that produced it.
type Action struct {
	Kind ActionKind
	Req  *Request
}

// Line renders the journal-file record for this action. Only the five
// request-carrying outcomes render; dry-runs and rejections render
// empty, which still occupies one journal line.
func (a Action) Line() string {
	switch a.Kind {
	case ActionInsert, ActionReplace, ActionRemove, ActionView, ActionExists:
		return a.Kind.String() + " " + a.Req.String()
	}
	return ""
}

// resolveAction decides the outcome for req against doc. The second
// return is false when no action can be determined at all (a modify or
// remove aimed at an absent key). actionMissingTable asks the caller to
// materialize the table path and resolve again.
func resolveAction(doc *Document, req *Request) (ActionKind, bool) {
	t, ok := doc.Table(req.Table)
	if !ok {
		return actionMissingTable, true
	}
	entry, present := t.Get(req.Key)

	switch {
	case req.Remove && req.Modify:
		// Force-replace: overwrite in place, no value agreement check.
		if !present {
			return 0, false
		}
		if req.Type.Matches(entry) {
			return ActionReplace, true
		}
		return ActionRejectTypeMismatch, true

	case !req.Remove && req.Modify:
		// Guarded confirm-and-set.
		if !present {
			return 0, false
		}
		if !req.Type.Matches(entry) {
			return ActionRejectTypeMismatch, true
		}
		if !req.HasValue() {
			return ActionView, true
		}
		if req.Value.Equal(entry) {
			return ActionReplace, true
		}
		return ActionRejectValueMismatch, true

	case req.Remove && !req.Modify:
		// Dry run: removal needs the modify flag to actually happen.
		if !present {
			return 0, false
		}
		if req.Type.Matches(entry) {
			return ActionWouldRemove, true
		}
		return ActionRejectTypeMismatch, true

	default:
		if !present {
			return ActionInsert, true
		}
		if !req.Type.Matches(entry) {
			return ActionRejectTypeMismatch, true
		}
		if !req.HasValue() {
			return ActionNoOp, true
		}
		if req.Value.Equal(entry) {
			return ActionExists, true
		}
		return ActionRejectValueMismatch, true
	}
}

// applyAction executes a resolved action against doc. onView receives
// the observed item for ActionView; it may be nil.
func applyAction(doc *Document, a Action, onView func(*Request, *Item)) error {
	switch a.Kind {
	case ActionRemove:
		return removeItem(doc, a.Req)
	case ActionInsert, ActionReplace:
		return setItem(doc, a.Req)
	case ActionView:
		if t, ok := doc.Table(a.Req.Table); ok {
			if entry, ok := t.Get(a.Req.Key); ok && onView != nil {
				onView(a.Req, entry)
			}
		}
	}
	// Exists, NoOp, dry runs, and rejections never mutate.
	return nil
}

// setItem writes the request's value, re-checking the occupant's type
// immediately before the write. The resolver already checked it, but
// the document may have changed between resolution passes; writing over
// a value of the wrong type must stay impossible.
func setItem(doc *Document, req *Request) error {
	// An insert can arrive valueless through ordinary input: a failed
	// import degrades to None and is meant to die here, logged and
	// dropped, not abort the batch.
	if !req.HasValue() {
		return fmt.Errorf("%w: cannot apply %s", ErrNoValue, req)
	}
	t, err := doc.Materialize(req.Table)
	if err != nil {
		return err
	}
	if occupant, ok := t.Get(req.Key); ok && !req.Type.Matches(occupant) {
		return fmt.Errorf("%w: %q holds a %s, declared %s", ErrTypeMismatch, req.Key, occupant.Kind(), req.Type)
	}
	t.Set(req.Key, req.Value)
	return nil
}

// removeItem deletes the request's key. With a value attached, removal
// is guarded: the occupant must match both the declared type and the
// value's canonical form. Without one the removal is unconditional.
func removeItem(doc *Document, req *Request) error {
	t, err := doc.Materialize(req.Table)
	if err != nil {
		return err
	}
	if !req.HasValue() {
		t.Remove(req.Key)
		return nil
	}
	occupant, ok := t.Get(req.Key)
	if !ok || !req.Type.Matches(occupant) || !req.Value.Equal(occupant) {
		return fmt.Errorf("%w: cannot remove %q", ErrTypeMismatch, req.Key)
	}
	t.Remove(req.Key)
	return nil
}
