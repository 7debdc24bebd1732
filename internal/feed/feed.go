package feed

import (
	"context"
)

// Kind classifies a document change.
type Kind int

const (
	KindCreate Kind = iota
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Snapshot is one side of a document change. *firestore.DocumentSnapshot
// satisfies it directly; tests use in-memory implementations.
type Snapshot interface {
	Exists() bool
	DataTo(v interface{}) error
}

// Event is a single document mutation delivered at-least-once. Before is nil
// for creates, After is nil for deletes. Params holds the segments captured
// by the matched route pattern.
type Event struct {
	Path   string
	ID     string
	Kind   Kind
	Params map[string]string
	Before Snapshot
	After  Snapshot
}

// Handler reacts to one change event. Handlers must be idempotent under
// redelivery of the same (before, after) pair; the feed makes no
// exactly-once promise.
type Handler func(ctx context.Context, ev *Event) error

// Source delivers change events to a router until the context is cancelled.
type Source interface {
	Run(ctx context.Context, router *Router) error
}
