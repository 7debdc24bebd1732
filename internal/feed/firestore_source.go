package feed

import (
	"context"
	"strings"
	"sync"

	"cloud.google.com/go/firestore"

	"traka/pkg/logger"
)

// Watch names one collection to listen on. Group watches use a collection
// group query so nested paths like orders/{id}/messages are covered.
type Watch struct {
	Collection string
	Group      bool
}

// FirestoreSource turns Firestore snapshot listeners into change events.
// Listeners only hand back the current document, so the source keeps the
// previous snapshot per document path to supply the Before side of updates.
// The initial listener result replays every existing document as an add;
// that first batch only primes the cache and is never dispatched, otherwise
// each restart would refire every create handler.
type FirestoreSource struct {
	client  *firestore.Client
	logger  *logger.Logger
	watches []Watch

	mu   sync.Mutex
	prev map[string]*firestore.DocumentSnapshot
}

func NewFirestoreSource(client *firestore.Client, log *logger.Logger, watches ...Watch) *FirestoreSource {
	return &FirestoreSource{
		client:  client,
		logger:  log,
		watches: watches,
		prev:    make(map[string]*firestore.DocumentSnapshot),
	}
}

// Run blocks until ctx is cancelled, feeding every change to the router.
func (s *FirestoreSource) Run(ctx context.Context, router *Router) error {
	var wg sync.WaitGroup
	for _, w := range s.watches {
		wg.Add(1)
		go func(w Watch) {
			defer wg.Done()
			s.watch(ctx, w, router)
		}(w)
	}
	wg.Wait()
	return ctx.Err()
}

func (s *FirestoreSource) watch(ctx context.Context, w Watch, router *Router) {
	var query firestore.Query
	if w.Group {
		query = s.client.CollectionGroup(w.Collection).Query
	} else {
		query = s.client.Collection(w.Collection).Query
	}

	iter := query.Snapshots(ctx)
	defer iter.Stop()

	primed := false
	for {
		snap, err := iter.Next()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.WithError(err).WithField("collection", w.Collection).Error("Change listener stopped")
			return
		}
		for _, change := range snap.Changes {
			s.handleChange(ctx, change, primed, router)
		}
		primed = true
	}
}

func (s *FirestoreSource) handleChange(ctx context.Context, change firestore.DocumentChange, primed bool, router *Router) {
	path := documentPath(change.Doc)

	s.mu.Lock()
	before := s.prev[path]
	if change.Kind == firestore.DocumentRemoved {
		delete(s.prev, path)
	} else {
		s.prev[path] = change.Doc
	}
	s.mu.Unlock()

	if !primed {
		return
	}

	ev := &Event{
		Path: path,
		ID:   change.Doc.Ref.ID,
	}
	switch change.Kind {
	case firestore.DocumentAdded:
		ev.Kind = KindCreate
		ev.After = change.Doc
	case firestore.DocumentModified:
		ev.Kind = KindUpdate
		ev.After = change.Doc
		if before != nil {
			ev.Before = before
		}
	case firestore.DocumentRemoved:
		ev.Kind = KindDelete
		if before != nil {
			ev.Before = before
		}
	default:
		return
	}

	router.Dispatch(ctx, ev)
}

// documentPath strips the resource prefix down to "collection/doc/...".
func documentPath(doc *firestore.DocumentSnapshot) string {
	full := doc.Ref.Path
	if i := strings.Index(full, "/documents/"); i >= 0 {
		return full[i+len("/documents/"):]
	}
	return full
}
