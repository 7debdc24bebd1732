package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

// docIDCursor pages a collection in document-id order. Document ids are
// stable under concurrent writes, unlike timestamp fields, so a page is
// never skipped when two documents share a createdAt.
type docIDCursor struct {
	col      *firestore.CollectionRef
	pageSize int
	lastID   string
	hasMore  bool
}

func newDocIDCursor(col *firestore.CollectionRef, pageSize int) *docIDCursor {
	return &docIDCursor{
		col:      col,
		pageSize: pageSize,
		hasMore:  true,
	}
}

func (c *docIDCursor) HasMore() bool {
	return c.hasMore
}

func (c *docIDCursor) NextPage(ctx context.Context) ([]string, error) {
	if !c.hasMore {
		return nil, nil
	}

	query := c.col.
		Select(). // refs only, no field data
		OrderBy(firestore.DocumentID, firestore.Asc).
		Limit(c.pageSize)
	if c.lastID != "" {
		query = query.StartAfter(c.lastID)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cursor page: %w", err)
	}

	ids := make([]string, 0, len(snaps))
	for _, snap := range snaps {
		ids = append(ids, snap.Ref.ID)
	}

	if len(ids) < c.pageSize {
		c.hasMore = false
	} else {
		c.lastID = ids[len(ids)-1]
	}

	return ids, nil
}
