package interfaces

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when a referenced document does not
// exist. Services translate it into the caller-facing taxonomy.
var ErrNotFound = errors.New("document not found")

// PageCursor pages through a query in bounded batches, independent of the
// storage SDK's own iteration style. HasMore reports whether another call to
// NextPage could return rows; it turns false once a page comes back short.
type PageCursor interface {
	NextPage(ctx context.Context) ([]string, error)
	HasMore() bool
}
