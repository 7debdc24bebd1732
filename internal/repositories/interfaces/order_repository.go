package interfaces

import (
	"context"
	"time"

	"traka/internal/models"
)

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)
	UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error

	// RecordChatPreview updates the unread-badge fields (lastMessageAt,
	// lastMessageSenderUid, lastMessageText) with a server timestamp, and
	// stamps lastChatNotificationAt as well when markNotified is true.
	RecordChatPreview(ctx context.Context, orderID, senderUID, preview string, markNotified bool) error

	// MarkTrackDriverPaid stamps passengerTrackDriverPaidAt.
	MarkTrackDriverPaid(ctx context.Context, orderID string) error

	// MarkLacakBarangPaid stamps the paid-at field for the given payer side.
	MarkLacakBarangPaid(ctx context.Context, orderID string, payer models.LacakBarangPayer) error

	// ListCompletedBefore returns ids of completed orders whose completedAt
	// is strictly before the cutoff, up to limit.
	ListCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error)

	// MessagesCursor pages through the order's messages subcollection in
	// document id order for bounded-batch deletion. Deletion does not care
	// about createdAt, and id order pages without an index.
	MessagesCursor(orderID string, pageSize int) PageCursor

	// DeleteMessages removes one page of messages in a single atomic batch.
	DeleteMessages(ctx context.Context, orderID string, messageIDs []string) error
}
