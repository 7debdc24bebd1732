package firestore

import (
	"context"
	"fmt"
	"time"

	"traka/internal/models"
	"traka/internal/repositories/interfaces"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ordersCollection   = "orders"
	messagesCollection = "messages"
)

type orderRepository struct {
	client *firestore.Client
}

func NewOrderRepository(client *firestore.Client) interfaces.OrderRepository {
	return &orderRepository{client: client}
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	snap, err := r.client.Collection(ordersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	var order models.Order
	if err := snap.DataTo(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	order.ID = snap.Ref.ID

	return &order, nil
}

func (r *orderRepository) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	fieldUpdates := make([]firestore.Update, 0, len(updates))
	for path, value := range updates {
		fieldUpdates = append(fieldUpdates, firestore.Update{Path: path, Value: value})
	}

	_, err := r.client.Collection(ordersCollection).Doc(id).Update(ctx, fieldUpdates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}

func (r *orderRepository) RecordChatPreview(ctx context.Context, orderID, senderUID, preview string, markNotified bool) error {
	updates := []firestore.Update{
		{Path: "lastMessageAt", Value: firestore.ServerTimestamp},
		{Path: "lastMessageSenderUid", Value: senderUID},
		{Path: "lastMessageText", Value: preview},
	}
	if markNotified {
		updates = append(updates, firestore.Update{Path: "lastChatNotificationAt", Value: firestore.ServerTimestamp})
	}

	_, err := r.client.Collection(ordersCollection).Doc(orderID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to record chat preview: %w", err)
	}

	return nil
}

func (r *orderRepository) MarkTrackDriverPaid(ctx context.Context, orderID string) error {
	_, err := r.client.Collection(ordersCollection).Doc(orderID).Update(ctx, []firestore.Update{
		{Path: "passengerTrackDriverPaidAt", Value: firestore.ServerTimestamp},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to mark track driver paid: %w", err)
	}

	return nil
}

func (r *orderRepository) MarkLacakBarangPaid(ctx context.Context, orderID string, payer models.LacakBarangPayer) error {
	field := "passengerLacakBarangPaidAt"
	if payer == models.LacakBarangPayerReceiver {
		field = "receiverLacakBarangPaidAt"
	}

	_, err := r.client.Collection(ordersCollection).Doc(orderID).Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.ServerTimestamp},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to mark lacak barang paid: %w", err)
	}

	return nil
}

func (r *orderRepository) ListCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	snaps, err := r.client.Collection(ordersCollection).
		Where("status", "==", string(models.OrderStatusCompleted)).
		Where("completedAt", "<", cutoff).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list completed orders: %w", err)
	}

	ids := make([]string, 0, len(snaps))
	for _, snap := range snaps {
		ids = append(ids, snap.Ref.ID)
	}

	return ids, nil
}

func (r *orderRepository) MessagesCursor(orderID string, pageSize int) interfaces.PageCursor {
	col := r.client.Collection(ordersCollection).Doc(orderID).Collection(messagesCollection)
	return newDocIDCursor(col, pageSize)
}

func (r *orderRepository) DeleteMessages(ctx context.Context, orderID string, messageIDs []string) error {
	col := r.client.Collection(ordersCollection).Doc(orderID).Collection(messagesCollection)

	batch := r.client.Batch()
	for _, id := range messageIDs {
		batch.Delete(col.Doc(id))
	}

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete message batch: %w", err)
	}

	return nil
}
