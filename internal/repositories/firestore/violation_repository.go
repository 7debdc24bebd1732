package firestore

import (
	"context"
	"fmt"

	"traka/internal/models"
	"traka/internal/repositories/interfaces"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

const violationsCollection = "violation_records"

type violationRepository struct {
	client *firestore.Client
}

func NewViolationRepository(client *firestore.Client) interfaces.ViolationRepository {
	return &violationRepository{client: client}
}

func (r *violationRepository) OldestUnpaid(ctx context.Context, userID string, vtype models.ViolationType) (*models.ViolationRecord, error) {
	iter := r.client.Collection(violationsCollection).
		Where("userId", "==", userID).
		Where("type", "==", string(vtype)).
		Where("paidAt", "==", nil).
		OrderBy("createdAt", firestore.Asc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query unpaid violations: %w", err)
	}

	var record models.ViolationRecord
	if err := snap.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to decode violation record: %w", err)
	}
	record.ID = snap.Ref.ID

	return &record, nil
}

func (r *violationRepository) ApplySettlement(ctx context.Context, uid, recordID string, newFee, newCount int64) error {
	userRef := r.client.Collection(usersCollection).Doc(uid)
	recordRef := r.client.Collection(violationsCollection).Doc(recordID)

	// One batch covering both documents, so a failure leaves the ledger in
	// its pre-batch state.
	batch := r.client.Batch()
	batch.Update(userRef, []firestore.Update{
		{Path: "outstandingViolationFee", Value: newFee},
		{Path: "outstandingViolationCount", Value: newCount},
	})
	batch.Update(recordRef, []firestore.Update{
		{Path: "paidAt", Value: firestore.ServerTimestamp},
	})

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit settlement batch: %w", err)
	}

	return nil
}
