package firestore

import (
	"context"
	"fmt"
	"time"

	"traka/internal/models"
	"traka/internal/repositories/interfaces"

	"cloud.google.com/go/firestore"
)

const (
	voiceCallsCollection = "voice_calls"
	iceCollection        = "ice"
)

type voiceCallRepository struct {
	client *firestore.Client
}

func NewVoiceCallRepository(client *firestore.Client) interfaces.VoiceCallRepository {
	return &voiceCallRepository{client: client}
}

func (r *voiceCallRepository) ListTerminalBefore(ctx context.Context, cutoff time.Time, limitPerStatus int) ([]string, error) {
	// One query per terminal status avoids a composite index on
	// (status, updatedAt).
	statuses := []models.VoiceCallStatus{models.VoiceCallStatusEnded, models.VoiceCallStatusRejected}

	var ids []string
	for _, s := range statuses {
		snaps, err := r.client.Collection(voiceCallsCollection).
			Where("status", "==", string(s)).
			Where("updatedAt", "<", cutoff).
			Limit(limitPerStatus).
			Documents(ctx).
			GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list %s voice calls: %w", s, err)
		}
		for _, snap := range snaps {
			ids = append(ids, snap.Ref.ID)
		}
	}

	return ids, nil
}

func (r *voiceCallRepository) IceCursor(callID string, pageSize int) interfaces.PageCursor {
	col := r.client.Collection(voiceCallsCollection).Doc(callID).Collection(iceCollection)
	return newDocIDCursor(col, pageSize)
}

func (r *voiceCallRepository) DeleteIceCandidates(ctx context.Context, callID string, candidateIDs []string) error {
	col := r.client.Collection(voiceCallsCollection).Doc(callID).Collection(iceCollection)

	batch := r.client.Batch()
	for _, id := range candidateIDs {
		batch.Delete(col.Doc(id))
	}

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete ice candidate batch: %w", err)
	}

	return nil
}

func (r *voiceCallRepository) Delete(ctx context.Context, callID string) error {
	if _, err := r.client.Collection(voiceCallsCollection).Doc(callID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete voice call: %w", err)
	}
	return nil
}
