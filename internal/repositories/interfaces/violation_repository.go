package interfaces

import (
	"context"

	"traka/internal/models"
)

type ViolationRepository interface {
	// OldestUnpaid returns the user's oldest violation record with a nil
	// paidAt, or ErrNotFound when every record is settled.
	OldestUnpaid(ctx context.Context, userID string, vtype models.ViolationType) (*models.ViolationRecord, error)

	// ApplySettlement marks one record paid and writes the user's new
	// outstanding counters in a single atomic batch. A partial failure
	// leaves both documents untouched.
	ApplySettlement(ctx context.Context, uid, recordID string, newFee, newCount int64) error
}
