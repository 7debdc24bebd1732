package interfaces

import (
	"context"
	"time"
)

type VoiceCallRepository interface {
	// ListTerminalBefore returns ids of ended/rejected calls last updated
	// before the cutoff, up to limit per terminal status.
	ListTerminalBefore(ctx context.Context, cutoff time.Time, limitPerStatus int) ([]string, error)

	// IceCursor pages through the call's ice candidate subcollection for
	// bounded-batch deletion.
	IceCursor(callID string, pageSize int) PageCursor

	// DeleteIceCandidates removes one page of candidates in a single atomic
	// batch.
	DeleteIceCandidates(ctx context.Context, callID string, candidateIDs []string) error

	Delete(ctx context.Context, callID string) error
}
