package retention

import (
	"context"
	"fmt"
	"time"

	"traka/internal/repositories/interfaces"
	"traka/internal/utils"
	"traka/pkg/logger"
)

// AccountDeleter removes the account from the identity provider. The
// Firebase auth client satisfies it directly.
type AccountDeleter interface {
	DeleteUser(ctx context.Context, uid string) error
}

// Sweeper runs the retention jobs: voice call teardown, scheduled account
// deletion and completed-order chat purges. Every job processes a bounded
// batch per run and isolates per-item failures, so a poisoned document only
// delays its own cleanup until the next pass.
type Sweeper struct {
	users    interfaces.UserRepository
	orders   interfaces.OrderRepository
	calls    interfaces.VoiceCallRepository
	accounts AccountDeleter
	logger   *logger.Logger
	now      func() time.Time
	pageSize int
}

func NewSweeper(
	users interfaces.UserRepository,
	orders interfaces.OrderRepository,
	calls interfaces.VoiceCallRepository,
	accounts AccountDeleter,
	log *logger.Logger,
) *Sweeper {
	return &Sweeper{
		users:    users,
		orders:   orders,
		calls:    calls,
		accounts: accounts,
		logger:   log,
		now:      time.Now,
		pageSize: utils.DeleteBatchSize,
	}
}

// CleanupVoiceCall drains the call's ice candidates in bounded batches and
// then deletes the call document itself.
func (s *Sweeper) CleanupVoiceCall(ctx context.Context, callID string) error {
	deleted, pages, err := s.drain(ctx, s.calls.IceCursor(callID, s.pageSize), func(ids []string) error {
		return s.calls.DeleteIceCandidates(ctx, callID, ids)
	})
	if err != nil {
		return fmt.Errorf("failed to drain ice candidates: %w", err)
	}

	if err := s.calls.Delete(ctx, callID); err != nil {
		return fmt.Errorf("failed to delete voice call: %w", err)
	}

	s.logger.WithField("call_id", callID).LogSweepResult("voice_call_cleanup", deleted+1, pages)
	return nil
}

// SweepStaleVoiceCalls removes terminal calls the live cleanup missed, once
// they have sat untouched past the retention window.
func (s *Sweeper) SweepStaleVoiceCalls(ctx context.Context) error {
	cutoff := s.now().Add(-utils.TerminalCallRetention)
	ids, err := s.calls.ListTerminalBefore(ctx, cutoff, utils.VoiceCallSweepLimit)
	if err != nil {
		return fmt.Errorf("failed to list stale voice calls: %w", err)
	}

	for _, id := range ids {
		if err := s.CleanupVoiceCall(ctx, id); err != nil {
			s.logger.WithError(err).WithField("call_id", id).Error("Failed to clean up stale voice call")
		}
	}

	if len(ids) > 0 {
		s.logger.Infof("Stale voice call sweep processed %d calls", len(ids))
	}
	return nil
}

// SweepScheduledAccounts permanently deletes accounts whose grace period has
// run out. Both deletedAt and scheduledDeletionAt must be set; a document
// with only the schedule stamp is left alone.
func (s *Sweeper) SweepScheduledAccounts(ctx context.Context) error {
	users, err := s.users.ListScheduledForDeletion(ctx, s.now(), utils.AccountSweepLimit)
	if err != nil {
		return fmt.Errorf("failed to list scheduled deletions: %w", err)
	}

	deleted := 0
	for _, user := range users {
		if user.DeletedAt == nil || user.ScheduledDeletionAt == nil {
			continue
		}
		if err := s.accounts.DeleteUser(ctx, user.UID); err != nil {
			s.logger.WithError(err).WithUID(user.UID).Error("Failed to delete auth account")
			continue
		}
		if err := s.users.Delete(ctx, user.UID); err != nil {
			s.logger.WithError(err).WithUID(user.UID).Error("Failed to delete user profile")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Infof("Account sweep deleted %d users", deleted)
	}
	return nil
}

// PurgeCompletedOrderChats deletes the messages of orders completed past the
// retention window. The order documents stay so ride history survives.
func (s *Sweeper) PurgeCompletedOrderChats(ctx context.Context) error {
	cutoff := s.now().Add(-utils.CompletedChatRetention)
	orderIDs, err := s.orders.ListCompletedBefore(ctx, cutoff, utils.OrderChatSweepLimit)
	if err != nil {
		return fmt.Errorf("failed to list completed orders: %w", err)
	}

	for _, orderID := range orderIDs {
		deleted, pages, err := s.drain(ctx, s.orders.MessagesCursor(orderID, s.pageSize), func(ids []string) error {
			return s.orders.DeleteMessages(ctx, orderID, ids)
		})
		if err != nil {
			s.logger.WithError(err).WithOrderID(orderID).Error("Failed to purge order chat")
			continue
		}
		if deleted > 0 {
			s.logger.WithOrderID(orderID).LogSweepResult("order_chat_purge", deleted, pages)
		}
	}

	if len(orderIDs) > 0 {
		s.logger.Infof("Chat purge processed %d completed orders", len(orderIDs))
	}
	return nil
}

// drain walks a cursor to exhaustion, deleting page by page.
func (s *Sweeper) drain(ctx context.Context, cursor interfaces.PageCursor, deletePage func(ids []string) error) (deleted, pages int, err error) {
	for cursor.HasMore() {
		ids, err := cursor.NextPage(ctx)
		if err != nil {
			return deleted, pages, err
		}
		if len(ids) == 0 {
			break
		}
		if err := deletePage(ids); err != nil {
			return deleted, pages, err
		}
		deleted += len(ids)
		pages++
	}
	return deleted, pages, nil
}
