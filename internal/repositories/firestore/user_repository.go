package firestore

import (
	"context"
	"fmt"
	"time"

	"traka/internal/models"
	"traka/internal/repositories/interfaces"
	"traka/internal/utils"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

type userRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) interfaces.UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	user.UID = snap.Ref.ID

	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	iter := r.client.Collection(usersCollection).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}

	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	user.UID = snap.Ref.ID

	return &user, nil
}

func (r *userRepository) FindByPhoneNumbers(ctx context.Context, phones []string) ([]*models.User, error) {
	var users []*models.User

	// Firestore caps "in" filters at 30 values per query.
	for i := 0; i < len(phones); i += utils.FirestoreInMaxSize {
		end := i + utils.FirestoreInMaxSize
		if end > len(phones) {
			end = len(phones)
		}

		snaps, err := r.client.Collection(usersCollection).
			Where("phoneNumber", "in", phones[i:end]).
			Documents(ctx).
			GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to query users by phone: %w", err)
		}

		for _, snap := range snaps {
			var user models.User
			if err := snap.DataTo(&user); err != nil {
				return nil, fmt.Errorf("failed to decode user: %w", err)
			}
			user.UID = snap.Ref.ID
			users = append(users, &user)
		}
	}

	return users, nil
}

func (r *userRepository) UpdateFields(ctx context.Context, uid string, updates map[string]interface{}) error {
	fieldUpdates := make([]firestore.Update, 0, len(updates))
	for path, value := range updates {
		fieldUpdates = append(fieldUpdates, firestore.Update{Path: path, Value: value})
	}

	_, err := r.client.Collection(usersCollection).Doc(uid).Update(ctx, fieldUpdates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *userRepository) IncrementTotalServed(ctx context.Context, uid string, n int64) error {
	_, err := r.client.Collection(usersCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "totalPenumpangServed", Value: firestore.Increment(n)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to increment totalPenumpangServed: %w", err)
	}

	return nil
}

func (r *userRepository) SetContributionPaid(ctx context.Context, uid string, paidUpToCount int64) error {
	_, err := r.client.Collection(usersCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "contributionPaidUpToCount", Value: paidUpToCount},
		{Path: "contributionLastPaidAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to set contribution paid: %w", err)
	}

	return nil
}

func (r *userRepository) SetContributionExempt(ctx context.Context, uid string, value int64) error {
	_, err := r.client.Collection(usersCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "contributionPaidUpToCount", Value: value},
		{Path: "contributionExemptUpdatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to set contribution exempt: %w", err)
	}

	return nil
}

func (r *userRepository) ListScheduledForDeletion(ctx context.Context, now time.Time, limit int) ([]*models.User, error) {
	snaps, err := r.client.Collection(usersCollection).
		Where("scheduledDeletionAt", "<=", now).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled deletions: %w", err)
	}

	users := make([]*models.User, 0, len(snaps))
	for _, snap := range snaps {
		var user models.User
		if err := snap.DataTo(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		user.UID = snap.Ref.ID
		users = append(users, &user)
	}

	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, uid string) error {
	_, err := r.client.Collection(usersCollection).Doc(uid).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
