package directory

import (
	"context"
	"fmt"

	"traka/internal/models"
	"traka/internal/repositories/interfaces"
	"traka/internal/utils"
)

// RegisteredContact is one phone-book entry resolved to an account.
type RegisteredContact struct {
	PhoneNumber string `json:"phoneNumber"`
	UID         string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// RegisteredDriver extends the contact shape with the fields the handoff
// picker shows.
type RegisteredDriver struct {
	RegisteredContact
	Email                  string `json:"email,omitempty"`
	VehicleJumlahPenumpang int    `json:"vehicleJumlahPenumpang"`
}

// Service resolves raw phone-book numbers against registered accounts for
// the contact and driver pickers.
type Service struct {
	users interfaces.UserRepository
}

func NewService(users interfaces.UserRepository) *Service {
	return &Service{users: users}
}

// RegisteredContacts normalizes the input numbers to +62 form, dedupes, caps
// the lookup and returns every account found. Unparseable numbers are
// dropped silently.
func (s *Service) RegisteredContacts(ctx context.Context, phones []string) ([]RegisteredContact, error) {
	users, err := s.lookup(ctx, phones)
	if err != nil {
		return nil, err
	}

	contacts := make([]RegisteredContact, 0, len(users))
	for _, user := range users {
		contacts = append(contacts, contactOf(user))
	}
	return contacts, nil
}

// RegisteredDrivers is RegisteredContacts filtered to driver accounts.
func (s *Service) RegisteredDrivers(ctx context.Context, phones []string) ([]RegisteredDriver, error) {
	users, err := s.lookup(ctx, phones)
	if err != nil {
		return nil, err
	}

	drivers := make([]RegisteredDriver, 0, len(users))
	for _, user := range users {
		if !user.IsDriver() {
			continue
		}
		drivers = append(drivers, RegisteredDriver{
			RegisteredContact:      contactOf(user),
			Email:                  user.Email,
			VehicleJumlahPenumpang: user.VehicleJumlahPenumpang,
		})
	}
	return drivers, nil
}

func (s *Service) lookup(ctx context.Context, phones []string) ([]*models.User, error) {
	normalized := utils.NormalizePhoneList(phones, utils.MaxContactLookup)
	if len(normalized) == 0 {
		return nil, nil
	}

	users, err := s.users.FindByPhoneNumbers(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve contacts: %w", err)
	}
	return users, nil
}

func contactOf(user *models.User) RegisteredContact {
	return RegisteredContact{
		PhoneNumber: user.PhoneNumber,
		UID:         user.UID,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
	}
}
