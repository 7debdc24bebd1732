package directory

import (
	"context"
	"testing"

	"traka/internal/models"
	"traka/internal/repositories/interfaces"
)

type mockUserRepo struct {
	interfaces.UserRepository
	byPhone map[string]*models.User
	queried []string
}

func (m *mockUserRepo) FindByPhoneNumbers(ctx context.Context, phones []string) ([]*models.User, error) {
	m.queried = append(m.queried, phones...)
	var out []*models.User
	for _, p := range phones {
		if u, ok := m.byPhone[p]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestRegisteredContactsNormalizesAndDedupes(t *testing.T) {
	repo := &mockUserRepo{byPhone: map[string]*models.User{
		"+628123456789": {UID: "u1", PhoneNumber: "+628123456789", DisplayName: "Sari"},
	}}
	svc := NewService(repo)

	// Same number in three client formats plus one garbage entry.
	contacts, err := svc.RegisteredContacts(context.Background(), []string{
		"0812-3456-789", "+62 812 3456 789", "62812 3456789", "abc",
	})
	if err != nil {
		t.Fatalf("RegisteredContacts: %v", err)
	}

	if len(repo.queried) != 1 || repo.queried[0] != "+628123456789" {
		t.Errorf("queried = %v, want single normalized number", repo.queried)
	}
	if len(contacts) != 1 || contacts[0].UID != "u1" {
		t.Fatalf("contacts = %+v", contacts)
	}
}

func TestRegisteredContactsEmptyInput(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewService(repo)

	contacts, err := svc.RegisteredContacts(context.Background(), nil)
	if err != nil {
		t.Fatalf("RegisteredContacts: %v", err)
	}
	if len(contacts) != 0 || len(repo.queried) != 0 {
		t.Error("empty input should not hit the repository")
	}
}

func TestRegisteredDriversFiltersByRole(t *testing.T) {
	repo := &mockUserRepo{byPhone: map[string]*models.User{
		"+628111111111": {UID: "d1", PhoneNumber: "+628111111111", Role: models.UserRoleDriver, VehicleJumlahPenumpang: 6},
		"+628222222222": {UID: "p1", PhoneNumber: "+628222222222", Role: models.UserRolePassenger},
	}}
	svc := NewService(repo)

	drivers, err := svc.RegisteredDrivers(context.Background(), []string{"08111111111", "08222222222"})
	if err != nil {
		t.Fatalf("RegisteredDrivers: %v", err)
	}
	if len(drivers) != 1 || drivers[0].UID != "d1" {
		t.Fatalf("drivers = %+v, want only d1", drivers)
	}
	if drivers[0].VehicleJumlahPenumpang != 6 {
		t.Errorf("vehicle capacity = %d, want 6", drivers[0].VehicleJumlahPenumpang)
	}
}
