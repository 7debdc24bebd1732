package models

import (
	"time"
)

type UserRole string

const (
	UserRoleDriver    UserRole = "driver"
	UserRolePassenger UserRole = "passenger"
	UserRoleAdmin     UserRole = "admin"
)

type User struct {
	UID         string   `json:"uid" firestore:"-"`
	Email       string   `json:"email" firestore:"email"`
	DisplayName string   `json:"display_name" firestore:"displayName"`
	PhotoURL    string   `json:"photo_url" firestore:"photoUrl"`
	PhoneNumber string   `json:"phone_number" firestore:"phoneNumber"`
	Role        UserRole `json:"role" firestore:"role"`
	FCMToken    string   `json:"-" firestore:"fcmToken"`

	VehicleJumlahPenumpang int `json:"vehicle_jumlah_penumpang" firestore:"vehicleJumlahPenumpang"`

	// Contribution ledger. TotalPenumpangServed only ever grows;
	// ContributionPaidUpToCount trails it until the driver pays.
	TotalPenumpangServed        int64      `json:"total_penumpang_served" firestore:"totalPenumpangServed"`
	ContributionPaidUpToCount   int64      `json:"contribution_paid_up_to_count" firestore:"contributionPaidUpToCount"`
	ContributionLastPaidAt      *time.Time `json:"contribution_last_paid_at" firestore:"contributionLastPaidAt"`
	ContributionExemptUpdatedAt *time.Time `json:"-" firestore:"contributionExemptUpdatedAt"`

	// Violation ledger.
	OutstandingViolationFee   int64 `json:"outstanding_violation_fee" firestore:"outstandingViolationFee"`
	OutstandingViolationCount int64 `json:"outstanding_violation_count" firestore:"outstandingViolationCount"`

	// Soft delete with grace period. Both must be set before the retention
	// sweep removes the account for real.
	ScheduledDeletionAt *time.Time `json:"scheduled_deletion_at" firestore:"scheduledDeletionAt"`
	DeletedAt           *time.Time `json:"deleted_at" firestore:"deletedAt"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

func (u *User) IsDriver() bool {
	return u.Role == UserRoleDriver
}

// ContributionExemptList is the admin allow-list stored at
// app_config/contribution_exempt_drivers.
type ContributionExemptList struct {
	DriverUIDs []string `firestore:"driverUids"`
}
