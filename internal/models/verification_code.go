package models

import "time"

// CodeScope names one of the independent verification-code flows. Each scope
// maps to its own Firestore collection, so codes never collide across flows.
type CodeScope string

const (
	CodeScopeSignup         CodeScope = "verification_codes"       // keyed by email
	CodeScopeForgotPassword CodeScope = "forgot_password_codes"    // keyed by email, carries uid
	CodeScopeLogin          CodeScope = "login_verification_codes" // keyed by uid
)

// VerificationCode is a single-use 6-digit code with a 10-minute window.
// Deleted on successful validation or on detected expiry.
type VerificationCode struct {
	Code      string    `json:"-" firestore:"code"`
	ExpiresAt time.Time `json:"expires_at" firestore:"expiresAt"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`

	// Payload fields, set per scope.
	UID   string `json:"-" firestore:"uid,omitempty"`
	Email string `json:"-" firestore:"email,omitempty"`
}

func (v *VerificationCode) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
