package utils

import "time"

// Application Constants
const (
	AppName    = "Traka"
	AppVersion = "1.0.0"

	// Default values
	DefaultLanguage    = "id"
	DefaultCountryCode = "+62"
	DefaultTimeZone    = "Asia/Jakarta"
	DefaultPackageName = "id.traka.app"

	// Authentication
	OTPExpiry = 10 * time.Minute
	OTPMin    = 100000
	OTPMax    = 999999

	// Chat
	ChatNotificationCooldown = 60 * time.Second
	NotificationBodyMaxLen   = 150
	MessagePreviewMaxLen     = 100

	// Contribution / violations
	ContributionExemptValue  = 999999
	DefaultViolationFee      = 5000
	ContributionProductID    = "traka_contribution_once"
	TrackDriverProductID     = "traka_lacak_driver"
	LacakBarangProductID     = "traka_lacak_barang_7500"
	ViolationFeeProductID    = "traka_violation_fee_5000"
	BroadcastTopic           = "traka_broadcast"
	AndroidChatChannelID     = "traka_chat"
	AndroidPriorityHigh      = "high"
	NotificationTypeOrder    = "order"
	NotificationTypeAgreed   = "order_agreed"
	NotificationTypeChat     = "chat"
	NotificationTypePickedUp = "order_picked_up"
	NotificationTypeDone     = "order_completed"
	NotificationTypeCancel   = "order_cancellation"
	NotificationTypeTransfer = "driver_transfer"

	// Contacts lookup
	MaxContactLookup   = 50
	FirestoreInMaxSize = 30

	// Retention
	DeleteBatchSize        = 400
	VoiceCallSweepLimit    = 50
	AccountSweepLimit      = 20
	OrderChatSweepLimit    = 50
	TerminalCallRetention  = 24 * time.Hour
	CompletedChatRetention = 24 * time.Hour

	// Response status
	StatusSuccess = "success"
	StatusError   = "error"
)
