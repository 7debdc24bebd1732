package models

import (
	"time"
)

type OrderStatus string
type OrderType string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAgreed    OrderStatus = "agreed"
	OrderStatusActive    OrderStatus = "active"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"

	OrderTypeTravel      OrderType = "travel"
	OrderTypeKirimBarang OrderType = "kirim_barang"
)

// LacakBarangPayer names which party paid for package tracking.
type LacakBarangPayer string

const (
	LacakBarangPayerPassenger LacakBarangPayer = "passenger"
	LacakBarangPayerReceiver  LacakBarangPayer = "receiver"
)

// Order is one ride or delivery booking. Field names follow the Firestore
// document layout the mobile clients write.
type Order struct {
	ID            string      `json:"id" firestore:"-"`
	Status        OrderStatus `json:"status" firestore:"status"`
	OrderType     OrderType   `json:"order_type" firestore:"orderType"`
	DriverUID     string      `json:"driver_uid" firestore:"driverUid"`
	PassengerUID  string      `json:"passenger_uid" firestore:"passengerUid"`
	ReceiverUID   string      `json:"receiver_uid" firestore:"receiverUid"`
	DriverName    string      `json:"driver_name" firestore:"driverName"`
	PassengerName string      `json:"passenger_name" firestore:"passengerName"`
	JumlahKerabat int         `json:"jumlah_kerabat" firestore:"jumlahKerabat"`

	// Agreement and cancellation flags, set once by the clients. A replayed
	// write never flips them back.
	PassengerAgreed    bool `json:"passenger_agreed" firestore:"passengerAgreed"`
	DriverCancelled    bool `json:"driver_cancelled" firestore:"driverCancelled"`
	PassengerCancelled bool `json:"passenger_cancelled" firestore:"passengerCancelled"`

	DriverScannedAt    *time.Time `json:"driver_scanned_at" firestore:"driverScannedAt"`
	PassengerScannedAt *time.Time `json:"passenger_scanned_at" firestore:"passengerScannedAt"`

	LastMessageAt          *time.Time `json:"last_message_at" firestore:"lastMessageAt"`
	LastMessageSenderUID   string     `json:"last_message_sender_uid" firestore:"lastMessageSenderUid"`
	LastMessageText        string     `json:"last_message_text" firestore:"lastMessageText"`
	LastChatNotificationAt *time.Time `json:"last_chat_notification_at" firestore:"lastChatNotificationAt"`

	PassengerTrackDriverPaidAt *time.Time `json:"passenger_track_driver_paid_at" firestore:"passengerTrackDriverPaidAt"`
	PassengerLacakBarangPaidAt *time.Time `json:"passenger_lacak_barang_paid_at" firestore:"passengerLacakBarangPaidAt"`
	ReceiverLacakBarangPaidAt  *time.Time `json:"receiver_lacak_barang_paid_at" firestore:"receiverLacakBarangPaidAt"`

	CompletedAt *time.Time `json:"completed_at" firestore:"completedAt"`
	CreatedAt   time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" firestore:"updatedAt"`
}

func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// Counterparty returns the uid on the other side of the order chat. Empty
// when the sender is neither party.
func (o *Order) Counterparty(senderUID string) string {
	switch senderUID {
	case o.PassengerUID:
		return o.DriverUID
	case o.DriverUID:
		return o.PassengerUID
	default:
		return ""
	}
}
