package models

import "time"

// DriverTransfer is an ephemeral handoff record; creating one notifies the
// target driver.
type DriverTransfer struct {
	ID            string    `json:"id" firestore:"-"`
	FromDriverUID string    `json:"from_driver_uid" firestore:"fromDriverUid"`
	ToDriverUID   string    `json:"to_driver_uid" firestore:"toDriverUid"`
	OrderID       string    `json:"order_id" firestore:"orderId"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
}
