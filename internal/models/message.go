package models

import "time"

type MessageType string

const (
	MessageTypeText             MessageType = "text"
	MessageTypeAudio            MessageType = "audio"
	MessageTypeImage            MessageType = "image"
	MessageTypeVideo            MessageType = "video"
	MessageTypeBarcodePassenger MessageType = "barcode_passenger"
	MessageTypeBarcodeDriver    MessageType = "barcode_driver"
)

// ChatMessage lives in the orders/{orderId}/messages subcollection.
type ChatMessage struct {
	ID            string      `json:"id" firestore:"-"`
	SenderUID     string      `json:"sender_uid" firestore:"senderUid"`
	Type          MessageType `json:"type" firestore:"type"`
	Text          string      `json:"text" firestore:"text"`
	AudioDuration int         `json:"audio_duration" firestore:"audioDuration"`
	MediaURL      string      `json:"media_url" firestore:"mediaUrl"`
	CreatedAt     time.Time   `json:"created_at" firestore:"createdAt"`
}
