package models

import "time"

type VoiceCallStatus string

const (
	VoiceCallStatusActive   VoiceCallStatus = "active"
	VoiceCallStatusEnded    VoiceCallStatus = "ended"
	VoiceCallStatusRejected VoiceCallStatus = "rejected"
)

// VoiceCall is transient WebRTC signaling state keyed by order id, with ICE
// candidates in a voice_calls/{orderId}/ice subcollection. Deleted in full
// once the call reaches a terminal status.
type VoiceCall struct {
	ID        string          `json:"id" firestore:"-"`
	Status    VoiceCallStatus `json:"status" firestore:"status"`
	CallerUID string          `json:"caller_uid" firestore:"callerUid"`
	CalleeUID string          `json:"callee_uid" firestore:"calleeUid"`
	CreatedAt time.Time       `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time       `json:"updated_at" firestore:"updatedAt"`
}

func (v *VoiceCall) IsTerminal() bool {
	return v.Status == VoiceCallStatusEnded || v.Status == VoiceCallStatusRejected
}
