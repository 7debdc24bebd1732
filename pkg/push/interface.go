package push

import "context"

// NotificationRequest targets a single device token or a topic, never both.
type NotificationRequest struct {
	Token   string
	Topic   string
	Title   string
	Body    string
	Data    map[string]string
	Android *AndroidOptions
}

type AndroidOptions struct {
	Priority  string
	ChannelID string
	Sound     string
}

type NotificationResponse struct {
	MessageID string
	Success   bool
	Error     string
	Token     string
}

type Provider interface {
	SendNotification(ctx context.Context, request *NotificationRequest) (*NotificationResponse, error)
}
