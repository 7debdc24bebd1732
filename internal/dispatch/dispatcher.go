package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"traka/internal/edge"
	"traka/internal/models"
	"traka/internal/repositories/interfaces"
	"traka/internal/utils"
	"traka/pkg/logger"
	"traka/pkg/push"
)

// Dispatcher turns detected edges and chat messages into push notifications.
// Delivery is best-effort: a recipient without an account or token is
// skipped silently and provider errors are logged, never propagated, so the
// change feed keeps moving.
type Dispatcher struct {
	users    interfaces.UserRepository
	orders   interfaces.OrderRepository
	provider push.Provider
	logger   *logger.Logger
	cooldown time.Duration
	now      func() time.Time
}

func NewDispatcher(users interfaces.UserRepository, orders interfaces.OrderRepository, provider push.Provider, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		users:    users,
		orders:   orders,
		provider: provider,
		logger:   log,
		cooldown: utils.ChatNotificationCooldown,
		now:      time.Now,
	}
}

// DispatchOrderEvent sends the notification for one detected order edge.
func (d *Dispatcher) DispatchOrderEvent(ctx context.Context, ev edge.Event) error {
	order := ev.Order
	if order == nil {
		return nil
	}
	passengerName := displayOrDefault(order.PassengerName, "Penumpang")

	var (
		recipient        string
		title, body      string
		notificationType string
		extra            map[string]string
	)

	switch ev.Type {
	case edge.TypeOrderCreated:
		recipient = order.DriverUID
		title = "Permintaan travel baru"
		body = fmt.Sprintf("%s ingin pesan travel. Buka chat untuk kesepakatan harga.", passengerName)
		notificationType = utils.NotificationTypeOrder
		extra = map[string]string{"passengerName": passengerName}

	case edge.TypeAgreementReached:
		recipient = order.DriverUID
		title = "Kesepakatan telah terjadi"
		body = fmt.Sprintf("%s telah menyetujui kesepakatan. Pesanan aktif.", passengerName)
		notificationType = utils.NotificationTypeAgreed
		extra = map[string]string{"passengerName": passengerName}

	case edge.TypeDriverScanned:
		recipient = order.PassengerUID
		title = "Anda sudah dijemput"
		body = "Driver telah memindai barcode Anda. Anda tercatat naik. Saat sampai tujuan, scan barcode driver."
		notificationType = utils.NotificationTypePickedUp

	case edge.TypePassengerScanned:
		recipient = order.DriverUID
		title = "Penumpang sudah sampai"
		body = fmt.Sprintf("%s telah memindai barcode. Perjalanan selesai.", passengerName)
		notificationType = utils.NotificationTypeDone

	case edge.TypeDriverCancelled:
		recipient = order.PassengerUID
		title = "Pembatalan pesanan"
		body = "Driver telah membatalkan pesanan. Buka Data Order untuk konfirmasi pembatalan."
		notificationType = utils.NotificationTypeCancel
		extra = map[string]string{"initiator": "driver"}

	case edge.TypePassengerCancelled:
		recipient = order.DriverUID
		title = "Pembatalan pesanan"
		body = fmt.Sprintf("%s telah membatalkan pesanan. Buka Data Order untuk konfirmasi pembatalan.", passengerName)
		notificationType = utils.NotificationTypeCancel
		extra = map[string]string{"initiator": "passenger"}

	default:
		return nil
	}

	if recipient == "" {
		return nil
	}

	data := map[string]string{
		"type":    notificationType,
		"orderId": ev.OrderID,
	}
	for k, v := range extra {
		data[k] = v
	}

	sent := d.sendToUser(ctx, recipient, title, body, data)
	d.logger.LogNotificationEvent(recipient, notificationType, ev.OrderID, sent)
	return nil
}

// DispatchChatMessage handles a new chat message: it always refreshes the
// order's unread-badge fields, and pushes a notification to the counterparty
// unless one was already sent for this order inside the cooldown window.
func (d *Dispatcher) DispatchChatMessage(ctx context.Context, orderID string, msg *models.ChatMessage) error {
	notificationText, previewText := messageTexts(msg)

	order, err := d.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load order for chat dispatch: %w", err)
	}

	recipient := order.Counterparty(msg.SenderUID)
	if recipient == "" {
		// Sender is neither party; nothing to notify, nothing to badge.
		return nil
	}

	senderName := displayOrDefault(order.PassengerName, "Penumpang")
	if msg.SenderUID == order.DriverUID {
		senderName = d.driverName(ctx, order)
	}

	inCooldown := order.LastChatNotificationAt != nil &&
		d.now().Sub(*order.LastChatNotificationAt) < d.cooldown

	preview := utils.TruncateRunes(previewText, utils.MessagePreviewMaxLen)
	if err := d.orders.RecordChatPreview(ctx, orderID, msg.SenderUID, preview, !inCooldown); err != nil {
		return fmt.Errorf("failed to record chat preview: %w", err)
	}

	if inCooldown {
		return nil
	}

	sent := d.sendToUser(ctx, recipient, senderName,
		utils.TruncateRunes(notificationText, utils.NotificationBodyMaxLen),
		map[string]string{
			"type":        utils.NotificationTypeChat,
			"orderId":     orderID,
			"messageType": string(msg.Type),
			"senderName":  senderName,
		})
	d.logger.LogNotificationEvent(recipient, utils.NotificationTypeChat, orderID, sent)
	return nil
}

// DispatchTransferCreated notifies the target driver of a handoff request.
func (d *Dispatcher) DispatchTransferCreated(ctx context.Context, transferID string, transfer *models.DriverTransfer) error {
	if transfer.ToDriverUID == "" {
		return nil
	}

	fromName := "Driver"
	if transfer.FromDriverUID != "" {
		if from, err := d.users.GetByUID(ctx, transfer.FromDriverUID); err == nil {
			fromName = displayOrDefault(from.DisplayName, "Driver")
		}
	}

	sent := d.sendToUser(ctx, transfer.ToDriverUID, "Oper Driver",
		fmt.Sprintf("%s ingin mengoper penumpang ke Anda. Buka Data Order > Oper ke Saya.", fromName),
		map[string]string{
			"type":       utils.NotificationTypeTransfer,
			"transferId": transferID,
		})
	d.logger.LogNotificationEvent(transfer.ToDriverUID, utils.NotificationTypeTransfer, transfer.OrderID, sent)
	return nil
}

// Broadcast pushes one message to every device subscribed to the broadcast
// topic.
func (d *Dispatcher) Broadcast(ctx context.Context, title, body string) error {
	_, err := d.provider.SendNotification(ctx, &push.NotificationRequest{
		Topic:   utils.BroadcastTopic,
		Title:   title,
		Body:    body,
		Android: &push.AndroidOptions{Priority: utils.AndroidPriorityHigh},
	})
	if err != nil {
		return fmt.Errorf("failed to send broadcast: %w", err)
	}
	return nil
}

func (d *Dispatcher) sendToUser(ctx context.Context, uid, title, body string, data map[string]string) bool {
	user, err := d.users.GetByUID(ctx, uid)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			d.logger.WithError(err).WithUID(uid).Error("Failed to load notification recipient")
		}
		return false
	}
	if user.FCMToken == "" {
		d.logger.WithUID(uid).Debug("Recipient has no device token, skipping push")
		return false
	}

	_, err = d.provider.SendNotification(ctx, &push.NotificationRequest{
		Token: user.FCMToken,
		Title: title,
		Body:  body,
		Data:  data,
		Android: &push.AndroidOptions{
			Priority:  utils.AndroidPriorityHigh,
			ChannelID: utils.AndroidChatChannelID,
		},
	})
	if err != nil {
		d.logger.WithError(err).WithUID(uid).Error("Failed to send push notification")
		return false
	}
	return true
}

func (d *Dispatcher) driverName(ctx context.Context, order *models.Order) string {
	if name := strings.TrimSpace(order.DriverName); name != "" {
		return name
	}
	if order.DriverUID != "" {
		if driver, err := d.users.GetByUID(ctx, order.DriverUID); err == nil {
			if name := strings.TrimSpace(driver.DisplayName); name != "" {
				return name
			}
		}
	}
	return "Driver"
}

// messageTexts maps a message onto its notification body and chat-list
// preview. Non-text messages get a media glyph instead of content.
func messageTexts(msg *models.ChatMessage) (notification, preview string) {
	text := strings.TrimSpace(msg.Text)
	if msg.Type == models.MessageTypeText && text != "" {
		return text, text
	}

	switch msg.Type {
	case models.MessageTypeAudio:
		label := "🎤 Pesan suara"
		if msg.AudioDuration > 0 {
			label = fmt.Sprintf("🎤 Pesan suara (%ds)", msg.AudioDuration)
		}
		return label, label
	case models.MessageTypeImage:
		return "📷 Foto", "📷 Foto"
	case models.MessageTypeVideo:
		return "🎥 Video", "🎥 Video"
	case models.MessageTypeBarcodePassenger, models.MessageTypeBarcodeDriver:
		return "📷 Barcode", "📷 Barcode"
	default:
		return "Pesan baru", "Pesan baru"
	}
}

func displayOrDefault(name, fallback string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return fallback
}
