package triggers

import (
	"context"
	"fmt"

	"traka/internal/dispatch"
	"traka/internal/edge"
	"traka/internal/feed"
	"traka/internal/ledger"
	"traka/internal/models"
	"traka/internal/otp"
	"traka/internal/retention"
	"traka/pkg/logger"
)

// Triggers binds the change feed to the domain services. Each handler
// decodes the raw snapshots, runs edge detection where updates are involved
// and forwards the result. Handlers stay idempotent: everything downstream
// keys off monotone transitions or replace-style writes.
type Triggers struct {
	dispatcher *dispatch.Dispatcher
	accountant *ledger.Accountant
	otpService *otp.Service
	sweeper    *retention.Sweeper
	logger     *logger.Logger
}

func New(
	dispatcher *dispatch.Dispatcher,
	accountant *ledger.Accountant,
	otpService *otp.Service,
	sweeper *retention.Sweeper,
	log *logger.Logger,
) *Triggers {
	return &Triggers{
		dispatcher: dispatcher,
		accountant: accountant,
		otpService: otpService,
		sweeper:    sweeper,
		logger:     log,
	}
}

// Register wires every document pattern the engine reacts to.
func (t *Triggers) Register(router *feed.Router) {
	router.OnCreate("orders/{orderId}", t.onOrderCreated)
	router.OnUpdate("orders/{orderId}", t.onOrderUpdated)
	router.OnCreate("orders/{orderId}/messages/{messageId}", t.onChatMessageCreated)
	router.OnCreate("driver_transfers/{transferId}", t.onDriverTransferCreated)
	router.OnCreate("verification_codes/{email}", t.onSignupCodeCreated)
	router.OnUpdate("voice_calls/{orderId}", t.onVoiceCallUpdated)
}

// Watches lists the collections the feed source must listen on for the
// registered patterns to ever match.
func Watches() []feed.Watch {
	return []feed.Watch{
		{Collection: "orders"},
		{Collection: "messages", Group: true},
		{Collection: "driver_transfers"},
		{Collection: "verification_codes"},
		{Collection: "voice_calls"},
	}
}

func (t *Triggers) onOrderCreated(ctx context.Context, ev *feed.Event) error {
	order, err := decodeOrder(ev.After, ev.Params["orderId"])
	if err != nil {
		return err
	}

	for _, detected := range edge.DetectOrderCreate(ev.Params["orderId"], order) {
		if err := t.dispatcher.DispatchOrderEvent(ctx, detected); err != nil {
			return err
		}
	}
	return nil
}

func (t *Triggers) onOrderUpdated(ctx context.Context, ev *feed.Event) error {
	orderID := ev.Params["orderId"]

	before, err := decodeOrder(ev.Before, orderID)
	if err != nil {
		return err
	}
	after, err := decodeOrder(ev.After, orderID)
	if err != nil {
		return err
	}

	for _, detected := range edge.DetectOrderUpdate(orderID, before, after) {
		if err := t.dispatcher.DispatchOrderEvent(ctx, detected); err != nil {
			t.logger.WithError(err).WithOrderID(orderID).Error("Failed to dispatch order event")
		}
		if detected.Type == edge.TypePassengerScanned {
			if err := t.accountant.RecordPassengerDropoff(ctx, detected.Order); err != nil {
				t.logger.WithError(err).WithOrderID(orderID).Error("Failed to record passenger dropoff")
			}
		}
	}
	return nil
}

func (t *Triggers) onChatMessageCreated(ctx context.Context, ev *feed.Event) error {
	if ev.After == nil || !ev.After.Exists() {
		return nil
	}

	var msg models.ChatMessage
	if err := ev.After.DataTo(&msg); err != nil {
		return fmt.Errorf("failed to decode chat message: %w", err)
	}
	msg.ID = ev.Params["messageId"]

	return t.dispatcher.DispatchChatMessage(ctx, ev.Params["orderId"], &msg)
}

func (t *Triggers) onDriverTransferCreated(ctx context.Context, ev *feed.Event) error {
	if ev.After == nil || !ev.After.Exists() {
		return nil
	}

	var transfer models.DriverTransfer
	if err := ev.After.DataTo(&transfer); err != nil {
		return fmt.Errorf("failed to decode driver transfer: %w", err)
	}
	transfer.ID = ev.Params["transferId"]

	return t.dispatcher.DispatchTransferCreated(ctx, transfer.ID, &transfer)
}

func (t *Triggers) onSignupCodeCreated(ctx context.Context, ev *feed.Event) error {
	if ev.After == nil || !ev.After.Exists() {
		return nil
	}

	var code models.VerificationCode
	if err := ev.After.DataTo(&code); err != nil {
		return fmt.Errorf("failed to decode verification code: %w", err)
	}

	return t.otpService.HandleSignupCodeCreated(ctx, ev.Params["email"], &code)
}

func (t *Triggers) onVoiceCallUpdated(ctx context.Context, ev *feed.Event) error {
	callID := ev.Params["orderId"]

	before, err := decodeVoiceCall(ev.Before, callID)
	if err != nil {
		return err
	}
	after, err := decodeVoiceCall(ev.After, callID)
	if err != nil {
		return err
	}

	for range edge.DetectVoiceCallUpdate(callID, before, after) {
		if err := t.sweeper.CleanupVoiceCall(ctx, callID); err != nil {
			return err
		}
	}
	return nil
}

func decodeOrder(snap feed.Snapshot, id string) (*models.Order, error) {
	if snap == nil || !snap.Exists() {
		return nil, nil
	}
	var order models.Order
	if err := snap.DataTo(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	order.ID = id
	return &order, nil
}

func decodeVoiceCall(snap feed.Snapshot, id string) (*models.VoiceCall, error) {
	if snap == nil || !snap.Exists() {
		return nil, nil
	}
	var call models.VoiceCall
	if err := snap.DataTo(&call); err != nil {
		return nil, fmt.Errorf("failed to decode voice call: %w", err)
	}
	call.ID = id
	return &call, nil
}
