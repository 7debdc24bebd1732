package edge

import (
	"traka/internal/models"
)

// Type identifies a state transition detected on an order or call document.
type Type string

const (
	TypeOrderCreated       Type = "order_created"
	TypeAgreementReached   Type = "agreement_reached"
	TypeDriverScanned      Type = "driver_scanned"
	TypePassengerScanned   Type = "passenger_scanned"
	TypeDriverCancelled    Type = "driver_cancelled"
	TypePassengerCancelled Type = "passenger_cancelled"
	TypeVoiceCallEnded     Type = "voice_call_ended"
)

// Event is one detected transition together with the after-state it was
// detected on.
type Event struct {
	Type    Type
	OrderID string
	Order   *models.Order
	Call    *models.VoiceCall
}

// DetectOrderCreate reports events for a freshly created order. A new order
// only matters once a driver is attached; orders created without one are
// silent.
func DetectOrderCreate(orderID string, after *models.Order) []Event {
	if after == nil || after.DriverUID == "" {
		return nil
	}
	return []Event{{Type: TypeOrderCreated, OrderID: orderID, Order: after}}
}

// DetectOrderUpdate compares two consecutive snapshots of the same order and
// reports every edge that flipped in this update. Each rule fires only on
// the transition itself, so redelivering the same (before, after) pair a
// second time yields the exact same events and replays of an already-flipped
// state yield none.
func DetectOrderUpdate(orderID string, before, after *models.Order) []Event {
	if before == nil || after == nil {
		return nil
	}

	var events []Event
	add := func(t Type) {
		events = append(events, Event{Type: t, OrderID: orderID, Order: after})
	}

	if !before.PassengerAgreed && after.PassengerAgreed &&
		after.Status == models.OrderStatusAgreed && after.DriverUID != "" {
		add(TypeAgreementReached)
	}
	if before.DriverScannedAt == nil && after.DriverScannedAt != nil {
		add(TypeDriverScanned)
	}
	if before.PassengerScannedAt == nil && after.PassengerScannedAt != nil {
		add(TypePassengerScanned)
	}
	if !before.DriverCancelled && after.DriverCancelled {
		add(TypeDriverCancelled)
	}
	if !before.PassengerCancelled && after.PassengerCancelled {
		add(TypePassengerCancelled)
	}
	return events
}

// DetectVoiceCallUpdate fires once when a call leaves its active state.
func DetectVoiceCallUpdate(callID string, before, after *models.VoiceCall) []Event {
	if before == nil || after == nil {
		return nil
	}
	if !before.IsTerminal() && after.IsTerminal() {
		return []Event{{Type: TypeVoiceCallEnded, OrderID: callID, Call: after}}
	}
	return nil
}
