package mq

// Queue names and message definitions

// immediate queue from the booking service to the notification worker
// deliver messages about booking lifecycle changes the participants
// should hear about
const (
	BookingNotificationQueue = "booking.notification.immediate"
)

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingReopened  = "booking.reopened"
	EventBookingCanceled  = "booking.canceled"
	EventSweep            = "booking.sweep"
)

type BookingEventMessage struct {
	Event     string `json:"event"`
	BookingID uint   `json:"booking_id,omitempty"`
	StoreID   uint   `json:"store_id,omitempty"`
	UserIDs   []uint `json:"user_ids,omitempty"`
	Note      string `json:"note,omitempty"`
}
