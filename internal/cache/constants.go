package cache

import (
	"fmt"
	"time"
)

// Dashboard views are cheap to rebuild, so they only live in redis for a
// short window and are dropped on every booking mutation.
const (
	StoreStatusTTL     = 30 * time.Second
	PendingBookingsTTL = 15 * time.Second
)

// PendingBookingsKey caches the joinable-bookings list.
const PendingBookingsKey = "bookings:pending"

func MakeStoreStatusKey(storeID uint) string {
	return fmt.Sprintf("store:%d:status", storeID)
}
