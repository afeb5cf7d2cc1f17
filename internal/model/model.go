package model

import (
	"time"
)

type User struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:150;not null;uniqueIndex"`
	DisplayName string `gorm:"size:150"`
}

// Label is the name shown to other players: display name falling back to
// the login name.
func (u *User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}

type Store struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"size:100;not null;uniqueIndex"`
	Address string `gorm:"size:255"`

	Tables []MahjongTable `gorm:"constraint:OnDelete:CASCADE"`
}

type MahjongTable struct {
	ID          uint   `gorm:"primaryKey"`
	StoreID     uint   `gorm:"not null;uniqueIndex:idx_store_table"`
	TableNumber string `gorm:"size:20;not null;uniqueIndex:idx_store_table"`
	Alias       string `gorm:"size:50"`
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCanceled  BookingStatus = "CANCELED"
	StatusExpired   BookingStatus = "EXPIRED"
	StatusCompleted BookingStatus = "COMPLETED"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCanceled || s == StatusExpired || s == StatusCompleted
}

const (
	// GameDuration is the scheduling length of one 半庄 (game session).
	GameDuration = 45 * time.Minute
	// MaxParticipants is the roster size at which a booking confirms.
	MaxParticipants = 4
)

type Booking struct {
	ID               uint          `gorm:"primaryKey"`
	CreatorID        uint          `gorm:"not null;index"`
	StoreID          uint          `gorm:"not null;index"`
	TableID          *uint         `gorm:"index"`
	StartTime        time.Time     `gorm:"not null;index"`
	EndTime          time.Time     `gorm:"not null"`
	NumGames         int           `gorm:"not null;default:1"`
	ParticipantCount int           `gorm:"not null;default:0"`
	Status           BookingStatus `gorm:"type:varchar(10);not null;index"`
	CreatedAt        time.Time

	Participants []User `gorm:"many2many:booking_participants"`
}

type GamePhase string

const (
	PhaseNotStarted GamePhase = "NOT_STARTED"
	PhaseInProgress GamePhase = "IN_PROGRESS"
	PhaseCompleted  GamePhase = "COMPLETED"
)

// Phase classifies a confirmed booking against the wall clock.
func (b *Booking) Phase(now time.Time) GamePhase {
	switch {
	case now.Before(b.StartTime):
		return PhaseNotStarted
	case now.Before(b.EndTime):
		return PhaseInProgress
	default:
		return PhaseCompleted
	}
}

// Overlaps reports whether [b.StartTime, b.EndTime) intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
