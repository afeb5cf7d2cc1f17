package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/mahjong-booking/internal/model"
	"github.com/qs-lzh/mahjong-booking/internal/service"
)

// currentUserID reads the caller identity from the X-User-ID header.
// Authentication itself is handled upstream; the service only needs a
// stable identifier.
func currentUserID(ctx *gin.Context) (uint, bool) {
	raw := ctx.GetHeader("X-User-ID")
	if raw == "" {
		ctx.JSON(400, gin.H{
			"error":   "Missing identity",
			"message": "X-User-ID header is required",
		})
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(400, gin.H{
			"error":   "Invalid identity",
			"message": "X-User-ID must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(400, gin.H{
			"error":   "Invalid path parameter",
			"message": name + " must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

// respondError maps domain errors onto HTTP statuses. Anything unmatched is
// an internal error.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(404, gin.H{
			"error":   "Not found",
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrInvalidSchedule):
		ctx.JSON(400, gin.H{
			"error":   "Invalid schedule",
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrNotParticipant):
		ctx.JSON(403, gin.H{
			"error":   "Forbidden",
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrRosterFull),
		errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrBookingClosed),
		errors.Is(err, service.ErrTooCloseToStart),
		errors.Is(err, service.ErrTableConflict),
		errors.Is(err, service.ErrWrongStore),
		errors.Is(err, service.ErrTableOccupied),
		errors.Is(err, service.ErrPendingLimit),
		errors.Is(err, service.ErrOverlapSelf):
		ctx.JSON(409, gin.H{
			"error":   "Rejected",
			"message": err.Error(),
		})
	default:
		ctx.JSON(500, gin.H{
			"error":   "Internal server error",
			"message": "Failed to process request, please try again later",
		})
	}
}

func bookingView(b *model.Booking) gin.H {
	participants := make([]gin.H, 0, len(b.Participants))
	for i := range b.Participants {
		participants = append(participants, gin.H{
			"id":   b.Participants[i].ID,
			"name": b.Participants[i].Label(),
		})
	}
	view := gin.H{
		"id":           b.ID,
		"creator_id":   b.CreatorID,
		"store_id":     b.StoreID,
		"start_time":   b.StartTime,
		"end_time":     b.EndTime,
		"num_games":    b.NumGames,
		"status":       b.Status,
		"participants": participants,
		"created_at":   b.CreatedAt,
	}
	if b.TableID != nil {
		view["table_id"] = *b.TableID
	}
	return view
}

func bookingViews(bookings []model.Booking) []gin.H {
	views := make([]gin.H, 0, len(bookings))
	for i := range bookings {
		views = append(views, bookingView(&bookings[i]))
	}
	return views
}
