package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/mahjong-booking/internal/app"
)

type BookingHandler struct {
	app *app.App
}

func NewBookingHandler(app *app.App) *BookingHandler {
	return &BookingHandler{
		app: app,
	}
}

type CreateBookingRequest struct {
	StartTime time.Time  `json:"start_time" binding:"required"`
	EndTime   *time.Time `json:"end_time"`
	NumGames  int        `json:"num_games"`
}

func (h *BookingHandler) HandleCreate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	storeID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	var end time.Time
	if req.EndTime != nil {
		end = *req.EndTime
	}
	booking, err := h.app.BookingWorkflow.Create(userID, storeID, req.StartTime, end, req.NumGames)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(201, gin.H{
		"message": "Booking created, waiting for players",
		"booking": bookingView(booking),
	})
}

func (h *BookingHandler) HandleJoin(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	bookingID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	booking, confirmed, err := h.app.BookingWorkflow.Join(userID, bookingID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	message := "Joined the booking"
	if confirmed {
		message = "Joined the booking; the table of four is now confirmed"
	}
	ctx.JSON(200, gin.H{
		"message":   message,
		"confirmed": confirmed,
		"booking":   bookingView(booking),
	})
}

func (h *BookingHandler) HandleLeave(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	bookingID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	result, err := h.app.BookingWorkflow.Leave(userID, bookingID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if result.Deleted {
		ctx.JSON(200, gin.H{
			"message": "You left and the empty booking was removed",
			"deleted": true,
		})
		return
	}
	message := "You left the booking"
	if result.Reopened {
		message = "You left; the booking is open for new players again"
	}
	ctx.JSON(200, gin.H{
		"message":  message,
		"deleted":  false,
		"reopened": result.Reopened,
		"booking":  bookingView(result.Booking),
	})
}

func (h *BookingHandler) HandlePending(ctx *gin.Context) {
	bookings, err := h.app.BookingWorkflow.PendingBookings()
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"bookings": bookingViews(bookings),
	})
}

func (h *BookingHandler) HandleMyBookings(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	bookings, err := h.app.BookingWorkflow.MyBookings(userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"bookings": bookingViews(bookings),
	})
}

func (h *BookingHandler) HandleMyGames(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	games, phases, err := h.app.BookingWorkflow.MyGames(userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"games":        bookingViews(games),
		"phase_counts": phases,
	})
}
