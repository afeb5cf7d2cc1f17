package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/mahjong-booking/internal/app"
)

// AdminHandler covers the staff console actions: table assignment,
// cancellation, walk-in games and the manual sweep trigger.
type AdminHandler struct {
	app *app.App
}

func NewAdminHandler(app *app.App) *AdminHandler {
	return &AdminHandler{
		app: app,
	}
}

type AssignTableRequest struct {
	TableID uint `json:"table_id" binding:"required"`
}

func (h *AdminHandler) HandleAssignTable(ctx *gin.Context) {
	bookingID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req AssignTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	booking, err := h.app.BookingWorkflow.AssignTable(bookingID, req.TableID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"message": "Table assigned",
		"booking": bookingView(booking),
	})
}

func (h *AdminHandler) HandleCancel(ctx *gin.Context) {
	bookingID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	booking, err := h.app.BookingWorkflow.Cancel(bookingID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"message": "Booking canceled",
		"booking": bookingView(booking),
	})
}

type WalkInRequest struct {
	NumGames int `json:"num_games"`
}

func (h *AdminHandler) HandleWalkIn(ctx *gin.Context) {
	staffID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	tableID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req WalkInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && ctx.Request.ContentLength > 0 {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	booking, err := h.app.BookingWorkflow.WalkIn(staffID, tableID, req.NumGames)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(201, gin.H{
		"message": "Walk-in game created",
		"booking": bookingView(booking),
	})
}

func (h *AdminHandler) HandleSweep(ctx *gin.Context) {
	summary, err := h.app.SweepWorkflow.Run()
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"message": summary.String(),
		"summary": summary,
	})
}
