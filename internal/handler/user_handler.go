package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/internal/app"
	"github.com/qs-lzh/mahjong-booking/internal/model"
)

type UserHandler struct {
	app *app.App
}

func NewUserHandler(app *app.App) *UserHandler {
	return &UserHandler{
		app: app,
	}
}

type RegisterUserRequest struct {
	Name        string `json:"name" binding:"required"`
	DisplayName string `json:"display_name"`
}

// HandleRegister is the thin identity shim: real authentication lives in
// front of this service, the booking core only needs the user row.
func (h *UserHandler) HandleRegister(ctx *gin.Context) {
	var req RegisterUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	if _, err := h.app.UserRepo.GetByName(req.Name); err == nil {
		ctx.JSON(409, gin.H{
			"error":   "Rejected",
			"message": "user name already taken",
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(ctx, err)
		return
	}

	user := &model.User{
		Name:        req.Name,
		DisplayName: req.DisplayName,
	}
	if err := h.app.UserRepo.Create(user); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(201, gin.H{
		"id":   user.ID,
		"name": user.Label(),
	})
}
