package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/mahjong-booking/internal/app"
)

// RegisterRoutes mounts every endpoint on the router.
func RegisterRoutes(router *gin.Engine, app *app.App) {
	users := NewUserHandler(app)
	stores := NewStoreHandler(app)
	bookings := NewBookingHandler(app)
	admin := NewAdminHandler(app)

	router.POST("/users", users.HandleRegister)

	router.GET("/stores", stores.HandleList)
	router.GET("/stores/:id/status", stores.HandleStatus)
	router.GET("/stores/:id/timetable", stores.HandleTimetable)
	router.GET("/stores/:id/timetable/export", stores.HandleExport)
	router.POST("/stores/:id/bookings", bookings.HandleCreate)

	router.GET("/bookings/pending", bookings.HandlePending)
	router.POST("/bookings/:id/join", bookings.HandleJoin)
	router.POST("/bookings/:id/leave", bookings.HandleLeave)

	router.GET("/my/bookings", bookings.HandleMyBookings)
	router.GET("/my/games", bookings.HandleMyGames)

	router.POST("/bookings/:id/table", admin.HandleAssignTable)
	router.POST("/bookings/:id/cancel", admin.HandleCancel)
	router.POST("/tables/:id/walkin", admin.HandleWalkIn)
	router.POST("/admin/sweep", admin.HandleSweep)
}
