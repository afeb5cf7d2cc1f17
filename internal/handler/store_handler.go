package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/mahjong-booking/internal/app"
	"github.com/qs-lzh/mahjong-booking/internal/export"
	"github.com/qs-lzh/mahjong-booking/internal/service/domain"
)

type StoreHandler struct {
	app *app.App
}

func NewStoreHandler(app *app.App) *StoreHandler {
	return &StoreHandler{
		app: app,
	}
}

func (h *StoreHandler) HandleList(ctx *gin.Context) {
	stores, err := h.app.StoreService.ListStores()
	if err != nil {
		respondError(ctx, err)
		return
	}
	views := make([]gin.H, 0, len(stores))
	for i := range stores {
		store := &stores[i]
		tables := make([]gin.H, 0, len(store.Tables))
		for j := range store.Tables {
			tables = append(tables, gin.H{
				"id":           store.Tables[j].ID,
				"table_number": store.Tables[j].TableNumber,
				"alias":        store.Tables[j].Alias,
			})
		}
		views = append(views, gin.H{
			"id":      store.ID,
			"name":    store.Name,
			"address": store.Address,
			"tables":  tables,
		})
	}
	ctx.JSON(200, gin.H{
		"stores": views,
	})
}

func (h *StoreHandler) HandleStatus(ctx *gin.Context) {
	storeID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	status, err := h.app.ScheduleWorkflow.StoreStatus(storeID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, status)
}

func (h *StoreHandler) HandleTimetable(ctx *gin.Context) {
	storeID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var from time.Time
	if raw := ctx.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(400, gin.H{
				"error":   "Invalid request format",
				"message": "from must be RFC3339",
			})
			return
		}
		from = parsed
	}
	hours := 0
	if raw := ctx.Query("hours"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &hours); err != nil {
			ctx.JSON(400, gin.H{
				"error":   "Invalid request format",
				"message": "hours must be an integer",
			})
			return
		}
	}

	grid, err := h.app.ScheduleWorkflow.Timetable(storeID, from, hours)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, grid)
}

// HandleExport streams an xlsx workbook with one sheet per requested day.
func (h *StoreHandler) HandleExport(ctx *gin.Context) {
	storeID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	day := time.Now()
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			ctx.JSON(400, gin.H{
				"error":   "Invalid request format",
				"message": "date must be YYYY-MM-DD",
			})
			return
		}
		day = parsed
	}
	days := 1
	if raw := ctx.Query("days"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &days); err != nil || days < 1 || days > 31 {
			ctx.JSON(400, gin.H{
				"error":   "Invalid request format",
				"message": "days must be between 1 and 31",
			})
			return
		}
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)

	workbook := export.NewTimetableWorkbook()
	var store string
	for i := 0; i < days; i++ {
		grid, err := h.app.ScheduleWorkflow.Timetable(storeID, dayStart.AddDate(0, 0, i), domain.TimetableHours)
		if err != nil {
			respondError(ctx, err)
			return
		}
		if err := workbook.AddTimetable(grid); err != nil {
			respondError(ctx, err)
			return
		}
		store = grid.Store.Name
	}

	filename := fmt.Sprintf("%s-%s.xlsx", store, dayStart.Format("2006-01-02"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Save(ctx.Writer); err != nil {
		respondError(ctx, err)
	}
}
