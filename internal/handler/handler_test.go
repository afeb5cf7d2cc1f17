package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/config"
	"github.com/qs-lzh/mahjong-booking/internal/app"
	"github.com/qs-lzh/mahjong-booking/internal/model"
)

func newTestServer(t *testing.T) (*gin.Engine, *app.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	application := app.New(&config.Config{}, db, nil, nil, nil)
	require.NoError(t, application.Init())

	router := gin.New()
	RegisterRoutes(router, application)
	return router, application
}

func registerUser(t *testing.T, application *app.App, name string) uint {
	t.Helper()
	user := &model.User{Name: name}
	require.NoError(t, application.UserRepo.Create(user))
	return user.ID
}

// do sends a JSON request and decodes the JSON response body.
func do(t *testing.T, router *gin.Engine, method, path string, userID uint, body any) (int, map[string]any) {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("X-User-ID", fmt.Sprintf("%d", userID))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

func createBooking(t *testing.T, router *gin.Engine, userID, storeID uint, start time.Time, numGames int) uint {
	t.Helper()
	code, body := do(t, router, http.MethodPost, fmt.Sprintf("/stores/%d/bookings", storeID), userID, gin.H{
		"start_time": start.Format(time.RFC3339),
		"num_games":  numGames,
	})
	require.Equal(t, 201, code, "body: %v", body)
	booking := body["booking"].(map[string]any)
	return uint(booking["id"].(float64))
}

func TestRegisterUser(t *testing.T) {
	router, _ := newTestServer(t)

	code, body := do(t, router, http.MethodPost, "/users", 0, gin.H{"name": "雀士甲"})
	require.Equal(t, 201, code)
	assert.Equal(t, "雀士甲", body["name"])

	code, _ = do(t, router, http.MethodPost, "/users", 0, gin.H{"name": "雀士甲"})
	assert.Equal(t, 409, code)

	code, _ = do(t, router, http.MethodPost, "/users", 0, gin.H{})
	assert.Equal(t, 400, code)
}

func TestListStoresSeeded(t *testing.T) {
	router, _ := newTestServer(t)

	code, body := do(t, router, http.MethodGet, "/stores", 0, nil)
	require.Equal(t, 200, code)
	stores := body["stores"].([]any)
	require.Len(t, stores, 4)
	first := stores[0].(map[string]any)
	assert.Equal(t, "大钟寺", first["name"])
	assert.Len(t, first["tables"].([]any), 4)
}

func TestCreateBooking(t *testing.T) {
	router, application := newTestServer(t)
	userID := registerUser(t, application, "玩家1")
	start := time.Now().Add(2 * time.Hour).Truncate(time.Second)

	code, body := do(t, router, http.MethodPost, "/stores/1/bookings", userID, gin.H{
		"start_time": start.Format(time.RFC3339),
		"num_games":  2,
	})
	require.Equal(t, 201, code)
	booking := body["booking"].(map[string]any)
	assert.Equal(t, "PENDING", booking["status"])
	assert.Len(t, booking["participants"].([]any), 1)
	assert.EqualValues(t, 2, booking["num_games"])
}

func TestCreateBookingRequiresIdentity(t *testing.T) {
	router, _ := newTestServer(t)

	code, _ := do(t, router, http.MethodPost, "/stores/1/bookings", 0, gin.H{
		"start_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, 400, code)
}

func TestCreateBookingRejectsInvertedInterval(t *testing.T) {
	router, application := newTestServer(t)
	userID := registerUser(t, application, "玩家1")
	start := time.Now().Add(2 * time.Hour)
	end := start.Add(-time.Hour)

	code, _ := do(t, router, http.MethodPost, "/stores/1/bookings", userID, gin.H{
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	})
	assert.Equal(t, 400, code)
}

func TestCreateBookingUnknownStore(t *testing.T) {
	router, application := newTestServer(t)
	userID := registerUser(t, application, "玩家1")

	code, _ := do(t, router, http.MethodPost, "/stores/999/bookings", userID, gin.H{
		"start_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, 404, code)
}

func TestJoinUntilConfirmed(t *testing.T) {
	router, application := newTestServer(t)
	var users []uint
	for i := 1; i <= 5; i++ {
		users = append(users, registerUser(t, application, fmt.Sprintf("玩家%d", i)))
	}
	bookingID := createBooking(t, router, users[0], 1, time.Now().Add(2*time.Hour), 2)

	for i := 1; i <= 2; i++ {
		code, body := do(t, router, http.MethodPost, fmt.Sprintf("/bookings/%d/join", bookingID), users[i], nil)
		require.Equal(t, 200, code)
		assert.Equal(t, false, body["confirmed"])
	}

	code, body := do(t, router, http.MethodPost, fmt.Sprintf("/bookings/%d/join", bookingID), users[3], nil)
	require.Equal(t, 200, code)
	assert.Equal(t, true, body["confirmed"])
	booking := body["booking"].(map[string]any)
	assert.Equal(t, "CONFIRMED", booking["status"])

	// table is full
	code, _ = do(t, router, http.MethodPost, fmt.Sprintf("/bookings/%d/join", bookingID), users[4], nil)
	assert.Equal(t, 409, code)
}

func TestLeaveLastParticipantDeletes(t *testing.T) {
	router, application := newTestServer(t)
	userID := registerUser(t, application, "玩家1")
	bookingID := createBooking(t, router, userID, 1, time.Now().Add(2*time.Hour), 1)

	code, body := do(t, router, http.MethodPost, fmt.Sprintf("/bookings/%d/leave", bookingID), userID, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, true, body["deleted"])

	code, _ = do(t, router, http.MethodPost, fmt.Sprintf("/bookings/%d/join", bookingID), userID, nil)
	assert.Equal(t, 404, code)
}

func TestPendingList(t *testing.T) {
	router, application := newTestServer(t)
	userID := registerUser(t, application, "玩家1")
	createBooking(t, router, userID, 1, time.Now().Add(2*time.Hour), 1)

	code, body := do(t, router, http.MethodGet, "/bookings/pending", 0, nil)
	require.Equal(t, 200, code)
	assert.Len(t, body["bookings"].([]any), 1)
}

func TestAssignTableAndConflict(t *testing.T) {
	router, application := newTestServer(t)
	var users []uint
	for i := 1; i <= 5; i++ {
		users = append(users, registerUser(t, application, fmt.Sprintf("玩家%d", i)))
	}
	start := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	bookingID := createBooking(t, router, users[0], 1, start, 2)
	for i := 1; i <= 3; i++ {
		code, _ := do(t, router, http.MethodPost, fmt.Sprintf("/bookings/%d/join", bookingID), users[i], nil)
		require.Equal(t, 200, code)
	}

	store, err := application.StoreRepo.GetByID(1)
	require.NoError(t, err)
	tableID := store.Tables[0].ID

	code, body := do(t, router, http.MethodPost, fmt.Sprintf("/bookings/%d/table", bookingID), users[0], gin.H{
		"table_id": tableID,
	})
	require.Equal(t, 200, code)
	assert.EqualValues(t, tableID, body["booking"].(map[string]any)["table_id"])

	// an overlapping booking cannot share the table
	other := createBooking(t, router, users[4], 1, start.Add(30*time.Minute), 2)
	code, _ = do(t, router, http.MethodPost, fmt.Sprintf("/bookings/%d/table", other), users[4], gin.H{
		"table_id": tableID,
	})
	assert.Equal(t, 409, code)

	// the second table is free
	code, _ = do(t, router, http.MethodPost, fmt.Sprintf("/bookings/%d/table", other), users[4], gin.H{
		"table_id": store.Tables[1].ID,
	})
	assert.Equal(t, 200, code)
}

func TestCancelBooking(t *testing.T) {
	router, application := newTestServer(t)
	userID := registerUser(t, application, "玩家1")
	bookingID := createBooking(t, router, userID, 1, time.Now().Add(2*time.Hour), 1)

	code, body := do(t, router, http.MethodPost, fmt.Sprintf("/bookings/%d/cancel", bookingID), userID, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, "CANCELED", body["booking"].(map[string]any)["status"])

	code, _ = do(t, router, http.MethodPost, fmt.Sprintf("/bookings/%d/cancel", bookingID), userID, nil)
	assert.Equal(t, 409, code)
}

func TestWalkIn(t *testing.T) {
	router, application := newTestServer(t)
	staffID := registerUser(t, application, "店长")

	store, err := application.StoreRepo.GetByID(1)
	require.NoError(t, err)
	tableID := store.Tables[0].ID

	code, body := do(t, router, http.MethodPost, fmt.Sprintf("/tables/%d/walkin", tableID), staffID, nil)
	require.Equal(t, 201, code)
	booking := body["booking"].(map[string]any)
	assert.Equal(t, "CONFIRMED", booking["status"])
	assert.EqualValues(t, 4, booking["num_games"])

	// the table is already in use
	code, _ = do(t, router, http.MethodPost, fmt.Sprintf("/tables/%d/walkin", tableID), staffID, nil)
	assert.Equal(t, 409, code)
}

func TestMyGamesPhases(t *testing.T) {
	router, application := newTestServer(t)
	userID := registerUser(t, application, "玩家1")
	createBooking(t, router, userID, 1, time.Now().Add(2*time.Hour), 1)

	code, body := do(t, router, http.MethodGet, "/my/games", userID, nil)
	require.Equal(t, 200, code)
	assert.NotNil(t, body["phase_counts"])
}

func TestManualSweep(t *testing.T) {
	router, _ := newTestServer(t)

	code, body := do(t, router, http.MethodPost, "/admin/sweep", 0, nil)
	require.Equal(t, 200, code)
	assert.NotEmpty(t, body["message"])
}

func TestTimetableEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	code, body := do(t, router, http.MethodGet, "/stores/1/timetable?hours=4", 0, nil)
	require.Equal(t, 200, code)
	assert.Len(t, body["slots"].([]any), 4)
}

func TestTimetableExportEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/stores/1/timetable/export?date=2026-03-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())
}
