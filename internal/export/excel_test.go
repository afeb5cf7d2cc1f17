package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/qs-lzh/mahjong-booking/internal/model"
	"github.com/qs-lzh/mahjong-booking/internal/service/domain"
)

func sampleGrid() *domain.Timetable {
	from := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	booking := &model.Booking{ID: 7, ParticipantCount: 4}
	return &domain.Timetable{
		Store: model.Store{Name: "大钟寺"},
		From:  from,
		Slots: []time.Time{from, from.Add(time.Hour)},
		Rows: []domain.TimetableRow{
			{
				Table:    &model.MahjongTable{TableNumber: "1"},
				Bookings: [][]*model.Booking{{booking}, {}},
			},
			{
				Table:    nil,
				Bookings: [][]*model.Booking{{}, {booking}},
			},
		},
	}
}

func TestTimetableWorkbookLayout(t *testing.T) {
	workbook := NewTimetableWorkbook()
	require.NoError(t, workbook.AddTimetable(sampleGrid()))

	var buf bytes.Buffer
	require.NoError(t, workbook.Save(&buf))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	sheet := "大钟寺 03-01"
	require.Contains(t, file.GetSheetList(), sheet)

	get := func(cell string) string {
		value, err := file.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return value
	}
	assert.Equal(t, "牌桌", get("A1"))
	assert.Equal(t, "09:00", get("B1"))
	assert.Equal(t, "10:00", get("C1"))
	assert.Equal(t, "1", get("A2"))
	assert.Equal(t, "#7 4人", get("B2"))
	assert.Equal(t, "", get("C2"))
	assert.Equal(t, "未安排", get("A3"))
	assert.Equal(t, "#7 4人", get("C3"))
}

func TestTimetableWorkbookMultipleSheets(t *testing.T) {
	workbook := NewTimetableWorkbook()
	require.NoError(t, workbook.AddTimetable(sampleGrid()))

	second := sampleGrid()
	second.From = second.From.AddDate(0, 0, 1)
	require.NoError(t, workbook.AddTimetable(second))

	var buf bytes.Buffer
	require.NoError(t, workbook.Save(&buf))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	sheets := file.GetSheetList()
	assert.Contains(t, sheets, "大钟寺 03-01")
	assert.Contains(t, sheets, "大钟寺 03-02")
}

func TestTableAliasPreferred(t *testing.T) {
	grid := sampleGrid()
	grid.Rows[0].Table.Alias = "雀神桌"

	workbook := NewTimetableWorkbook()
	require.NoError(t, workbook.AddTimetable(grid))

	var buf bytes.Buffer
	require.NoError(t, workbook.Save(&buf))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	value, err := file.GetCellValue("大钟寺 03-01", "A2")
	require.NoError(t, err)
	assert.Equal(t, "雀神桌", value)
}
