package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/qs-lzh/mahjong-booking/internal/model"
	"github.com/qs-lzh/mahjong-booking/internal/service/domain"
)

// unassignedLabel names the bucket row for confirmed bookings without a
// table.
const unassignedLabel = "未安排"

// TimetableWorkbook renders one sheet per timetable: a header row of hour
// labels, one row per table, and a trailing row for unassigned bookings.
type TimetableWorkbook struct {
	file       *excelize.File
	sheetCount int
}

func NewTimetableWorkbook() *TimetableWorkbook {
	return &TimetableWorkbook{
		file: excelize.NewFile(),
	}
}

// AddTimetable appends the grid as a new sheet named after the store and
// the first slot's date.
func (w *TimetableWorkbook) AddTimetable(grid *domain.Timetable) error {
	name := fmt.Sprintf("%s %s", grid.Store.Name, grid.From.Format("01-02"))
	// Excel caps sheet names at 31 characters
	if len(name) > 31 {
		name = name[:31]
	}

	if w.sheetCount == 0 {
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	w.sheetCount++

	header := []any{"牌桌"}
	for _, slot := range grid.Slots {
		header = append(header, slot.Format("15:04"))
	}
	if err := w.writeRow(name, 1, header); err != nil {
		return err
	}
	if err := w.boldRow(name, 1, len(header)); err != nil {
		return err
	}

	for i, row := range grid.Rows {
		label := unassignedLabel
		if row.Table != nil {
			label = row.Table.TableNumber
			if row.Table.Alias != "" {
				label = row.Table.Alias
			}
		}
		cells := []any{label}
		for _, bucket := range row.Bookings {
			cells = append(cells, bucketText(bucket))
		}
		if err := w.writeRow(name, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func (w *TimetableWorkbook) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

func (w *TimetableWorkbook) writeRow(sheet string, rowNum int, values []any) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

func (w *TimetableWorkbook) boldRow(sheet string, rowNum, width int) error {
	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}
	startCell, _ := excelize.CoordinatesToCellName(1, rowNum)
	endCell, _ := excelize.CoordinatesToCellName(width, rowNum)
	return w.file.SetCellStyle(sheet, startCell, endCell, style)
}

func bucketText(bucket []*model.Booking) string {
	parts := make([]string, 0, len(bucket))
	for _, b := range bucket {
		parts = append(parts, fmt.Sprintf("#%d %d人", b.ID, b.ParticipantCount))
	}
	return strings.Join(parts, "; ")
}
