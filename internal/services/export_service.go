package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
)

const (
	exportSheetName   = "Schedule"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportColumnWidth = 18
)

var exportHeaders = []string{"Type", "Name", "Recurring", "Day", "Date", "Start", "End"}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ExportSchedulesExcel writes the user's slots to a one-sheet workbook in
// schedule list order.
func (s *exportService) ExportSchedulesExcel(ctx context.Context, userID string) (*ExportFile, error) {
	slots, err := s.repo.Slot().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule slots: %w", err)
	}
	sortSlots(slots)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheetName, cell, header)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(exportSheetName, "A1", lastHeader, headerStyle)

	for i, slot := range slots {
		summary := models.NewSlotSummary(slot)
		row := i + 2

		recurring := "No"
		if summary.IsRecurring {
			recurring = "Yes"
		}
		date := ""
		if summary.SpecificDate != nil {
			date = *summary.SpecificDate
		}

		values := []interface{}{
			string(summary.OwnerType),
			summary.OwnerName,
			recurring,
			string(summary.DayOfWeek),
			date,
			summary.StartTime,
			summary.EndTime,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheetName, cell, value)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	f.SetColWidth(exportSheetName, "A", lastCol, exportColumnWidth)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Schedules exported", "user_id", userID, "slots", len(slots))
	return &ExportFile{
		Name:        fmt.Sprintf("schedules_%s.xlsx", s.now().Format("20060102_150405")),
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}
