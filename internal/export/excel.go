package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cabinbook/internal/domain"
	"cabinbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter пишет выгрузку бронирований за период в Excel файл.
type Exporter struct {
	store  domain.Store
	path   string
	logger *zerolog.Logger
}

func NewExporter(store domain.Store, path string, logger *zerolog.Logger) *Exporter {
	if path == "" {
		path = "./exports"
	}
	return &Exporter{
		store:  store,
		path:   path,
		logger: logger,
	}
}

// BookingsReport выгружает бронирования диапазона [from, to] и возвращает путь к файлу.
func (e *Exporter) BookingsReport(ctx context.Context, from, to string) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	bookings, err := e.store.GetBookingsRange(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	days, err := e.store.GetCalendarRange(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("error getting calendar: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s", from, to))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.MergeCell(sheetName, "A1", "E1")
	_ = f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	headers := []string{"Date", "Guest", "Phone", "Email", "Created"}
	columnStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, columnStyle)
	}

	for i, booking := range bookings {
		row := i + 3
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), booking.Date)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), booking.GuestName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), models.FormatPhone(booking.GuestPhone))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), booking.GuestEmail)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), booking.CreatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "B", 25)
	_ = f.SetColWidth(sheetName, "C", "E", 20)

	e.writeSummary(f, days, bookings)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx", from, to)
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel file created")
	return filePath, nil
}

func (e *Exporter) writeSummary(f *excelize.File, days []models.CalendarDay, bookings []models.Booking) {
	sheetName := "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return
	}

	var open, closed, booked int
	for _, day := range days {
		switch day.Status {
		case models.StatusOpen:
			open++
		case models.StatusClosed:
			closed++
		case models.StatusBooked:
			booked++
		}
	}

	_ = f.SetCellValue(sheetName, "A1", "Generated")
	_ = f.SetCellValue(sheetName, "B1", time.Now().Format("02.01.2006 15:04"))
	_ = f.SetCellValue(sheetName, "A2", "Open days")
	_ = f.SetCellValue(sheetName, "B2", open)
	_ = f.SetCellValue(sheetName, "A3", "Closed days")
	_ = f.SetCellValue(sheetName, "B3", closed)
	_ = f.SetCellValue(sheetName, "A4", "Booked days")
	_ = f.SetCellValue(sheetName, "B4", booked)
	_ = f.SetCellValue(sheetName, "A5", "Bookings")
	_ = f.SetCellValue(sheetName, "B5", len(bookings))

	_ = f.SetColWidth(sheetName, "A", "A", 15)
	_ = f.SetColWidth(sheetName, "B", "B", 20)
}
