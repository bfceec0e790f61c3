package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/domain"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Réservations"

var columnHeaders = []string{
	"ID", "Séance", "Nom", "Email", "Téléphone", "Personnes", "Statut", "Créée le",
}

// Exporter создает Excel файлы со списком заявок для организатора.
type Exporter struct {
	repo   domain.Repository
	cfg    config.ExportConfig
	logger *zerolog.Logger
}

func NewExporter(repo domain.Repository, cfg config.ExportConfig, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// ExportBookings выгружает все заявки, сгруппированные по сеансам, и
// возвращает путь к созданному файлу.
func (e *Exporter) ExportBookings(ctx context.Context) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(e.cfg.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	sessions, err := e.repo.GetSessions(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting sessions: %v", err)
	}

	bookings, err := e.repo.GetBookings(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	e.writeColumnHeaders(f)

	bySession := make(map[int64][]models.Booking)
	for _, booking := range bookings {
		bySession[booking.SessionID] = append(bySession[booking.SessionID], booking)
	}

	row := 2
	for _, session := range sessions {
		row = e.writeSessionBlock(f, row, session, bySession[session.ID])
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "B", 30)
	_ = f.SetColWidth(sheetName, "C", "C", 25)
	_ = f.SetColWidth(sheetName, "D", "D", 30)
	_ = f.SetColWidth(sheetName, "E", "E", 18)
	_ = f.SetColWidth(sheetName, "F", "F", 12)
	_ = f.SetColWidth(sheetName, "G", "G", 16)
	_ = f.SetColWidth(sheetName, "H", "H", 20)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.cfg.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel file created")
	return filePath, nil
}

func (e *Exporter) writeColumnHeaders(f *excelize.File) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, header := range columnHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}

// writeSessionBlock пишет строку-шапку сеанса и его заявки, возвращая
// номер следующей свободной строки.
func (e *Exporter) writeSessionBlock(f *excelize.File, row int, session models.Session, bookings []models.Booking) int {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	start, _ := excelize.CoordinatesToCellName(1, row)
	end, _ := excelize.CoordinatesToCellName(len(columnHeaders), row)
	_ = f.SetCellValue(sheetName, start, fmt.Sprintf("%s — %s (%d/%d places libres)",
		session.Name,
		session.StartTime.Format("02.01.2006 15:04"),
		session.AvailableSlots,
		session.TotalSlots))
	_ = f.MergeCell(sheetName, start, end)
	_ = f.SetCellStyle(sheetName, start, end, headerStyle)
	row++

	for _, booking := range bookings {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), booking.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), session.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), booking.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), booking.Email)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), booking.Phone)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), booking.PartySize)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), statusLabel(booking.IsWaitlist))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), booking.CreatedAt.Format("02.01.2006 15:04"))
		row++
	}

	if len(bookings) == 0 {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Aucune réservation")
		row++
	}

	// Пустая строка между сеансами
	return row + 1
}

func statusLabel(isWaitlist bool) string {
	if isWaitlist {
		return "Liste d'attente"
	}
	return "Confirmée"
}
