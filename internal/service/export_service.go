package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sanumxxx/timetable-api/internal/models"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
	"github.com/sanumxxx/timetable-api/pkg/export"
)

// ExportFormat names a supported export encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

type weekViewLoader interface {
	WeekView(ctx context.Context, view, name string, semester, week int) ([]models.Lesson, error)
}

type exportSlotCatalog interface {
	Catalog(ctx context.Context) []models.TimeSlot
}

// ExportService renders a week view as a downloadable grid, slots as
// rows and weekdays as columns.
type ExportService struct {
	lessons weekViewLoader
	slots   exportSlotCatalog
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	title   string
	logger  *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(lessons weekViewLoader, slots exportSlotCatalog, title string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Timetable"
	}
	return &ExportService{
		lessons: lessons,
		slots:   slots,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		title:   title,
		logger:  logger,
	}
}

// RenderWeek exports one entity's week as CSV or PDF bytes plus the
// content type to serve them with.
func (s *ExportService) RenderWeek(ctx context.Context, format ExportFormat, view, name string, semester, week int) ([]byte, string, error) {
	lessons, err := s.lessons.WeekView(ctx, view, name, semester, week)
	if err != nil {
		return nil, "", err
	}

	dataset := s.buildWeekGrid(ctx, lessons)
	title := fmt.Sprintf("%s: %s, week %d", s.title, name, week)

	switch format {
	case FormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case FormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// buildWeekGrid lays lessons out on the slot catalog. Cells with several
// lessons (subgroups, forced overlaps) join them with newlines; CSV
// readers see them as multi-line fields.
func (s *ExportService) buildWeekGrid(ctx context.Context, lessons []models.Lesson) export.Dataset {
	slots := s.slots.Catalog(ctx)

	headers := []string{"Time"}
	for weekday := 1; weekday <= 6; weekday++ {
		headers = append(headers, models.WeekdayName(weekday))
	}

	cells := make(map[models.SlotKey][]string)
	for _, lesson := range lessons {
		key := models.SlotKey{Weekday: lesson.Weekday, TimeStart: lesson.TimeStart}
		cells[key] = append(cells[key], formatLessonCell(lesson))
	}

	rows := make([]map[string]string, 0, len(slots))
	for _, slot := range slots {
		row := map[string]string{"Time": fmt.Sprintf("%s-%s", slot.TimeStart, slot.TimeEnd)}
		for weekday := 1; weekday <= 6; weekday++ {
			key := models.SlotKey{Weekday: weekday, TimeStart: slot.TimeStart}
			row[models.WeekdayName(weekday)] = strings.Join(cells[key], "\n")
		}
		rows = append(rows, row)
	}

	return export.Dataset{Headers: headers, Rows: rows}
}

func formatLessonCell(lesson models.Lesson) string {
	parts := []string{lesson.Subject}
	if lesson.LessonType != "" {
		parts[0] = fmt.Sprintf("%s (%s)", lesson.Subject, lesson.LessonType)
	}
	if lesson.TeacherName != "" {
		parts = append(parts, lesson.TeacherName)
	}
	line3 := lesson.GroupName
	if lesson.Subgroup > 0 {
		line3 = fmt.Sprintf("%s/%d", line3, lesson.Subgroup)
	}
	if lesson.Auditory != "" {
		line3 = fmt.Sprintf("%s, room %s", line3, lesson.Auditory)
	}
	if line3 != "" {
		parts = append(parts, line3)
	}
	return strings.Join(parts, "\n")
}
