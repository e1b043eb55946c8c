package service

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanumxxx/timetable-api/internal/models"
)

type mockWeekLoader struct {
	lessons []models.Lesson
}

func (m *mockWeekLoader) WeekView(ctx context.Context, view, name string, semester, week int) ([]models.Lesson, error) {
	return m.lessons, nil
}

func TestRenderWeekCSVLaysOutGrid(t *testing.T) {
	loader := &mockWeekLoader{lessons: []models.Lesson{
		{Weekday: 1, TimeStart: "08:00", TimeEnd: "09:20", Subject: "Algebra", LessonType: "lecture", GroupName: "CS-101", TeacherName: "Ivanov I.I.", Auditory: "301"},
		{Weekday: 3, TimeStart: "09:30", TimeEnd: "10:50", Subject: "Physics", GroupName: "CS-101", Subgroup: 2},
	}}
	svc := NewExportService(loader, &mockCatalog{}, "Timetable", zap.NewNop())

	payload, contentType, err := svc.RenderWeek(context.Background(), FormatCSV, "group", "CS-101", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	records, err := csv.NewReader(strings.NewReader(string(payload))).ReadAll()
	require.NoError(t, err)

	// Header plus one row per catalog slot.
	require.Len(t, records, 9)
	assert.Equal(t, []string{"Time", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}, records[0])
	assert.Equal(t, "08:00-09:20", records[1][0])
	assert.Contains(t, records[1][1], "Algebra (lecture)")
	assert.Contains(t, records[1][1], "Ivanov I.I.")
	assert.Contains(t, records[2][3], "CS-101/2")
	assert.Empty(t, records[3][1])
}

func TestRenderWeekPDF(t *testing.T) {
	loader := &mockWeekLoader{lessons: []models.Lesson{
		{Weekday: 2, TimeStart: "09:30", TimeEnd: "10:50", Subject: "Algebra", GroupName: "CS-101"},
	}}
	svc := NewExportService(loader, &mockCatalog{}, "Timetable", zap.NewNop())

	payload, contentType, err := svc.RenderWeek(context.Background(), FormatPDF, "group", "CS-101", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestRenderWeekUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockWeekLoader{}, &mockCatalog{}, "Timetable", zap.NewNop())

	_, _, err := svc.RenderWeek(context.Background(), "xlsx", "group", "CS-101", 1, 10)
	require.Error(t, err)
}
