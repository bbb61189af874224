package services

import (
	"fmt"
	"io"
	"time"

	"cronify/internal/logger"
	"cronify/internal/models"
	"cronify/internal/utils"

	"github.com/go-pdf/fpdf"
)

type HabitReport struct {
	Habit       models.Habit
	Stats       utils.HabitStats
	Month       utils.CalendarMonth
	Timer       *utils.TimerSnapshot
	GeneratedAt time.Time
}

type ReportService struct {
	log logger.Logger
}

func NewReportService() *ReportService {
	return &ReportService{log: logger.New("reportService")}
}

var weekdayHeaders = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

const calendarCellSize = 24.0

// dayFill is the RGB fill for each calendar state.
var dayFill = map[utils.DayState][3]int{
	utils.DayCompleted:   {134, 209, 140},
	utils.DayFailed:      {233, 128, 128},
	utils.DaySkipped:     {200, 200, 200},
	utils.DayPartial:     {246, 212, 120},
	utils.DayPending:     {255, 255, 255},
	utils.DayFuture:      {240, 240, 240},
	utils.DayBeforeStart: {240, 240, 240},
}

// RenderHabitReport writes an A4 progress report for one habit.
func (s *ReportService) RenderHabitReport(w io.Writer, report HabitReport) error {
	log := s.log.Function("RenderHabitReport")

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(report.Habit.Title), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(report.Habit.Title))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf(
		"%s habit since %s. Generated %s",
		report.Habit.Type,
		report.Habit.StartDate,
		report.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"),
	))
	pdf.Ln(8)

	if report.Habit.Description != "" {
		pdf.MultiCell(0, 6, tr(report.Habit.Description), "", "", false)
		pdf.Ln(2)
	}

	s.writeStats(pdf, report.Stats)
	if report.Timer != nil {
		s.writeTimer(pdf, tr, *report.Timer)
	}
	s.writeCalendar(pdf, report.Month)

	if err := pdf.Output(w); err != nil {
		return log.Err("failed to render report", err, "habitID", report.Habit.ID)
	}
	return nil
}

func (s *ReportService) writeStats(pdf *fpdf.Fpdf, stats utils.HabitStats) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Statistics")
	pdf.Ln(9)

	rows := [][2]string{
		{"Days tracked", fmt.Sprintf("%d", stats.TotalDays)},
		{"Completed", fmt.Sprintf("%d", stats.CompletedDays)},
		{"Failed", fmt.Sprintf("%d", stats.FailedDays)},
		{"Skipped", fmt.Sprintf("%d", stats.SkippedDays)},
		{"Partial", fmt.Sprintf("%d", stats.PartialDays)},
		{"Completion rate", fmt.Sprintf("%d%%", stats.CompletionRate)},
		{"Current streak", fmt.Sprintf("%d", stats.CurrentStreak)},
		{"Best streak", fmt.Sprintf("%d", stats.BestStreak)},
	}

	pdf.SetFont("Arial", "", 11)
	for _, row := range rows {
		pdf.CellFormat(60, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, row[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

func (s *ReportService) writeTimer(pdf *fpdf.Fpdf, tr func(string) string, timer utils.TimerSnapshot) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Timer")
	pdf.Ln(9)

	b := timer.Breakdown
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf(
		"Running for %dy %dmo %dd %dh %dm %ds",
		b.Years, b.Months, b.Days, b.Hours, b.Minutes, b.Seconds,
	))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Longest run: %s", tr(utils.FormatGoalSeconds(timer.MaxStreakSeconds))))
	pdf.Ln(6)
	if timer.GoalText != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Goal: %s (%d%%)", tr(timer.GoalText), timer.GoalProgress))
		pdf.Ln(6)
	}
	pdf.Ln(4)
}

func (s *ReportService) writeCalendar(pdf *fpdf.Fpdf, month utils.CalendarMonth) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("%s %d", time.Month(month.Month), month.Year))
	pdf.Ln(9)

	pdf.SetFont("Arial", "B", 9)
	for _, header := range weekdayHeaders {
		pdf.CellFormat(calendarCellSize, 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	column := 0
	for range month.LeadingBlanks {
		pdf.CellFormat(calendarCellSize, calendarCellSize/2, "", "1", 0, "C", false, 0, "")
		column++
	}

	for _, day := range month.Days {
		fill := dayFill[day.State]
		pdf.SetFillColor(fill[0], fill[1], fill[2])
		pdf.CellFormat(calendarCellSize, calendarCellSize/2, fmt.Sprintf("%d", day.Day), "1", 0, "C", true, 0, "")
		column++
		if column == len(weekdayHeaders) {
			pdf.Ln(-1)
			column = 0
		}
	}
	if column != 0 {
		pdf.Ln(-1)
	}
}
