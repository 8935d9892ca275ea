package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/fdg312/fitplanner/internal/weekplan"
	"github.com/jung-kurt/gofpdf"
)

// Generator renders the weekly schedule as PDF or CSV.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a new report generator
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Generate renders s in format.
func (g *Generator) Generate(format string, s weekplan.WeekSchedule, profile weekplan.Profile) ([]byte, error) {
	switch format {
	case FormatPDF:
		return g.generatePDF(s, profile)
	case FormatCSV:
		return g.generateCSV(s)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
}

var csvHeader = []string{"day", "kind", "slot", "name", "quantity", "duration", "sets_reps", "calories", "protein_g", "carbs_g", "fat_g"}

// generateCSV writes one row per meal item and exercise, followed by a
// day_total row for each day.
func (g *Generator) generateCSV(s weekplan.WeekSchedule) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, day := range weekplan.Days {
		data := s[day]
		for _, slot := range data.Meals {
			for _, item := range slot.Meals {
				row := []string{day, "meal", slot.Title, item.Name, item.Quantity, "", ""}
				row = append(row, factsColumns(item.NutritionFacts)...)
				if err := w.Write(row); err != nil {
					return nil, err
				}
			}
		}
		for _, ex := range data.Exercises {
			if err := w.Write([]string{day, "exercise", "", ex.Name, "", ex.Duration, ex.SetsReps, "", "", "", ""}); err != nil {
				return nil, err
			}
		}
		total := append([]string{day, "day_total", "", "", "", "", ""}, factsColumns(weekplan.DayTotals(data))...)
		if err := w.Write(total); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func factsColumns(n weekplan.NutritionFacts) []string {
	return []string{formatNumber(n.Calories), formatNumber(n.Protein), formatNumber(n.Carbs), formatNumber(n.Fat)}
}

// generatePDF lays out one section per day. Core fonts only cover
// cp1252, so text goes through the translator.
func (g *Generator) generatePDF(s weekplan.WeekSchedule, profile weekplan.Profile) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	fontName := "Arial"

	pdf.SetTitle("Weekly Fitness & Meal Plan", true)
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.Cell(0, 10, "Weekly Fitness & Meal Plan")
	pdf.Ln(8)

	pdf.SetFont(fontName, "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", g.now().UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Profile: age %s, height %s cm, weight %s kg, goal %s",
		formatNumber(profile.Age), formatNumber(profile.Height), formatNumber(profile.Weight), profile.Goal))
	pdf.Ln(8)

	summary := weekplan.Summarize(s)
	pdf.SetFont(fontName, "B", 12)
	pdf.Cell(0, 8, "Week summary")
	pdf.Ln(7)
	pdf.SetFont(fontName, "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Nutrition: %s", formatFacts(summary.Nutrition)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Exercises: %d (%d min)", summary.ExerciseCount, summary.ExerciseMinutes))
	pdf.Ln(10)

	for _, day := range weekplan.Days {
		g.drawDay(pdf, tr, fontName, day, s[day])
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// drawDay draws the meal table, exercise list and totals for one day.
func (g *Generator) drawDay(pdf *gofpdf.Fpdf, tr func(string) string, fontName, day string, data weekplan.DayData) {
	pdf.SetFont(fontName, "B", 13)
	pdf.Cell(0, 8, day)
	pdf.Ln(8)

	pdf.SetFont(fontName, "B", 8)
	pdf.CellFormat(30, 6, "Slot", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 6, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(18, 6, "kcal", "1", 0, "C", false, 0, "")
	pdf.CellFormat(18, 6, "Protein", "1", 0, "C", false, 0, "")
	pdf.CellFormat(18, 6, "Carbs", "1", 0, "C", false, 0, "")
	pdf.CellFormat(18, 6, "Fat", "1", 1, "C", false, 0, "")

	pdf.SetFont(fontName, "", 8)
	rows := 0
	for _, slot := range data.Meals {
		for _, item := range slot.Meals {
			pdf.CellFormat(30, 6, tr(slot.Title), "1", 0, "L", false, 0, "")
			pdf.CellFormat(55, 6, tr(truncate(item.Name, 40)), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, tr(truncate(item.Quantity, 20)), "1", 0, "L", false, 0, "")
			pdf.CellFormat(18, 6, formatNumber(item.Calories), "1", 0, "R", false, 0, "")
			pdf.CellFormat(18, 6, formatNumber(item.Protein), "1", 0, "R", false, 0, "")
			pdf.CellFormat(18, 6, formatNumber(item.Carbs), "1", 0, "R", false, 0, "")
			pdf.CellFormat(18, 6, formatNumber(item.Fat), "1", 1, "R", false, 0, "")
			rows++
		}
	}
	if rows == 0 {
		pdf.CellFormat(187, 6, "No meals planned", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(2)
	if len(data.Exercises) == 0 {
		pdf.Cell(0, 5, "Exercises: rest day")
		pdf.Ln(5)
	} else {
		pdf.Cell(0, 5, "Exercises:")
		pdf.Ln(5)
		for _, ex := range data.Exercises {
			line := "- " + ex.Name
			if ex.Duration != "" {
				line += ", " + ex.Duration
			}
			if ex.SetsReps != "" {
				line += ", " + ex.SetsReps
			}
			pdf.Cell(0, 5, tr(line))
			pdf.Ln(5)
		}
	}

	pdf.SetFont(fontName, "I", 8)
	pdf.Cell(0, 5, fmt.Sprintf("Day total: %s", formatFacts(weekplan.DayTotals(data))))
	pdf.Ln(9)
}

func formatFacts(n weekplan.NutritionFacts) string {
	return fmt.Sprintf("%s kcal, %s g protein, %s g carbs, %s g fat",
		formatNumber(n.Calories), formatNumber(n.Protein), formatNumber(n.Carbs), formatNumber(n.Fat))
}

// formatNumber prints at most one decimal and drops a trailing ".0".
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
