package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"alfredoptarigan/resumatch/internal/models"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Ranked Candidates"
)

var candidateHeaders = []string{"Rank", "Candidate", "Overall Score", "Matching Skills", "Missing Skills", "Summary", "Detailed Analysis", "Error"}

// WriteAnalysisReport renders a job's analyses, already ranked, as an XLSX workbook.
func WriteAnalysisReport(w io.Writer, job *models.JobDescription, results []models.AnalysisResultResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeSummarySheet(f, job, results); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeCandidatesSheet(f, results); err != nil {
		return fmt.Errorf("failed to create ranked candidates sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, job *models.JobDescription, results []models.AnalysisResultResponse) error {
	f.SetColWidth(summarySheet, "A", "A", 25)
	f.SetColWidth(summarySheet, "B", "B", 60)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetCellValue(summarySheet, "A1", "ResuMatch Analysis Report")
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	f.MergeCell(summarySheet, "A1", "B1")

	var scored, failed int
	var total float64
	for _, r := range results {
		if r.Error != nil {
			failed++
			continue
		}
		scored++
		total += r.OverallScore
	}
	average := "n/a"
	if scored > 0 {
		average = fmt.Sprintf("%.2f", total/float64(scored))
	}

	rows := [][2]any{
		{"Job Title:", job.Title},
		{"Requirements:", strings.Join(job.Requirements, ", ")},
		{"Generated:", time.Now().Format("2006-01-02 15:04:05")},
		{"Candidates Analysed:", len(results)},
		{"Failed Analyses:", failed},
		{"Average Score:", average},
	}
	for i, kv := range rows {
		row := i + 3
		label := fmt.Sprintf("A%d", row)
		f.SetCellValue(summarySheet, label, kv[0])
		f.SetCellStyle(summarySheet, label, label, labelStyle)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), kv[1])
	}

	return nil
}

func writeCandidatesSheet(f *excelize.File, results []models.AnalysisResultResponse) error {
	widths := map[string]float64{"A": 8, "B": 30, "C": 14, "D": 40, "E": 40, "F": 60, "G": 80, "H": 40}
	for col, width := range widths {
		f.SetColWidth(candidatesSheet, col, col, width)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	bandStyles := make(map[string]int, 4)
	for band, color := range map[string]string{
		"excellent": "C6EFCE",
		"good":      "FFEB9C",
		"fair":      "FFC7CE",
		"poor":      "FF9999",
	} {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		})
		if err != nil {
			return err
		}
		bandStyles[band] = style
	}

	for col, header := range candidateHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(candidatesSheet, cell, header)
		f.SetCellStyle(candidatesSheet, cell, cell, headerStyle)
	}

	for i, r := range results {
		row := i + 2
		errText := ""
		if r.Error != nil {
			errText = *r.Error
		}

		values := []any{
			i + 1,
			r.CVFilename,
			r.OverallScore,
			strings.Join(r.MatchingSkills, ", "),
			strings.Join(r.MissingSkills, ", "),
			r.Summary,
			r.DetailedAnalysis,
			errText,
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(candidatesSheet, first, &values); err != nil {
			return err
		}

		last, _ := excelize.CoordinatesToCellName(len(values), row)
		f.SetCellStyle(candidatesSheet, first, last, bandStyles[scoreBand(r.OverallScore)])
	}

	return nil
}

func scoreBand(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}
