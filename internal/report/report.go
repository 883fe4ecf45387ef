package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/UnknownOlympus/hazira/internal/models"
	"github.com/UnknownOlympus/hazira/internal/tracker"
	"github.com/xuri/excelize/v2"
)

var ErrNoWorkers = errors.New("failed to generate report, the roster is empty")

const (
	summarySheet  = "Summary"
	defaultSheet  = "Sheet1"
	maxSheetRunes = 31
)

// Bucket groups the rows of a day by attendance outcome. Every bucket gets its own sheet.
type Bucket string

const (
	BucketPresent Bucket = "Present"
	BucketAbsent  Bucket = "Absent"
	BucketLate    Bucket = "Late"
	BucketPending Bucket = "Pending" // not marked, or explicitly cleared
)

// Buckets lists the buckets in sheet order.
var Buckets = []Bucket{BucketPresent, BucketAbsent, BucketLate, BucketPending}

// Generator holds the state for the Excel report generation process.
type Generator struct {
	file *excelize.File
}

// ExcelRow holds the structured row for excel file.
type ExcelRow struct {
	WorkerIDNum string        `json:"worker_id_num"` // Manual code of the worker
	Name        string        `json:"name"`          // Name of the worker
	Designation string        `json:"designation"`   // Designation of the worker
	Phone       string        `json:"phone"`         // Phone number of the worker
	Status      models.Status `json:"status"`        // Status of the day, empty when not marked
	Time        string        `json:"time"`          // Time stamp of a present mark
	JoinDate    models.Date   `json:"join_date"`     // Date the worker joined
}

// Bucket returns the sheet the row belongs to.
func (r ExcelRow) Bucket() Bucket {
	switch r.Status {
	case models.StatusPresent:
		return BucketPresent
	case models.StatusAbsent:
		return BucketAbsent
	case models.StatusLate:
		return BucketLate
	case models.StatusNone:
		return BucketPending
	default:
		return BucketPending
	}
}

// RowsFromEntries converts a day roll into report rows, keeping the roster order.
func RowsFromEntries(entries []tracker.Entry) []ExcelRow {
	rows := make([]ExcelRow, 0, len(entries))
	for _, entry := range entries {
		row := ExcelRow{
			WorkerIDNum: entry.Worker.WorkerIDNum,
			Name:        entry.Worker.Name,
			Designation: entry.Worker.Designation,
			Phone:       entry.Worker.Phone,
			JoinDate:    entry.Worker.JoinDate,
		}
		if entry.Marked {
			row.Status = entry.Record.Status
			row.Time = entry.Record.Time
		}
		rows = append(rows, row)
	}
	return rows
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		file: excelize.NewFile(),
	}
}

// GenerateExcelReport builds the attendance workbook of a single day. The first
// sheet holds the day counters, followed by one sheet per non-empty bucket in
// the order of Buckets.
//
// Parameters:
// - date: The day the rows describe.
// - rows: One row per worker in the roster.
//
// Returns:
// - A pointer to a bytes.Buffer containing the Excel report.
// - ErrNoWorkers when rows is empty, or an error if any operation fails.
func GenerateExcelReport(date models.Date, rows []ExcelRow) (*bytes.Buffer, error) {
	var err error

	if len(rows) == 0 {
		return nil, ErrNoWorkers
	}

	rowsByBucket := make(map[Bucket][]ExcelRow, len(Buckets))
	for _, row := range rows {
		rowsByBucket[row.Bucket()] = append(rowsByBucket[row.Bucket()], row)
	}

	gen := NewGenerator()
	defer gen.file.Close()

	if err = gen.file.SetSheetName(defaultSheet, summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	if err = gen.addSummary(date, rows); err != nil {
		return nil, fmt.Errorf("failed to add summary sheet: %w", err)
	}
	if err = gen.addSheets(rowsByBucket); err != nil {
		return nil, fmt.Errorf("failed to add sheets: %w", err)
	}

	// setup summary sheet as active
	gen.file.SetActiveSheet(0)

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write data from saved file: %w", err)
	}

	return buffer, nil
}

func (g *Generator) addSummary(date models.Date, rows []ExcelRow) error {
	counts := make(map[Bucket]int, len(Buckets))
	unmarked := 0
	for _, row := range rows {
		counts[row.Bucket()]++
		if row.Status == "" {
			unmarked++
		}
	}

	lines := [][]any{
		{"Date", date.String()},
		{"Total", len(rows)},
		{"Present", counts[BucketPresent]},
		{"Absent", counts[BucketAbsent]},
		{"Late", counts[BucketLate]},
		{"Not marked", unmarked},
	}
	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := g.file.SetSheetRow(summarySheet, cell, &line); err != nil {
			return fmt.Errorf("failed to set summary row: %w", err)
		}
	}

	boldStyle, err := g.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create new style: %w", err)
	}
	if err = g.file.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(lines)), boldStyle); err != nil {
		return fmt.Errorf("failed to set cell style for summary: %w", err)
	}

	return g.file.SetColWidth(summarySheet, "A", "B", 16) //nolint:mnd // const value for column width
}

// addSheets adds one sheet per non-empty bucket and fills it with the bucket rows.
func (g *Generator) addSheets(rowsByBucket map[Bucket][]ExcelRow) error {
	var err error
	headerIndex := 2

	for _, bucket := range Buckets {
		rows := rowsByBucket[bucket]
		if len(rows) == 0 {
			continue
		}
		sheetName := truncateSheetName(string(bucket))

		if _, err = g.file.NewSheet(sheetName); err != nil {
			return fmt.Errorf("failed to generate new sheet '%s': %w", sheetName, err)
		}

		if err = g.setupSheet(sheetName, len(rows)); err != nil {
			return fmt.Errorf("failed to setup sheet '%s': %w", sheetName, err)
		}

		for i, row := range rows {
			if err = g.addRow(sheetName, i+headerIndex, row); err != nil { // the first row is the header
				return fmt.Errorf("failed to add row '%d': %w", i+headerIndex, err)
			}
		}
	}
	return nil
}

// setupSheet writes the styled header row, sets the column widths and wraps
// the data range into a table.
func (g *Generator) setupSheet(sheetName string, rowCount int) error {
	var err error

	headerStyle, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create new style: %w", err)
	}

	rowHeight := 20
	headers := []string{"ID", "Name", "Designation", "Phone", "Status", "Time", "Join Date"}
	if err = g.file.SetRowHeight(sheetName, 1, float64(rowHeight)); err != nil {
		return fmt.Errorf("failed to set row height for headers: %w", err)
	}
	if err = g.file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to set sheet row for headers: %w", err)
	}
	if err = g.file.SetCellStyle(sheetName, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("failed to set cell style for headers: %w", err)
	}

	widths := map[string]float64{
		"A": 10, "B": 28, "C": 16, "D": 16, "E": 12, "F": 12, "G": 14, //nolint:mnd // const values for column width
	}
	for col, width := range widths {
		if err = g.file.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err = g.file.AddTable(sheetName, &excelize.Table{
		Range:     fmt.Sprintf("A1:G%d", rowCount+1),
		Name:      "table_" + strings.ReplaceAll(sheetName, " ", ""),
		StyleName: "TableStyleMedium9",
	}); err != nil {
		return fmt.Errorf("failed to add table: %w", err)
	}

	return nil
}

func (g *Generator) addRow(sheetName string, rowNum int, row ExcelRow) error {
	status := string(row.Status)
	if status == "" {
		status = "-"
	}
	rowData := []any{
		row.WorkerIDNum,
		row.Name,
		row.Designation,
		row.Phone,
		status,
		row.Time,
		row.JoinDate.String(),
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)

	if err := g.file.SetSheetRow(sheetName, cell, &rowData); err != nil {
		return fmt.Errorf("failed to set sheet row: %w", err)
	}

	return nil
}

// truncateSheetName truncates the given sheet name to a maximum of 31 runes.
func truncateSheetName(name string) string {
	if utf8.RuneCountInString(name) > maxSheetRunes {
		runes := []rune(name)
		return string(runes[:maxSheetRunes])
	}
	return name
}
