package deduction

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"teacher_savings_portal/internal/apperr"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Record is one payroll deduction row extracted from a controller report.
type Record struct {
	Row              int // 1-based row number in the sheet
	EmployeeNumber   string
	EmployeeName     string
	MonthlyDeduction decimal.Decimal
	ManagementUnit   string
}

// SkippedRow is a non-empty data row that could not become a Record.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result is the parser output. Records keep sheet order.
type Result struct {
	HeaderRow int // 1-based
	Columns   Columns
	Records   []Record
	Skipped   []SkippedRow
}

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// Parse reads the first sheet of an OOXML workbook or a CSV file and extracts deduction records.
func Parse(data []byte) (*Result, error) {
	rows, err := ReadRows(data)
	if err != nil {
		return nil, err
	}
	return ParseRows(rows)
}

// ReadRows converts the first sheet of the file into a grid of cell strings.
func ReadRows(data []byte) ([][]string, error) {
	switch {
	case len(data) == 0:
		return nil, apperr.Parse("the uploaded file is empty")
	case bytes.HasPrefix(data, zipMagic):
		return readWorkbook(data)
	case bytes.HasPrefix(data, oleMagic):
		return nil, apperr.Parse("legacy binary Excel workbooks (.xls) cannot be read").
			WithSuggestion("save the report as .xlsx or .csv and upload it again")
	default:
		return readCSV(data)
	}
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindParse, "failed to open Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Parse("no sheets found in Excel file")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindParse, "failed to read rows of sheet %q", sheets[0])
	}
	return rows, nil
}

// readCSV keeps rows aligned with physical lines: rows[i] is line i+1. The csv reader
// drops blank lines, so they are put back as empty rows.
func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(err, apperr.KindParse, "failed to read CSV")
		}
		line, _ := r.FieldPos(0)
		for len(rows) < line-1 {
			rows = append(rows, []string{})
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// ParseRows locates the header row and extracts records from the rows below it.
func ParseRows(rows [][]string) (*Result, error) {
	if len(rows) < 2 {
		return nil, apperr.Parse("the report has no data rows").
			WithSuggestion("upload a sheet with a header row followed by at least one deduction row")
	}

	scanner := newHeaderScanner(HeaderScanWindow)
	for _, row := range rows {
		if state := scanner.Feed(row); state == StateColumnsResolved || state == StateFailed {
			break
		}
	}
	if scanner.Finish() != StateColumnsResolved {
		return nil, apperr.Parse("could not find a header row with employee name and monthly deduction columns in the first %d rows", HeaderScanWindow).
			WithSuggestion("make sure the sheet has columns titled like \"Employee Name\" and \"Monthly Deduction\" near the top")
	}

	cols := scanner.columns
	res := &Result{HeaderRow: scanner.headerRow + 1, Columns: cols}
	for i := scanner.headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		if isBlankRow(row) {
			continue
		}

		name := cell(row, cols.Name)
		rawAmount := cell(row, cols.Deduction)
		if name == "" {
			res.Skipped = append(res.Skipped, SkippedRow{Row: rowNum, Reason: "missing employee name"})
			continue
		}
		if rawAmount == "" {
			res.Skipped = append(res.Skipped, SkippedRow{Row: rowNum, Reason: "missing monthly deduction"})
			continue
		}
		amount, ok := parseAmount(rawAmount)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRow{Row: rowNum, Reason: fmt.Sprintf("monthly deduction %q is not a positive amount", rawAmount)})
			continue
		}

		res.Records = append(res.Records, Record{
			Row:              rowNum,
			EmployeeNumber:   cell(row, cols.EmployeeNumber),
			EmployeeName:     name,
			MonthlyDeduction: amount,
			ManagementUnit:   cell(row, cols.ManagementUnit),
		})
	}
	return res, nil
}

// amountScale is the number of decimal places the ledger keeps.
const amountScale = 2

// parseAmount strips everything but digits, '.' and '-', rounds half away from zero to
// amountScale places and requires a positive result.
func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	amount = amount.Round(amountScale)
	if !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
