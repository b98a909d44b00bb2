package deduction

import "strings"

// HeaderScanWindow is how many leading rows may hold the header.
const HeaderScanWindow = 5

// ScanState is the state of the header-row scan.
type ScanState int

const (
	StateScanning        ScanState = iota // No header keyword seen yet
	StateHeaderFound                      // Last row had header keywords but not both required columns
	StateColumnsResolved                  // Name and deduction columns located; terminal
	StateFailed                           // Window exhausted or input ended; terminal
)

func (s ScanState) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateHeaderFound:
		return "headerFound"
	case StateColumnsResolved:
		return "columnsResolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Columns holds zero-based column positions; -1 marks a column that was not found.
type Columns struct {
	Name           int
	Deduction      int
	ManagementUnit int
	EmployeeNumber int
}

func noColumns() Columns {
	return Columns{Name: -1, Deduction: -1, ManagementUnit: -1, EmployeeNumber: -1}
}

func (c Columns) resolved() bool {
	return c.Name >= 0 && c.Deduction >= 0
}

func (c Columns) any() bool {
	return c.Name >= 0 || c.Deduction >= 0 || c.ManagementUnit >= 0 || c.EmployeeNumber >= 0
}

// headerScanner feeds candidate rows until the required columns are located or the window runs out.
type headerScanner struct {
	state     ScanState
	window    int
	scanned   int
	headerRow int // zero-based index of the adopted header row
	columns   Columns
}

func newHeaderScanner(window int) *headerScanner {
	return &headerScanner{state: StateScanning, window: window, headerRow: -1, columns: noColumns()}
}

// Feed inspects the next row and returns the new state. Terminal states ignore further rows.
func (s *headerScanner) Feed(row []string) ScanState {
	if s.done() {
		return s.state
	}
	idx := s.scanned
	s.scanned++

	cols := detectColumns(row)
	switch {
	case cols.resolved():
		s.state = StateColumnsResolved
		s.headerRow = idx
		s.columns = cols
		return s.state
	case cols.any():
		s.state = StateHeaderFound
	default:
		s.state = StateScanning
	}

	if s.scanned >= s.window {
		s.state = StateFailed
	}
	return s.state
}

// Finish marks the scan failed when input ended before the header was resolved.
func (s *headerScanner) Finish() ScanState {
	if s.state != StateColumnsResolved {
		s.state = StateFailed
	}
	return s.state
}

func (s *headerScanner) done() bool {
	return s.state == StateColumnsResolved || s.state == StateFailed
}

// detectColumns applies the keyword rules to every cell of a row. The first cell
// matching a column wins.
func detectColumns(row []string) Columns {
	cols := noColumns()
	for i, cell := range row {
		c := strings.ToLower(strings.TrimSpace(cell))
		if c == "" {
			continue
		}
		switch {
		case strings.Contains(c, "employee") && strings.Contains(c, "name"):
			if cols.Name < 0 {
				cols.Name = i
			}
		case strings.Contains(c, "employee") && (strings.Contains(c, "no") || strings.Contains(c, "number")):
			if cols.EmployeeNumber < 0 {
				cols.EmployeeNumber = i
			}
		case strings.Contains(c, "monthly") || strings.Contains(c, "deduction") || strings.Contains(c, "amount"):
			if cols.Deduction < 0 {
				cols.Deduction = i
			}
		case strings.Contains(c, "management") || strings.Contains(c, "unit") || strings.Contains(c, "school"):
			if cols.ManagementUnit < 0 {
				cols.ManagementUnit = i
			}
		}
	}
	return cols
}
