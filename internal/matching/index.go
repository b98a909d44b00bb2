package matching

import (
	"teacher_savings_portal/internal/domain/teacher"
)

// Index provides O(1) lookup of teachers by normalized employee ID.
// It is built once per reconciliation run and never mutated afterwards.
type Index struct {
	byEmployeeID map[string]*teacher.Teacher
	duplicates   []string
}

// NewIndex builds the index over a roster snapshot. Teachers without an employee ID are
// not indexed; when two teachers share an ID the first one in roster order is kept.
func NewIndex(teachers []*teacher.Teacher) *Index {
	idx := &Index{byEmployeeID: make(map[string]*teacher.Teacher, len(teachers))}
	for _, t := range teachers {
		key := teacher.NormalizeEmployeeID(t.EmployeeID)
		if key == "" {
			continue
		}
		if _, exists := idx.byEmployeeID[key]; exists {
			idx.duplicates = append(idx.duplicates, key)
			continue
		}
		idx.byEmployeeID[key] = t
	}
	return idx
}

// LookupByID returns the teacher with the given employee ID, compared case-insensitively
// and ignoring surrounding whitespace.
func (i *Index) LookupByID(employeeID string) (*teacher.Teacher, bool) {
	key := teacher.NormalizeEmployeeID(employeeID)
	if key == "" {
		return nil, false
	}
	t, ok := i.byEmployeeID[key]
	return t, ok
}

// Len is the number of indexed employee IDs.
func (i *Index) Len() int {
	return len(i.byEmployeeID)
}

// Duplicates lists employee IDs that appeared more than once in the roster.
func (i *Index) Duplicates() []string {
	return i.duplicates
}
