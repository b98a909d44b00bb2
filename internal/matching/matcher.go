package matching

import (
	"strings"
	"unicode/utf8"

	"teacher_savings_portal/internal/domain/teacher"

	"github.com/shopspring/decimal"
)

// Method tells how a deduction row was matched.
type Method string

const (
	MethodExactID Method = "exact_id"
	MethodFuzzy   Method = "fuzzy"
	MethodNone    Method = "none"
)

var (
	// MatchThreshold must be strictly exceeded for a fuzzy candidate to be accepted.
	MatchThreshold = decimal.RequireFromString("0.7")
	// UnitBonus is added when the management units contain one another.
	UnitBonus = decimal.RequireFromString("0.3")
)

// minTokenLen is the shortest record token that takes part in name scoring.
const minTokenLen = 3

// Query is the part of a deduction row used for matching.
type Query struct {
	EmployeeNumber string
	Name           string
	ManagementUnit string
}

// Result is the outcome of matching one row. Teacher is nil iff Method is MethodNone.
type Result struct {
	Teacher *teacher.Teacher
	Method  Method
	Score   decimal.Decimal // Only meaningful for MethodFuzzy
}

func (r Result) Matched() bool {
	return r.Method != MethodNone && r.Teacher != nil
}

// Snapshot is the roster used for one run together with its index.
type Snapshot struct {
	Teachers []*teacher.Teacher
	Index    *Index
}

// NewSnapshot indexes a roster for matching.
func NewSnapshot(teachers []*teacher.Teacher) *Snapshot {
	return &Snapshot{Teachers: teachers, Index: NewIndex(teachers)}
}

// Match resolves a row to a teacher: employee ID first, then a unique exact name,
// then the best fuzzy score above MatchThreshold. It never fails.
func Match(q Query, snap *Snapshot) Result {
	if strings.TrimSpace(q.EmployeeNumber) != "" {
		if t, ok := snap.Index.LookupByID(q.EmployeeNumber); ok {
			return Result{Teacher: t, Method: MethodExactID, Score: decimal.NewFromInt(1)}
		}
	}

	if t := uniqueNameMatch(q.Name, snap.Teachers); t != nil {
		return Result{Teacher: t, Method: MethodExactID, Score: decimal.NewFromInt(1)}
	}

	var best *teacher.Teacher
	bestScore := decimal.Zero
	for _, t := range snap.Teachers {
		score := Score(q, t)
		if !Accepts(score) {
			continue
		}
		if best == nil || score.GreaterThan(bestScore) {
			best = t
			bestScore = score
		}
	}
	if best == nil {
		return Result{Method: MethodNone, Score: decimal.Zero}
	}
	return Result{Teacher: best, Method: MethodFuzzy, Score: bestScore}
}

// Accepts reports whether a fuzzy score strictly exceeds MatchThreshold.
func Accepts(score decimal.Decimal) bool {
	return score.GreaterThan(MatchThreshold)
}

func uniqueNameMatch(name string, teachers []*teacher.Teacher) *teacher.Teacher {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return nil
	}
	var found *teacher.Teacher
	for _, t := range teachers {
		if strings.ToLower(strings.TrimSpace(t.FullName)) != want {
			continue
		}
		if found != nil {
			return nil
		}
		found = t
	}
	return found
}

// Score is the fuzzy similarity between a row and a teacher: the name token score plus
// UnitBonus when the management units contain one another. It may exceed 1.
func Score(q Query, t *teacher.Teacher) decimal.Decimal {
	score := NameScore(q.Name, t.FullName)
	if unitsOverlap(q.ManagementUnit, t.ManagementUnit) {
		score = score.Add(UnitBonus)
	}
	return score
}

// NameScore counts record tokens longer than two characters that contain, or are
// contained in, some teacher token, divided by the larger token count.
func NameScore(recordName, teacherName string) decimal.Decimal {
	recordTokens := strings.Fields(strings.ToLower(recordName))
	teacherTokens := strings.Fields(strings.ToLower(teacherName))
	denominator := len(recordTokens)
	if len(teacherTokens) > denominator {
		denominator = len(teacherTokens)
	}
	if denominator == 0 {
		return decimal.Zero
	}

	matched := 0
	for _, rt := range recordTokens {
		if utf8.RuneCountInString(rt) < minTokenLen {
			continue
		}
		for _, tt := range teacherTokens {
			if strings.Contains(rt, tt) || strings.Contains(tt, rt) {
				matched++
				break
			}
		}
	}
	return decimal.NewFromInt(int64(matched)).Div(decimal.NewFromInt(int64(denominator)))
}

func unitsOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
