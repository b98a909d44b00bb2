package matching

import (
	"strings"

	"teacher_savings_portal/internal/domain/teacher"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// maxSuggestionDrift is the largest edit distance, relative to the longer name,
// for a roster name to be offered as a hint.
const maxSuggestionDrift = 0.5

var editOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// Suggest returns the roster teacher whose name is closest to name by edit distance.
// It is a hint for manual follow-up of unmatched rows, never a match.
func Suggest(name string, teachers []*teacher.Teacher) (*teacher.Teacher, bool) {
	source := []rune(strings.ToLower(strings.Join(strings.Fields(name), " ")))
	if len(source) == 0 {
		return nil, false
	}

	var best *teacher.Teacher
	bestRatio := maxSuggestionDrift
	for _, t := range teachers {
		target := []rune(strings.ToLower(strings.Join(strings.Fields(t.FullName), " ")))
		if len(target) == 0 {
			continue
		}
		longest := len(source)
		if len(target) > longest {
			longest = len(target)
		}
		distance := levenshtein.DistanceForStrings(source, target, editOptions)
		ratio := float64(distance) / float64(longest)
		if ratio <= bestRatio && (best == nil || ratio < bestRatio) {
			best = t
			bestRatio = ratio
		}
	}
	return best, best != nil
}
