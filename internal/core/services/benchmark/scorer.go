package benchmark

import "unicode/utf8"

// LengthScorer rates a completion by length alone: more than 10 characters scores 1.0,
// anything shorter 0.5.
type LengthScorer struct{}

func (LengthScorer) Score(_ string, content string) float64 {
	if utf8.RuneCountInString(content) > 10 {
		return 1.0
	}
	return 0.5
}
