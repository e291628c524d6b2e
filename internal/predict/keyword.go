package predict

import (
	"context"
	"strings"
	"unicode"
)

// DefaultCategory is returned when no keyword matches.
const DefaultCategory = "Personal"

type rule struct {
	category string
	keywords []string
}

// rules are checked in order; earlier rules win ties.
var rules = []rule{
	{"Work", []string{"report", "meeting", "client", "presentation", "email", "deploy", "review", "release", "project", "office"}},
	{"Shopping", []string{"buy", "milk", "bread", "grocery", "groceries", "shop", "store", "order", "purchase"}},
	{"Health", []string{"doctor", "dentist", "gym", "workout", "exercise", "run", "medicine", "pharmacy", "appointment"}},
	{"Finance", []string{"pay", "bill", "bills", "tax", "taxes", "invoice", "bank", "budget", "rent", "insurance"}},
	{"Home", []string{"clean", "laundry", "repair", "fix", "plumber", "garden", "kitchen", "dishes", "vacuum"}},
	{"Learning", []string{"study", "read", "book", "course", "learn", "homework", "exam", "lecture", "practice"}},
}

// Keyword predicts categories by counting known words. It never fails.
type Keyword struct{}

// NewKeyword returns the keyword predictor.
func NewKeyword() *Keyword { return &Keyword{} }

func (k *Keyword) Name() string { return "keyword" }

// Predict scores each category by keyword hits in title and description.
func (k *Keyword) Predict(_ context.Context, title, description string) (string, error) {
	words := make(map[string]int)
	for _, w := range strings.FieldsFunc(strings.ToLower(title+" "+description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w]++
	}

	best, bestScore := DefaultCategory, 0
	for _, r := range rules {
		score := 0
		for _, kw := range r.keywords {
			score += words[kw]
		}
		if score > bestScore {
			best, bestScore = r.category, score
		}
	}
	return best, nil
}
