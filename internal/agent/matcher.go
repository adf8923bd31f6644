package agent

import (
	"strings"

	"github.com/ashureev/helpdesk-bot/internal/domain"
)

// MatchThreshold is the minimum score an FAQ needs to answer a query.
const MatchThreshold = 2

// FAQScore is the diagnostic breakdown of one query/FAQ comparison.
type FAQScore struct {
	Question string
	Category int
	Overlap  int
}

// Total returns the combined score.
func (s FAQScore) Total() int {
	return s.Category + s.Overlap
}

// ScoreFAQ scores a single FAQ question against a query.
func ScoreFAQ(query, question string) FAQScore {
	q := strings.ToLower(strings.TrimSpace(query))
	f := strings.ToLower(question)

	score := FAQScore{Question: question}
	for _, set := range faqCategories {
		queryHas := containsAny(q, set.keywords)
		faqHas := containsAny(f, set.keywords)
		switch {
		case queryHas && faqHas:
			score.Category += 2
		case queryHas || faqHas:
			score.Category++
		}
	}
	score.Overlap = wordOverlap(q, f)
	return score
}

// MatchFAQ returns the answer of the first FAQ, in input order, whose score
// reaches MatchThreshold. ok is false when nothing matches.
func MatchFAQ(query string, faqs []domain.FAQEntry) (answer string, ok bool) {
	for _, faq := range faqs {
		if ScoreFAQ(query, faq.Question).Total() >= MatchThreshold {
			return faq.Answer, true
		}
	}
	return "", false
}

func wordOverlap(a, b string) int {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(a) {
		words[w] = struct{}{}
	}
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(b) {
		if _, ok := words[w]; !ok {
			continue
		}
		seen[w] = struct{}{}
	}
	return len(seen)
}
