package signal

import (
	"strings"

	"ddscanner/internal/domain"
)

var (
	financialTerms = []string{"earnings", "guidance", "catalyst"}
	filingTerms    = []string{"sec.gov", "10-q", "10-k"}
	technicalTerms = []string{"insider buy", "short float", "call volume"}
	memeTerms      = []string{"yolo", "🚀"}
)

// Score evaluates the heuristic rule table against one post. All rules are
// additive and, with one exception, independent: the five-way branch keyed
// on ticker presence and age is mutually exclusive within itself, while
// new_post fires on age alone regardless of tickers. The returned
// breakdown holds a key per taken branch and its values sum to the score.
func Score(p domain.Post, ageHours float64, tickers []string) domain.ScoreResult {
	score := 0
	breakdown := map[string]int{}
	add := func(key string, delta int) {
		score += delta
		breakdown[key] = delta
	}

	text := strings.ToLower(p.Title + " " + p.Body)

	if len(strings.Fields(p.Body)) > 400 {
		add("long_body", 10)
	} else {
		add("short_body", -10)
	}
	if containsAny(text, financialTerms) {
		add("financial_terms", 10)
	}
	if containsAny(text, filingTerms) {
		add("sec_filings", 15)
	}
	if containsAny(text, technicalTerms) {
		add("technical_terms", 10)
	}
	if TitleHasTicker(p.Title) {
		add("ticker_in_title", 5)
	}
	if containsAny(text, memeTerms) {
		add("meme_penalty", -15)
	}
	if p.UpvoteRatio >= 0.8 {
		add("high_upvote_ratio", 5)
	}
	if ageHours < 1 {
		add("new_post", 4)
	}

	switch {
	case len(tickers) < 1:
		add("no_tickers", -30)
	case ageHours < 3:
		add("recent_post", 3)
	case ageHours < 6:
		add("somewhat_recent_post", 2)
	case ageHours < 12:
		add("older_post", 1)
	default:
		add("age_penalty", -int(ageHours/24))
	}

	return domain.ScoreResult{Score: score, Breakdown: breakdown}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
