package signal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddscanner/internal/domain"
)

func scoreOf(t *testing.T, p domain.Post, ageHours float64) domain.ScoreResult {
	t.Helper()
	res := Score(p, ageHours, ExtractTickers(p.Title, p.Body))

	sum := 0
	for _, delta := range res.Breakdown {
		sum += delta
	}
	require.Equal(t, res.Score, sum, "score must equal the sum of breakdown deltas")

	return res
}

func TestScoreEarningsPost(t *testing.T) {
	t.Parallel()

	p := domain.Post{
		Title:       "Earnings beat, $AAPL to the moon",
		Body:        strings.TrimSpace(strings.Repeat("earnings call detail ", 167)), // 501 words
		UpvoteRatio: 0.85,
	}

	res := scoreOf(t, p, 0.5)

	assert.Equal(t, 37, res.Score)
	assert.Equal(t, map[string]int{
		"long_body":         10,
		"financial_terms":   10,
		"ticker_in_title":   5,
		"high_upvote_ratio": 5,
		"new_post":          4,
		"recent_post":       3,
	}, res.Breakdown)
}

func TestScoreMemePostWithoutTickers(t *testing.T) {
	t.Parallel()

	p := domain.Post{
		Title: "we are going up",
		Body:  "short note 🚀 nothing else",
	}

	res := scoreOf(t, p, 30)

	// no_tickers pre-empts the age branch entirely, so no age key appears
	// even for a 30h-old post.
	assert.Equal(t, -55, res.Score)
	assert.Equal(t, map[string]int{
		"short_body":   -10,
		"meme_penalty": -15,
		"no_tickers":   -30,
	}, res.Breakdown)
}

func TestScoreAgeBranchIsExclusive(t *testing.T) {
	t.Parallel()

	p := domain.Post{Title: "$TSLA watch", Body: "watching $TSLA"}

	cases := []struct {
		age  float64
		key  string
		want int
	}{
		{0.5, "recent_post", 3}, // ticker branch, not new_post's copy
		{2.9, "recent_post", 3},
		{4, "somewhat_recent_post", 2},
		{11, "older_post", 1},
		{13, "age_penalty", 0},
		{49, "age_penalty", -2},
	}

	for _, tc := range cases {
		res := scoreOf(t, p, tc.age)

		delta, ok := res.Breakdown[tc.key]
		require.True(t, ok, "age %.1f should fire %s", tc.age, tc.key)
		assert.Equal(t, tc.want, delta, "age %.1f", tc.age)

		fired := 0
		for _, key := range []string{"no_tickers", "recent_post", "somewhat_recent_post", "older_post", "age_penalty"} {
			if _, ok := res.Breakdown[key]; ok {
				fired++
			}
		}
		assert.Equal(t, 1, fired, "exactly one branch of the ticker/age group may fire")
	}
}

func TestScoreNewPostFiresRegardlessOfTickers(t *testing.T) {
	t.Parallel()

	res := scoreOf(t, domain.Post{Title: "no symbols here", Body: "still nothing"}, 0.2)

	assert.Equal(t, 4, res.Breakdown["new_post"])
	assert.Equal(t, -30, res.Breakdown["no_tickers"])
}

func TestScoreFilingAndTechnicalTerms(t *testing.T) {
	t.Parallel()

	p := domain.Post{
		Title: "$XYZ 10-K deep dive",
		Body:  "Filed on sec.gov, unusual call volume and an insider buy.",
	}

	res := scoreOf(t, p, 2)

	assert.Equal(t, 15, res.Breakdown["sec_filings"])
	assert.Equal(t, 10, res.Breakdown["technical_terms"])
	assert.NotContains(t, res.Breakdown, "financial_terms")
}

func TestScoreUpvoteRatioBoundary(t *testing.T) {
	t.Parallel()

	p := domain.Post{Title: "$ABC", Body: "body", UpvoteRatio: 0.8}
	res := scoreOf(t, p, 2)
	assert.Equal(t, 5, res.Breakdown["high_upvote_ratio"])

	p.UpvoteRatio = 0.79
	res = scoreOf(t, p, 2)
	assert.NotContains(t, res.Breakdown, "high_upvote_ratio")

	// Absent ratio is reported as zero and never fires the rule.
	p.UpvoteRatio = 0
	res = scoreOf(t, p, 2)
	assert.NotContains(t, res.Breakdown, "high_upvote_ratio")
}
