package domain

import "time"

// Post is one fetched candidate before scoring and filtering. It is owned
// by the pipeline for a single pass and is never persisted directly.
type Post struct {
	ID          string
	Title       string
	Body        string
	Author      string
	Subreddit   string
	Flair       string
	HasFlair    bool
	CreatedAt   time.Time
	Upvotes     int
	UpvoteRatio float64
	URL         string
	Stickied    bool
}

// AgeHours returns the post age relative to now, in fractional hours.
func (p Post) AgeHours(now time.Time) float64 {
	return now.Sub(p.CreatedAt).Hours()
}

// ScoreResult carries the total heuristic score and the per-rule deltas.
// Breakdown holds keys only for rules whose branch was taken; the sum of
// its values equals Score.
type ScoreResult struct {
	Score     int
	Breakdown map[string]int
}

// Enrichment is the outcome of the text-generation call: a rewritten body
// and a sentiment value in [0, 100] where 50 is neutral.
type Enrichment struct {
	Summary        string
	SentimentScore int
}

// NeutralSentiment is recorded when enrichment fails or is disabled.
const NeutralSentiment = 50

// Record is the unit appended to the signal log, immutable once written.
type Record struct {
	Score          int            `json:"score"`
	SentimentScore int            `json:"sentiment_score"`
	PostedDate     string         `json:"posted_date"`
	Tickers        []string       `json:"tickers"`
	Title          string         `json:"title"`
	Author         string         `json:"author"`
	Subreddit      string         `json:"subreddit"`
	Flair          *string        `json:"flair"`
	Upvotes        int            `json:"upvotes"`
	UpvoteRatio    float64        `json:"upvote_ratio"`
	URL            string         `json:"url"`
	Body           string         `json:"body"`
	Breakdown      map[string]int `json:"breakdown"`
}
