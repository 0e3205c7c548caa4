package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"ddscanner/internal/config"
	"ddscanner/internal/domain"
	"ddscanner/internal/ports"
	"ddscanner/internal/signal"
)

const maxBodyRunes = 400

// PipelineDeps wires all driven adapters into the sweep orchestration.
type PipelineDeps struct {
	Source   ports.PostSource
	Comments ports.CommentSource
	Enricher ports.Enricher
	Store    ports.RecordStore
	Notifier ports.Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

// Pipeline implements the signal extraction and ranking workflow: one full
// batch sweep over every (subreddit, ordering) pair followed by a stable
// score-descending rewrite of the log.
type Pipeline struct {
	source   ports.PostSource
	comments ports.CommentSource
	enricher ports.Enricher
	store    ports.RecordStore
	notifier ports.Notifier
	logger   *slog.Logger
	now      func() time.Time

	sweep  config.SweepConfig
	topN   int
	flairs *signal.FlairFilter
}

// pullResult is the outcome of one (subreddit, ordering) fetch. The sweep
// branches on it instead of aborting: a failed pair is logged and skipped.
type pullResult struct {
	posts []domain.Post
	err   error
}

// NewPipeline constructs the orchestration component.
func NewPipeline(cfg config.SweepConfig, topN int, deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:   deps.Source,
		comments: deps.Comments,
		enricher: deps.Enricher,
		store:    deps.Store,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		now:      now,
		sweep:    cfg,
		topN:     topN,
		flairs:   signal.NewFlairFilter(cfg.FlairsToIgnore),
	}
}

// Sweep runs one full batch pass: clear the log, process every
// (subreddit, ordering) pair sequentially, then rank-sort the log and
// publish the digest. Store failures are fatal; pull and enrichment
// failures are not.
func (p *Pipeline) Sweep(ctx context.Context) error {
	log := p.componentLogger().With("run", uuid.NewString())

	if err := p.store.Truncate(); err != nil {
		return fmt.Errorf("clear log: %w", err)
	}

	seen := signal.NewDedup()
	for _, sub := range p.sweep.Subreddits {
		processed, kept := 0, 0

		for _, ordering := range p.sweep.Orderings {
			result := p.pull(ctx, sub, ordering)
			if result.err != nil {
				log.Warn("pull failed, skipping pair",
					"subreddit", sub, "ordering", ordering, "error", result.err)
				continue
			}

			for _, post := range result.posts {
				appended, err := p.processPost(ctx, log, seen, post, &processed)
				if err != nil {
					return err
				}
				if appended {
					kept++
				}
			}
		}

		log.Info("subreddit done", "subreddit", sub, "processed", processed, "kept", kept)
	}

	if err := p.SortLog(); err != nil {
		return err
	}

	return p.publishDigest(ctx, log)
}

func (p *Pipeline) pull(ctx context.Context, subreddit, ordering string) pullResult {
	posts, err := p.source.Listing(ctx, subreddit, ordering, p.sweep.PostLimit)
	return pullResult{posts: posts, err: err}
}

// processPost runs dedup -> filter -> score -> enrich -> append for one
// candidate. Only store errors propagate.
func (p *Pipeline) processPost(ctx context.Context, log *slog.Logger, seen *signal.Dedup, post domain.Post, processed *int) (bool, error) {
	if seen.Seen(post.ID) || post.Stickied {
		return false, nil
	}
	seen.Mark(post.ID)
	*processed++

	if p.flairs.Ignored(post.Flair, post.HasFlair) {
		return false, nil
	}

	ageHours := post.AgeHours(p.now().UTC())
	tickers := signal.ExtractTickers(post.Title, post.Body)
	result := signal.Score(post, ageHours, tickers)

	if result.Score < p.sweep.ScoreThreshold {
		return false, nil
	}
	log.Info("qualifying post", "score", result.Score, "title", post.Title)

	body, sentiment := p.enrich(ctx, log, post)

	rec := domain.Record{
		Score:          result.Score,
		SentimentScore: sentiment,
		PostedDate:     post.CreatedAt.UTC().Format("2006-01-02"),
		Tickers:        tickers,
		Title:          post.Title,
		Author:         post.Author,
		Subreddit:      post.Subreddit,
		Upvotes:        post.Upvotes,
		UpvoteRatio:    post.UpvoteRatio,
		URL:            post.URL,
		Body:           truncateRunes(body, maxBodyRunes),
		Breakdown:      result.Breakdown,
	}
	if post.HasFlair {
		flair := signal.NormalizeFlair(post.Flair)
		rec.Flair = &flair
	}

	if err := p.store.Append(rec); err != nil {
		return false, fmt.Errorf("append record %s: %w", post.ID, err)
	}
	return true, nil
}

// enrich calls the text-generation service and soft-fails: any error, and
// any reply without a summary, keeps the original body; any error keeps a
// neutral sentiment. The candidate is never dropped here.
func (p *Pipeline) enrich(ctx context.Context, log *slog.Logger, post domain.Post) (string, int) {
	if p.enricher == nil {
		return post.Body, domain.NeutralSentiment
	}

	var comments []string
	if p.comments != nil {
		var err error
		comments, err = p.comments.Comments(ctx, post.ID)
		if err != nil {
			log.Warn("comment fetch failed", "post", post.ID, "error", err)
			comments = nil
		}
	}

	enrichment, err := p.enricher.Enrich(ctx, post.Title, post.Body, comments)
	if err != nil {
		log.Warn("enrichment failed", "post", post.ID, "error", err)
		return post.Body, domain.NeutralSentiment
	}

	body := post.Body
	if enrichment.Summary != "" {
		body = enrichment.Summary
	}
	return body, enrichment.SentimentScore
}

// SortLog is the terminal rank pass: load every record, stable-sort by
// score descending so equal scores keep their append order, and rewrite
// the log atomically. It is idempotent on an already-sorted log.
func (p *Pipeline) SortLog() error {
	records, err := p.store.LoadAll()
	if err != nil {
		return fmt.Errorf("load log: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})

	if err := p.store.RewriteAll(records); err != nil {
		return fmt.Errorf("rewrite log: %w", err)
	}

	p.componentLogger().Info("log sorted", "records", len(records))
	return nil
}

func (p *Pipeline) publishDigest(ctx context.Context, log *slog.Logger) error {
	if p.notifier == nil {
		return nil
	}

	records, err := p.store.LoadAll()
	if err != nil {
		return fmt.Errorf("load log for digest: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	if len(records) > p.topN {
		records = records[:p.topN]
	}

	if err := p.notifier.PublishDigest(ctx, buildDigestMessage(records)); err != nil {
		log.Warn("digest publish failed", "error", err)
	}
	return nil
}

func buildDigestMessage(records []domain.Record) string {
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "- %s\nScore: %d | Sentiment: %d\n%s\n%s\n\n",
			rec.Title,
			rec.Score,
			rec.SentimentScore,
			strings.Join(rec.Tickers, " "),
			rec.URL)
	}
	return b.String()
}

func (p *Pipeline) componentLogger() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.New(slog.DiscardHandler)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
