package ports

import (
	"context"
	"time"

	"ddscanner/internal/domain"
)

// PostSource pulls a finite listing of candidate posts for one
// (subreddit, ordering) pair, up to limit. The returned slice preserves
// the feed's own order within and across pages.
type PostSource interface {
	Listing(ctx context.Context, subreddit, ordering string, limit int) ([]domain.Post, error)
}

// CommentSource fetches top-level comment bodies for a post.
type CommentSource interface {
	Comments(ctx context.Context, postID string) ([]string, error)
}

// Enricher calls the text-generation service for a summary and sentiment.
// Callers treat any error as soft: the post is kept with neutral values.
type Enricher interface {
	Enrich(ctx context.Context, title, body string, comments []string) (domain.Enrichment, error)
}

// RecordStore persists the append-only signal log.
type RecordStore interface {
	Truncate() error
	Append(rec domain.Record) error
	LoadAll() ([]domain.Record, error)
	RewriteAll(recs []domain.Record) error
}

// Notifier publishes a post-sweep digest to an external channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when sweeps execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
