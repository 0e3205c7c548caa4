package signal

// Dedup is the run-scoped set of already-processed post IDs. One instance
// is created per sweep and threaded through the pipeline; it is shared
// across every (subreddit, ordering) pair so overlapping listings process
// a post only once, and it carries no state between runs.
type Dedup struct {
	ids map[string]struct{}
}

// NewDedup returns an empty seen-set.
func NewDedup() *Dedup {
	return &Dedup{ids: map[string]struct{}{}}
}

// Seen reports whether id was already marked this run.
func (d *Dedup) Seen(id string) bool {
	_, ok := d.ids[id]
	return ok
}

// Mark records id as processed.
func (d *Dedup) Mark(id string) {
	d.ids[id] = struct{}{}
}

// Len returns how many IDs were marked.
func (d *Dedup) Len() int {
	return len(d.ids)
}
