package jira

import (
	"context"
	"fmt"
	"time"

	"github.com/devtrail/devtrail/internal/timeline"
)

// searcher is the capped query surface the fetcher splits ranges over.
type searcher interface {
	search(ctx context.Context, user string, startMillis, endMillis int64) ([]Entry, error)
}

// maxSplits caps the recursion depth. Millisecond ranges bottom out in well
// under this many halvings; hitting the cap means the endpoint keeps
// reporting capacity no matter how narrow the range gets.
const maxSplits = 40

// Fetcher retrieves the complete entry set for a user and time range from
// an endpoint that caps every response at maxResults. A response below the
// cap is provably complete for its sub-range; a response at the cap may be
// truncated, so the range is halved and both halves fetched recursively.
// A zero-width range is terminal regardless of how many entries it returns.
type Fetcher struct {
	searcher searcher
}

func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{searcher: client}
}

// FetchRange returns every entry for the user whose update time lies in the
// window, deduplicated by entry id. Deduplication matters because the two
// halves of a split share the midpoint instant, so an entry updated exactly
// then is retrieved twice.
func (f *Fetcher) FetchRange(ctx context.Context, user string, w timeline.Window) ([]Entry, error) {
	entries, err := f.fetchRange(ctx, user, w, 0)
	if err != nil {
		return nil, err
	}
	return dedupe(entries), nil
}

func (f *Fetcher) fetchRange(ctx context.Context, user string, w timeline.Window, depth int) ([]Entry, error) {
	if depth > maxSplits {
		return nil, fmt.Errorf("range %s..%s still at capacity after %d splits",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), maxSplits)
	}

	entries, err := f.searcher.search(ctx, user, w.Start.UnixMilli(), w.End.UnixMilli())
	if err != nil {
		return nil, err
	}
	if len(entries) < maxResults || w.IsPoint() {
		return entries, nil
	}

	mid := w.Midpoint()
	left, err := f.fetchRange(ctx, user, timeline.Window{Start: w.Start, End: mid}, depth+1)
	if err != nil {
		return nil, err
	}
	right, err := f.fetchRange(ctx, user, timeline.Window{Start: mid, End: w.End}, depth+1)
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}

func dedupe(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
