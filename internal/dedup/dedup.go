// Package dedup removes candidate toots that already exist on the
// destination account. Presence is re-derived every run from the
// destination's own feed; nothing is persisted between runs.
package dedup

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"tootsync/internal/feed"
	"tootsync/internal/sanitize"
)

// Fetcher retrieves an account's feed entries. *feed.Reader satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, host, username string, opts feed.Options) ([]feed.Entry, error)
}

// Drop returns the candidates not already present at the destination,
// in their original order. The destination feed is fetched with zero
// options: no limit, no date cutoff, no title filter — the full
// available window is checked every run.
//
// When onlyOriginal is set, candidates whose raw text begins with a
// mention marker are dropped too, even if upstream filtering let them
// through.
func Drop(ctx context.Context, f Fetcher, host, username string, onlyOriginal bool, candidates []feed.Entry) ([]feed.Entry, error) {
	existing, err := f.Fetch(ctx, host, username, feed.Options{})
	if err != nil {
		return nil, err
	}

	// Index destination toots by fingerprint; comparing each candidate
	// against the set is equivalent to the pairwise text comparison.
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[sanitize.Fingerprint(e.Text)] = struct{}{}
	}

	kept := make([]feed.Entry, 0, len(candidates))
	dropped := 0
	for _, c := range candidates {
		if onlyOriginal && strings.HasPrefix(c.Text, "@") {
			dropped++
			continue
		}
		if _, dup := seen[sanitize.Fingerprint(c.Text)]; dup {
			dropped++
			continue
		}
		kept = append(kept, c)
	}

	logrus.WithFields(logrus.Fields{
		"destination": len(existing),
		"dropped":     dropped,
		"kept":        len(kept),
	}).Debug("deduplicated against destination feed")

	return kept, nil
}
