// Package feed retrieves a Mastodon account's public Atom feed and maps
// it to forwardable entries, applying the run's filter policies while
// walking the feed in its own order.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

const (
	fetchTimeout = 30 * time.Second
	userAgent    = "tootsync/1.0"
)

// ErrFeedUnavailable marks a feed that could not be fetched or parsed.
// It is fatal for the run; there is no retry.
var ErrFeedUnavailable = errors.New("feed unavailable")

// Mastodon titles boosts "X shared a status by Y" and replies by their
// subject; only fresh toots are titled "New status by X".
var newStatusRe = regexp.MustCompile(`^New\sstatus`)

// feedURLFunc builds the per-account Atom feed URL.
// Overridable in tests.
var feedURLFunc = func(host, username string) string {
	return fmt.Sprintf("https://%s/@%s.atom", host, username)
}

// Entry is one forwardable toot. Entries live for a single run; an
// Attachment exists only as part of its Entry.
type Entry struct {
	Text        string       // raw body, the feed's embedded HTML
	PublishedAt time.Time    // publish time truncated to whole seconds
	Attachments []Attachment // in feed order; empty for text-only toots
	IsOriginal  bool         // false for boosts and replies
}

// Attachment is one media object owned by its Entry.
type Attachment struct {
	SourceURL string
	MimeType  string
	LocalPath string // set by media.Resolver once the file is on disk
}

// Options are the filter policies applied during a fetch. The zero
// value fetches everything the feed returns.
type Options struct {
	// OnlyOriginal drops boosts and replies. Dropped items do not
	// count against Limit.
	OnlyOriginal bool
	// Limit stops the walk after this many items have passed the
	// title filter; 0 means all items on the feed page. Items skipped
	// by the Since cutoff still consume a slot.
	Limit int
	// Since drops items published strictly before it.
	Since time.Time
}

// Reader fetches and parses account feeds.
type Reader struct {
	client *http.Client
}

func NewReader() *Reader {
	return &Reader{
		client: &http.Client{
			Timeout:   fetchTimeout,
			Transport: &uaTransport{base: http.DefaultTransport},
		},
	}
}

// uaTransport injects a User-Agent header into every request.
type uaTransport struct {
	base http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.base.RoundTrip(req)
}

// Fetch retrieves the account's feed and returns its entries after
// filtering, preserving feed order.
func (r *Reader) Fetch(ctx context.Context, host, username string, opts Options) ([]Entry, error) {
	feedURL := feedURLFunc(host, username)

	fp := gofeed.NewParser()
	fp.Client = r.client

	f, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFeedUnavailable, feedURL, err)
	}

	entries, err := entriesFromFeed(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFeedUnavailable, feedURL, err)
	}

	logrus.WithFields(logrus.Fields{
		"url":     feedURL,
		"items":   len(f.Items),
		"entries": len(entries),
	}).Debug("fetched feed")

	return entries, nil
}

// entriesFromFeed walks feed items in order and applies the filter
// policies. The title filter runs before the count limit is charged, so
// skipped boosts and replies never consume a slot; items skipped only
// by the date cutoff do.
func entriesFromFeed(f *gofeed.Feed, opts Options) ([]Entry, error) {
	var entries []Entry
	taken := 0

	for _, item := range f.Items {
		original := newStatusRe.MatchString(item.Title)
		if opts.OnlyOriginal && !original {
			continue
		}

		if opts.Limit > 0 && taken >= opts.Limit {
			break
		}
		taken++

		published, err := itemPublished(item)
		if err != nil {
			return nil, err
		}
		if published.Before(opts.Since) {
			continue
		}

		entries = append(entries, Entry{
			Text:        item.Content,
			PublishedAt: published,
			Attachments: itemAttachments(item),
			IsOriginal:  original,
		})
	}

	return entries, nil
}

// itemPublished returns the item's publish time truncated to whole
// seconds. An item without a usable publish time is a structural
// anomaly; the parse fails closed rather than guessing.
func itemPublished(item *gofeed.Item) (time.Time, error) {
	t := item.PublishedParsed
	if t == nil {
		t = item.UpdatedParsed
	}
	if t == nil {
		return time.Time{}, fmt.Errorf("item %q has no publish time", item.Title)
	}
	return t.Truncate(time.Second), nil
}

func itemAttachments(item *gofeed.Item) []Attachment {
	var atts []Attachment
	for _, enc := range item.Enclosures {
		atts = append(atts, Attachment{
			SourceURL: enc.URL,
			MimeType:  enc.Type,
		})
	}
	return atts
}
