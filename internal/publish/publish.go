// Package publish creates the forwarded toots on the destination
// instance via its authenticated API.
package publish

import (
	"context"
	"fmt"

	"github.com/mattn/go-mastodon"
	"github.com/sirupsen/logrus"

	"tootsync/internal/feed"
	"tootsync/internal/sanitize"
)

// statusPoster is the slice of the Mastodon API the publisher uses.
// *mastodon.Client satisfies it; tests substitute a fake.
type statusPoster interface {
	UploadMedia(ctx context.Context, file string) (*mastodon.Attachment, error)
	PostStatus(ctx context.Context, toot *mastodon.Toot) (*mastodon.Status, error)
}

// Publisher posts entries to one destination account with a fixed
// visibility for the whole run.
type Publisher struct {
	api        statusPoster
	visibility string
}

// New builds a publisher for the destination host using the client
// id/secret/access-token triple.
func New(host string, creds *Credentials, visibility string) *Publisher {
	client := mastodon.NewClient(&mastodon.Config{
		Server:       "https://" + host,
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		AccessToken:  creds.AccessToken,
	})
	return &Publisher{api: client, visibility: visibility}
}

// Publish forwards the entries in order and returns how many were
// posted. Each entry becomes exactly one status: all of its uploaded
// media attach to that status, and the body is the normalized text.
// An empty entry list is a no-op.
func (p *Publisher) Publish(ctx context.Context, entries []feed.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	posted := 0
	for _, e := range entries {
		var mediaIDs []mastodon.ID
		for _, att := range e.Attachments {
			if att.LocalPath == "" {
				return posted, fmt.Errorf("attachment %s was never downloaded", att.SourceURL)
			}
			uploaded, err := p.api.UploadMedia(ctx, att.LocalPath)
			if err != nil {
				return posted, fmt.Errorf("upload media %s: %w", att.LocalPath, err)
			}
			mediaIDs = append(mediaIDs, uploaded.ID)
		}

		toot := &mastodon.Toot{
			Status:     sanitize.Normalize(e.Text),
			Visibility: p.visibility,
		}
		// MediaIDs stays unset for text-only toots.
		if len(mediaIDs) > 0 {
			toot.MediaIDs = mediaIDs
		}

		if _, err := p.api.PostStatus(ctx, toot); err != nil {
			return posted, fmt.Errorf("post status: %w", err)
		}
		posted++

		logrus.WithFields(logrus.Fields{
			"media":      len(mediaIDs),
			"visibility": p.visibility,
		}).Debug("posted status")
	}

	return posted, nil
}
