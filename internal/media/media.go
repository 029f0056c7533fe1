// Package media downloads toot attachments to local scratch storage so
// they can be re-uploaded to the destination instance.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"tootsync/internal/feed"
)

const downloadTimeout = 10 * time.Second

// ErrDownloadFailed marks an attachment that could not be fetched. Any
// single failure aborts the whole run; partial forwarding is never
// attempted.
var ErrDownloadFailed = errors.New("media download failed")

// Resolver downloads attachments serially into a scratch directory.
// Files are keyed by the source URL's final path segment; an existing
// file of the same name is overwritten.
type Resolver struct {
	dir    string
	client *http.Client
}

func NewResolver(dir string) *Resolver {
	return &Resolver{
		dir: dir,
		client: &http.Client{
			Timeout: downloadTimeout,
			// Redirect responses are treated as download failures.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Resolve downloads every attachment of every entry, in order, setting
// LocalPath on each as it lands on disk. LocalPath is set if and only
// if the download succeeded.
func (r *Resolver) Resolve(ctx context.Context, entries []feed.Entry) error {
	for i := range entries {
		atts := entries[i].Attachments
		for j := range atts {
			local, err := r.download(ctx, atts[j].SourceURL)
			if err != nil {
				return err
			}
			atts[j].LocalPath = local
		}
	}
	return nil
}

func (r *Resolver) download(ctx context.Context, srcURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, srcURL, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, srcURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: status %d", ErrDownloadFailed, srcURL, resp.StatusCode)
	}

	name, err := fileName(srcURL)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(r.dir, name)

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, srcURL, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, srcURL, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, srcURL, err)
	}

	logrus.WithFields(logrus.Fields{"url": srcURL, "file": dest}).Debug("downloaded attachment")

	return dest, nil
}

// fileName derives the scratch file name from the final path segment of
// the source URL.
func fileName(srcURL string) (string, error) {
	u, err := url.Parse(srcURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, srcURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("%w: %s: no file name in URL path", ErrDownloadFailed, srcURL)
	}
	return name, nil
}
