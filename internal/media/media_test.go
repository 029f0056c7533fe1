package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tootsync/internal/feed"
)

func TestResolve_DownloadsAttachments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media/cat.png":
			w.Write([]byte("png-bytes"))
		case "/media/dog.mp4":
			w.Write([]byte("mp4-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	entries := []feed.Entry{{
		Text: "<p>two files</p>",
		Attachments: []feed.Attachment{
			{SourceURL: srv.URL + "/media/cat.png", MimeType: "image/png"},
			{SourceURL: srv.URL + "/media/dog.mp4", MimeType: "video/mp4"},
		},
	}}

	if err := NewResolver(dir).Resolve(context.Background(), entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantFiles := []string{"cat.png", "dog.mp4"}
	wantBodies := []string{"png-bytes", "mp4-bytes"}
	for i, att := range entries[0].Attachments {
		want := filepath.Join(dir, wantFiles[i])
		if att.LocalPath != want {
			t.Errorf("attachment %d LocalPath = %q, want %q", i, att.LocalPath, want)
		}
		data, err := os.ReadFile(want)
		if err != nil {
			t.Fatalf("read %s: %v", want, err)
		}
		if string(data) != wantBodies[i] {
			t.Errorf("file %s = %q, want %q", wantFiles[i], data, wantBodies[i])
		}
	}
}

func TestResolve_NonSuccessStatusIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	entries := []feed.Entry{{
		Attachments: []feed.Attachment{{SourceURL: srv.URL + "/media/gone.png"}},
	}}

	err := NewResolver(t.TempDir()).Resolve(context.Background(), entries)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("err = %v, want ErrDownloadFailed", err)
	}
	if entries[0].Attachments[0].LocalPath != "" {
		t.Error("LocalPath must stay empty after a failed download")
	}
}

func TestResolve_DoesNotFollowRedirects(t *testing.T) {
	hitTarget := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/real/cat.png" {
			hitTarget = true
			w.Write([]byte("png-bytes"))
			return
		}
		http.Redirect(w, r, "/real/cat.png", http.StatusFound)
	}))
	defer srv.Close()

	entries := []feed.Entry{{
		Attachments: []feed.Attachment{{SourceURL: srv.URL + "/media/cat.png"}},
	}}

	err := NewResolver(t.TempDir()).Resolve(context.Background(), entries)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("err = %v, want ErrDownloadFailed", err)
	}
	if hitTarget {
		t.Error("redirect was followed")
	}
}

func TestResolve_OverwritesExistingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	stale := filepath.Join(dir, "cat.png")
	if err := os.WriteFile(stale, []byte("stale-and-longer"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries := []feed.Entry{{
		Attachments: []feed.Attachment{{SourceURL: srv.URL + "/media/cat.png"}},
	}}
	if err := NewResolver(dir).Resolve(context.Background(), entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(stale)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fresh" {
		t.Errorf("file = %q, want %q", data, "fresh")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://files.example/media/cat.png", want: "cat.png"},
		{url: "https://files.example/media/cat.png?sig=abc", want: "cat.png"},
		{url: "https://files.example/", wantErr: true},
	}
	for _, tt := range tests {
		got, err := fileName(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("fileName(%q): expected error", tt.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("fileName(%q): %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("fileName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
