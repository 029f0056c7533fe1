package cli

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tootsync/internal/config"
)

func TestRoot_WrongArity(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"mstdn.example"},
		{"a", "b", "c", "d"},
		{"a", "b", "c", "d", "e", "f"},
	} {
		cmd := rootCmd
		cmd.SetArgs(args)
		err := cmd.Execute()
		if err == nil {
			t.Fatalf("args %v: expected usage error", args)
		}
		if !strings.Contains(err.Error(), "arg") {
			t.Errorf("args %v: err = %v, want arity complaint", args, err)
		}
	}
}

func TestResolvePath_AbsoluteUnchanged(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "creds.json")
	got, err := resolvePath(abs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != abs {
		t.Errorf("resolvePath(%q) = %q", abs, got)
	}
}

func TestResolvePath_RelativeUsesExecutableDir(t *testing.T) {
	got, err := resolvePath("creds.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("resolvePath of a relative path must be absolute, got %q", got)
	}
	if filepath.Base(got) != "creds.json" {
		t.Errorf("file name lost: %q", got)
	}
}

func TestLoadTunables_FlagOverrides(t *testing.T) {
	defer func() {
		flagConfig = ""
		rootCmd.Flags().Set("visibility", config.DefaultVisibility)
		rootCmd.Flags().Set("limit", "0")
		rootCmd.Flags().Set("start-date", config.DefaultStartDate)
	}()

	if err := rootCmd.Flags().Set("visibility", "private"); err != nil {
		t.Fatal(err)
	}
	if err := rootCmd.Flags().Set("limit", "7"); err != nil {
		t.Fatal(err)
	}
	if err := rootCmd.Flags().Set("start-date", "2024/02/01 00:00:00"); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadTunables(rootCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Visibility != "private" {
		t.Errorf("Visibility = %q, want private", cfg.Visibility)
	}
	if cfg.Limit != 7 {
		t.Errorf("Limit = %d, want 7", cfg.Limit)
	}
	want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.StartDate.Equal(want) {
		t.Errorf("StartDate = %v, want %v", cfg.StartDate, want)
	}
	if !cfg.OnlyOriginal {
		t.Error("untouched flags must keep defaults")
	}
}

func TestLoadTunables_RejectsBadVisibilityFlag(t *testing.T) {
	defer rootCmd.Flags().Set("visibility", config.DefaultVisibility)

	if err := rootCmd.Flags().Set("visibility", "shout"); err != nil {
		t.Fatal(err)
	}
	if _, err := loadTunables(rootCmd); err == nil {
		t.Fatal("expected validation error")
	}
}
