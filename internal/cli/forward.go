package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tootsync/internal/config"
	"tootsync/internal/dedup"
	"tootsync/internal/feed"
	"tootsync/internal/media"
	"tootsync/internal/publish"
)

// forwardAction runs the whole pipeline: fetch+filter the source feed,
// drop toots the destination already has, download media, repost. An
// empty working list after any stage ends the run silently.
func forwardAction(cmd *cobra.Command, args []string) error {
	fromHost, fromUser, toHost, toUser := args[0], args[1], args[2], args[3]

	credPath, err := resolvePath(args[4])
	if err != nil {
		return err
	}

	cfg, err := loadTunables(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	reader := feed.NewReader()

	entries, err := reader.Fetch(ctx, fromHost, fromUser, feed.Options{
		OnlyOriginal: cfg.OnlyOriginal,
		Limit:        cfg.Limit,
		Since:        cfg.StartDate,
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logrus.Debug("nothing to forward after fetch")
		return nil
	}

	entries, err = dedup.Drop(ctx, reader, toHost, toUser, cfg.OnlyOriginal, entries)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logrus.Debug("nothing to forward after deduplication")
		return nil
	}

	if err := media.NewResolver(cfg.ScratchDir).Resolve(ctx, entries); err != nil {
		return err
	}

	creds, err := publish.ReadCredentials(credPath)
	if err != nil {
		return err
	}

	posted, err := publish.New(toHost, creds, cfg.Visibility).Publish(ctx, entries)
	if err != nil {
		return err
	}

	fmt.Printf("Forwarded %d toots from @%s@%s to @%s@%s\n", posted, fromUser, fromHost, toUser, toHost)
	return nil
}

// loadTunables reads the optional tunables file, then lets explicitly
// set flags override it.
func loadTunables(cmd *cobra.Command) (config.Tunables, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	fs := cmd.Flags()
	if fs.Changed("visibility") {
		cfg.Visibility = flagVisibility
	}
	if fs.Changed("limit") {
		cfg.Limit = flagLimit
	}
	if fs.Changed("only-original") {
		cfg.OnlyOriginal = flagOnlyOriginal
	}
	if fs.Changed("scratch-dir") {
		cfg.ScratchDir = flagScratchDir
	}
	if fs.Changed("start-date") {
		start, err := time.Parse(config.StartDateLayout, flagStartDate)
		if err != nil {
			return cfg, fmt.Errorf("start-date: %w", err)
		}
		cfg.StartDate = start
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// resolvePath interprets a relative credentials path against the
// executable's own directory, matching the documented invocation
// contract.
func resolvePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), p), nil
}
