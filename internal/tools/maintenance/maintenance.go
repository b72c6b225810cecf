// Package maintenance provides offline repair sweeps for the user database:
// createdAt backfill, inbox cap enforcement, and symmetric-friendship repair.
package maintenance

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcalhoun/shelfie/internal/record"
	"github.com/mcalhoun/shelfie/internal/storage"
	"github.com/mcalhoun/shelfie/internal/storage/sqlite"
)

// Config holds maintenance command configuration.
type Config struct {
	DBPath     string
	Timeout    time.Duration
	DryRun     bool
	JSONOutput bool

	clock func() time.Time
}

type envConfig struct {
	DBPath  string        `env:"SHELFIE_DB_PATH"`
	Timeout time.Duration `env:"SHELFIE_MAINTENANCE_TIMEOUT" envDefault:"10m"`
}

// ParseConfig parses environment variables and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		DBPath:  envCfg.DBPath,
		Timeout: envCfg.Timeout,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "shelfie.db")
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to sqlite database (default: SHELFIE_DB_PATH or data/shelfie.db)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "report repairs without applying them")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output a JSON report")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Report summarizes one maintenance sweep.
type Report struct {
	UsersScanned        int  `json:"usersScanned"`
	CreatedAtBackfilled int  `json:"createdAtBackfilled"`
	InboxesTruncated    int  `json:"inboxesTruncated"`
	FriendEdgesRepaired int  `json:"friendEdgesRepaired"`
	DryRun              bool `json:"dryRun"`
}

// Run executes the maintenance sweep against the database at cfg.DBPath.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	report, err := Sweep(ctx, store, cfg)
	if err != nil {
		return err
	}

	if cfg.JSONOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(out, "scanned %d users\n", report.UsersScanned)
	fmt.Fprintf(out, "createdAt backfilled: %d\n", report.CreatedAtBackfilled)
	fmt.Fprintf(out, "inboxes truncated: %d\n", report.InboxesTruncated)
	fmt.Fprintf(out, "friend edges repaired: %d\n", report.FriendEdgesRepaired)
	if report.DryRun {
		fmt.Fprintln(out, "dry run: no changes applied")
	}
	return nil
}

// Sweep scans every user record, repairs invariant violations, and reports
// what it found. With cfg.DryRun the repairs are counted but not written.
func Sweep(ctx context.Context, store storage.UserStore, cfg Config) (Report, error) {
	clock := cfg.clock
	if clock == nil {
		clock = time.Now
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list users: %w", err)
	}

	report := Report{UsersScanned: len(users), DryRun: cfg.DryRun}
	now := clock().UTC()

	known := make(map[string]*record.UserRecord, len(users))
	for i := range users {
		known[users[i].UID] = &users[i]
	}

	dirty := make(map[string]bool)
	for i := range users {
		user := &users[i]
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
			report.CreatedAtBackfilled++
			dirty[user.UID] = true
		}
		if len(user.Notifications) > record.MaxNotifications {
			user.Notifications = user.Notifications[:record.MaxNotifications]
			report.InboxesTruncated++
			dirty[user.UID] = true
		}
		for _, friend := range user.Friends {
			other, ok := known[friend.UID]
			if !ok || other.HasFriend(user.UID) {
				continue
			}
			other.Friends = append(other.Friends, user.Ref())
			report.FriendEdgesRepaired++
			dirty[other.UID] = true
		}
	}

	if cfg.DryRun || len(dirty) == 0 {
		return report, nil
	}

	uids := make([]string, 0, len(dirty))
	for uid := range dirty {
		uids = append(uids, uid)
	}
	err = store.UpdateUsers(ctx, uids, func(working map[string]*record.UserRecord) error {
		for uid := range working {
			*working[uid] = known[uid].Clone()
		}
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("apply repairs: %w", err)
	}
	return report, nil
}
