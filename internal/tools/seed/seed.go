// Package seed populates a local database with demo users, libraries, and
// social activity by exercising the domain services end to end.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/mcalhoun/shelfie/internal/platform/id"
	"github.com/mcalhoun/shelfie/internal/record"
	librarydomain "github.com/mcalhoun/shelfie/internal/services/library/domain"
	reactionsdomain "github.com/mcalhoun/shelfie/internal/services/reactions/domain"
	socialdomain "github.com/mcalhoun/shelfie/internal/services/social/domain"
	usersdomain "github.com/mcalhoun/shelfie/internal/services/users/domain"
	"github.com/mcalhoun/shelfie/internal/storage"
	"github.com/mcalhoun/shelfie/internal/storage/sqlite"
)

// Config holds seed configuration.
type Config struct {
	DBPath  string
	Verbose bool
}

// DefaultConfig returns seed defaults.
func DefaultConfig() Config {
	return Config{DBPath: filepath.Join("data", "shelfie.db")}
}

type services struct {
	users     *usersdomain.Service
	library   *librarydomain.Service
	social    *socialdomain.Service
	reactions *reactionsdomain.Service
}

// Run seeds the database at cfg.DBPath. Re-running against an already-seeded
// database skips existing users and replays the social fixtures, which are
// idempotent.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	return seedStore(ctx, store, cfg, out)
}

func seedStore(ctx context.Context, store storage.UserStore, cfg Config, out io.Writer) error {
	svcs := services{
		users:     usersdomain.NewService(store, nil, time.Now),
		library:   librarydomain.NewService(store, nil, time.Now, id.NewID),
		social:    socialdomain.NewService(store, nil, time.Now, id.NewID),
		reactions: reactionsdomain.NewService(store, nil, time.Now, id.NewID),
	}

	if err := registerUsers(ctx, svcs, cfg, out); err != nil {
		return err
	}
	if err := buildLibraries(ctx, svcs, cfg, out); err != nil {
		return err
	}
	if err := buildGraph(ctx, svcs, cfg, out); err != nil {
		return err
	}
	fmt.Fprintln(out, "seed complete")
	return nil
}

type demoUser struct {
	uid   string
	name  string
	email string
}

var demoUsers = []demoUser{
	{uid: "demo-ada", name: "Ada Lovelace", email: "ada@example.com"},
	{uid: "demo-mary", name: "Mary Shelley", email: "mary@example.com"},
	{uid: "demo-ursula", name: "Ursula K. Le Guin", email: "ursula@example.com"},
	{uid: "demo-octavia", name: "Octavia Butler", email: "octavia@example.com"},
}

var demoBooks = []record.Book{
	{ID: "seed-dune", Title: "Dune", Authors: []string{"Frank Herbert"}},
	{ID: "seed-frankenstein", Title: "Frankenstein", Authors: []string{"Mary Shelley"}},
	{ID: "seed-dispossessed", Title: "The Dispossessed", Authors: []string{"Ursula K. Le Guin"}},
	{ID: "seed-kindred", Title: "Kindred", Authors: []string{"Octavia Butler"}},
}

func registerUsers(ctx context.Context, svcs services, cfg Config, out io.Writer) error {
	for _, u := range demoUsers {
		_, err := svcs.users.Register(ctx, usersdomain.RegisterInput{
			UID:         u.uid,
			DisplayName: u.name,
			Email:       u.email,
		})
		switch {
		case errors.Is(err, usersdomain.ErrUserAlreadyExists):
			if cfg.Verbose {
				fmt.Fprintf(out, "user %s already registered, skipping\n", u.uid)
			}
		case err != nil:
			return fmt.Errorf("register %s: %w", u.uid, err)
		default:
			if cfg.Verbose {
				fmt.Fprintf(out, "registered %s\n", u.uid)
			}
		}
	}
	return nil
}

func buildLibraries(ctx context.Context, svcs services, cfg Config, out io.Writer) error {
	owner := demoUsers[0].uid

	for i, book := range demoBooks {
		category := record.CategoryRead
		if i%2 == 1 {
			category = record.CategoryWantToRead
		}
		if err := svcs.library.AddBook(ctx, owner, book, category); err != nil {
			return fmt.Errorf("add book %s: %w", book.ID, err)
		}
	}

	user, err := svcs.users.Get(ctx, owner)
	if err != nil {
		return fmt.Errorf("load %s: %w", owner, err)
	}
	if len(user.Shelves) == 0 {
		shelf, err := svcs.library.CreateShelf(ctx, owner, "Science Fiction")
		if err != nil {
			return fmt.Errorf("create shelf: %w", err)
		}
		if err := svcs.library.SetShelfGenre(ctx, owner, shelf.ID, "science fiction"); err != nil {
			return fmt.Errorf("set shelf genre: %w", err)
		}
		if err := svcs.library.AddBookToShelf(ctx, owner, shelf.ID, demoBooks[0]); err != nil {
			return fmt.Errorf("shelve book: %w", err)
		}
	}

	if len(user.Stories) == 0 {
		book := demoBooks[0]
		if _, err := svcs.library.PostStory(ctx, owner, "currently-reading", "Fear is the mind-killer.", &book); err != nil {
			return fmt.Errorf("post story: %w", err)
		}
	}

	if cfg.Verbose {
		fmt.Fprintf(out, "library built for %s\n", owner)
	}
	return nil
}

func buildGraph(ctx context.Context, svcs services, cfg Config, out io.Writer) error {
	ada, mary, ursula := demoUsers[0], demoUsers[1], demoUsers[2]

	if err := svcs.social.SendFriendRequest(ctx, ada.uid, mary.uid); err != nil {
		return fmt.Errorf("friend request %s -> %s: %w", ada.uid, mary.uid, err)
	}
	if err := svcs.social.AcceptFriendRequest(ctx, mary.uid, ada.uid); err != nil &&
		!errors.Is(err, socialdomain.ErrRequestGone) {
		return fmt.Errorf("accept friend request: %w", err)
	}

	if err := svcs.social.Follow(ctx, ursula.uid, ada.uid); err != nil {
		return fmt.Errorf("follow %s -> %s: %w", ursula.uid, ada.uid, err)
	}

	owner, err := svcs.users.Get(ctx, ada.uid)
	if err != nil {
		return fmt.Errorf("load %s: %w", ada.uid, err)
	}
	if len(owner.Stories) > 0 {
		story := owner.Stories[0]
		if !record.HasHeart(story.Reactions.Hearts, mary.uid) {
			if _, err := svcs.reactions.ToggleHeart(ctx, reactionsdomain.ToggleInput{
				ActorUID:  mary.uid,
				ActorName: mary.name,
				OwnerUID:  ada.uid,
				Kind:      reactionsdomain.ItemStory,
				ItemID:    story.ID,
			}); err != nil {
				return fmt.Errorf("heart story: %w", err)
			}
		}
	}

	if cfg.Verbose {
		fmt.Fprintf(out, "social graph built\n")
	}
	return nil
}
