package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vibe_demo_server/internal/common"
	"vibe_demo_server/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.Migrate(cmdContext(cmd), db); err != nil {
			return err
		}
		fmt.Println("✓ Migrations applied")
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired, unsaved demo pages now",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := store.NewDemoRepository(db).DeleteExpired(cmdContext(cmd), time.Now().UTC())
		if err != nil {
			return err
		}
		fmt.Printf("✓ Deleted %d expired pages\n", n)
		return nil
	},
}

var persistCmd = &cobra.Command{
	Use:   "persist <id> [userId]",
	Short: "Keep a demo page past its expiry",
	Long: `Marks a demo page as persisted so the expiry sweep skips it, and
optionally records the user who claimed it. Use --unset to let it expire again.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPersist,
}

func init() {
	persistCmd.Flags().Bool("unset", false, "Clear the persisted flag instead of setting it")
}

func runPersist(cmd *cobra.Command, args []string) error {
	unset, _ := cmd.Flags().GetBool("unset")

	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := persistPage(cmdContext(cmd), store.NewDemoRepository(db), args, !unset)
	if err != nil {
		return err
	}
	if unset {
		fmt.Printf("✓ Page %s will expire normally\n", id)
	} else {
		fmt.Printf("✓ Page %s persisted\n", id)
	}
	return nil
}

type pagePersister interface {
	SetPersisted(ctx context.Context, id string, userID *string, persisted bool) error
}

// persistPage applies the persisted flag from positional arguments and
// returns the page id.
func persistPage(ctx context.Context, repo pagePersister, args []string, persisted bool) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", errors.New("usage: persist <id> [userId]")
	}
	id := strings.TrimSpace(args[0])

	var userID *string
	if len(args) > 1 {
		if u := strings.TrimSpace(args[1]); u != "" {
			userID = &u
		}
	}

	if err := repo.SetPersisted(ctx, id, userID, persisted); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("demo page %q not found", id)
		}
		return "", err
	}
	return id, nil
}
