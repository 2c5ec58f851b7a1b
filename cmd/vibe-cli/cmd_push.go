package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cobra"

	"vibe_demo_server/internal/store"
	"vibe_demo_server/internal/types"
)

var pushCmd = &cobra.Command{
	Use:   "push <author> <summary> [commitHash]",
	Short: "Add an entry to the public push log",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	p, err := buildPush(args, time.Now())
	if err != nil {
		return err
	}

	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.NewPushRepository(db).Create(cmdContext(cmd), p); err != nil {
		return err
	}
	fmt.Printf("Push entry logged: %s\n", p.ID)
	return nil
}

// buildPush turns positional arguments into a push entry. Markup is stripped
// from the summary since the log is rendered publicly.
func buildPush(args []string, now time.Time) (*types.Push, error) {
	if len(args) < 2 {
		return nil, errors.New("usage: push <author> <summary> [commitHash]")
	}
	policy := bluemonday.StrictPolicy()
	author := strings.TrimSpace(policy.Sanitize(args[0]))
	summary := strings.TrimSpace(policy.Sanitize(args[1]))
	if author == "" || summary == "" {
		return nil, errors.New("author and summary must not be empty")
	}

	p := &types.Push{
		ID:        uuid.NewString(),
		Author:    author,
		Summary:   summary,
		CreatedAt: now.UTC(),
	}
	if len(args) > 2 {
		if hash := strings.TrimSpace(args[2]); hash != "" {
			if len(hash) > 40 {
				return nil, fmt.Errorf("commit hash too long: %d characters", len(hash))
			}
			p.CommitHash = &hash
		}
	}
	return p, nil
}
