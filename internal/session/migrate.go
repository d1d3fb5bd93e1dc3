package session

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/persist"
)

// Migrator copies every staged local record and scalar into the remote
// store, then clears the local keys. The protocol is at-least-once and
// safe to retry from scratch: records carry their locally assigned ids and
// the remote append upserts on id, so a retry after partial failure
// re-writes instead of duplicating. Local data is only cleared after the
// whole batch and both scalars are confirmed committed.
type Migrator struct {
	local       LocalAdapter
	remote      persist.Adapter
	concurrency int
}

const defaultMigrationConcurrency = 4

func NewMigrator(local LocalAdapter, remote persist.Adapter, concurrency int) *Migrator {
	if concurrency <= 0 {
		concurrency = defaultMigrationConcurrency
	}
	return &Migrator{local: local, remote: remote, concurrency: concurrency}
}

// Run performs the migration. An empty local store is a no-op, which is
// what makes a second invocation after success harmless: the first run
// cleared the keys.
func (g *Migrator) Run(ctx context.Context) error {
	snap, err := g.local.Load(ctx)
	if err != nil {
		return fmt.Errorf("load local state: %w", err)
	}
	if snap.Empty() {
		slog.DebugContext(ctx, "No local data to migrate", "component", "migration")
		return nil
	}

	total := 0
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for _, c := range persist.Collections {
		for _, item := range snap.Records(c) {
			total++
			eg.Go(func() error {
				if _, err := g.remote.AppendRecord(gctx, c, item); err != nil {
					return fmt.Errorf("migrate %s record %s: %w", c, item.ID, err)
				}
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		// Local data stays: it is the only durable copy until committed.
		return err
	}

	// Scalars merge into the profile document, never overwriting other
	// profile fields.
	if snap.Currency != nil {
		if err := g.remote.SaveCurrency(ctx, *snap.Currency); err != nil {
			return fmt.Errorf("migrate currency: %w", err)
		}
	}
	if snap.Goal != nil {
		if err := g.remote.SaveGoal(ctx, *snap.Goal); err != nil {
			return fmt.Errorf("migrate goal: %w", err)
		}
	}

	if err := g.local.Clear(ctx); err != nil {
		return fmt.Errorf("clear local keys: %w", err)
	}

	slog.InfoContext(ctx, "Local data migrated to remote store",
		"records", total, "component", "migration")
	return nil
}
