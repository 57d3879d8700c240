package actions

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"civicbriefs/internal/adapters/civicapi"
	"civicbriefs/internal/domain/admin"
	"civicbriefs/internal/domain/capsule"
)

// NotAvailable is the subscriber tile for non-privileged profiles.
const NotAvailable = "N/A"

// Stats are the dashboard tiles.
type Stats struct {
	NewsCount       int
	Date            string
	SubscriberCount string
}

// ExecuteDashboardStats fetches the capsule and, for privileged roles, the
// user list concurrently, then derives the tiles.
// POST: SubscriberCount is "N/A" unless the stored role is privileged and the list loaded
func ExecuteDashboardStats(ctx context.Context, deps Deps) Stats {
	cred := deps.Session.Credential(ctx)
	privileged := deps.Session.IsAdmin(ctx)

	var (
		c     capsule.Capsule
		users []admin.User
		resU  civicapi.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, _ = deps.API.DailyCapsule(gctx, cred)
		return nil
	})
	if privileged {
		g.Go(func() error {
			users, resU = deps.API.Users(gctx, cred)
			return nil
		})
	}
	_ = g.Wait()
	return tiles(c, privileged, users, resU)
}

// StatsFor derives the tiles from a capsule the caller already holds.
// Only the user list is fetched, and only for privileged roles.
func StatsFor(ctx context.Context, deps Deps, c capsule.Capsule) Stats {
	if !deps.Session.IsAdmin(ctx) {
		return tiles(c, false, nil, civicapi.Result{})
	}
	users, res := deps.API.Users(ctx, deps.Session.Credential(ctx))
	return tiles(c, true, users, res)
}

func tiles(c capsule.Capsule, privileged bool, users []admin.User, res civicapi.Result) Stats {
	stats := Stats{
		NewsCount:       len(c.Items),
		Date:            c.DisplayDate(),
		SubscriberCount: NotAvailable,
	}
	if privileged && res.OK {
		stats.SubscriberCount = strconv.Itoa(admin.CountSubscribed(users))
	}
	return stats
}
