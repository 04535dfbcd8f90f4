package root

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"grimpo/internal/garden"
	"grimpo/internal/storage"
)

const closeTimeout = 5 * time.Second

func (a *app) openRepo(ctx context.Context) (garden.Repository, func(), error) {
	if a.memory {
		return storage.NewMemoryRepo(), func() {}, nil
	}
	path, err := a.cfg.ResolveDBPath()
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	a.log.Debug("database opened", zap.String("path", path))
	return storage.NewGardenRepo(db), func() { _ = db.Close() }, nil
}

// openGarden loads the configured player's garden. A failed load is returned as
// an error and the garden is closed before anything is written.
func (a *app) openGarden(ctx context.Context) (*garden.Garden, func(), error) {
	catalog, err := a.cfg.Catalog()
	if err != nil {
		return nil, nil, err
	}
	repo, closeRepo, err := a.openRepo(ctx)
	if err != nil {
		return nil, nil, err
	}

	g := garden.New(catalog, repo, a.cfg.PlayerKey,
		garden.WithLogger(a.log),
		garden.WithPersisterOptions(a.cfg.PersisterOptions()...),
	)
	cleanup := func() {
		cctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := g.Close(cctx); err != nil {
			a.log.Warn("closing garden", zap.Error(err))
		}
		closeRepo()
	}
	if err := g.Load(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return g, cleanup, nil
}

// withGarden runs fn against a loaded garden and waits for its writes to land.
func (a *app) withGarden(ctx context.Context, fn func(g *garden.Garden) error) error {
	g, cleanup, err := a.openGarden(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := fn(g); err != nil {
		return err
	}
	if err := g.Flush(ctx); err != nil {
		return fmt.Errorf("save garden: %w", err)
	}
	return nil
}
