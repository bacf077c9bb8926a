package main

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/careops/careops/internal/config"
	"github.com/careops/careops/internal/domain/task"
	"github.com/careops/careops/internal/platform/db"
)

// taskStore bundles the configured repository with its health check, its
// seeding strategy and its teardown.
type taskStore struct {
	Repo   task.TaskRepository
	Health echo.HandlerFunc

	seed  func(ctx context.Context, tasks []*task.Task) (int, error)
	close func()
}

func (s *taskStore) Seed(ctx context.Context, tasks []*task.Task) (int, error) {
	return s.seed(ctx, tasks)
}

func (s *taskStore) Close() {
	if s.close != nil {
		s.close()
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*taskStore, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, logger)
		if err != nil {
			return nil, err
		}
		repo := task.NewTaskRepoPG(pool)
		return &taskStore{
			Repo:   repo,
			Health: db.HealthHandler(pool),
			// all or nothing
			seed: func(ctx context.Context, tasks []*task.Task) (int, error) {
				var n int
				err := db.RunInTx(ctx, pool, func(ctx context.Context) error {
					var err error
					n, err = task.Seed(ctx, repo, tasks)
					return err
				})
				if err != nil {
					return 0, err
				}
				return n, nil
			},
			close: pool.Close,
		}, nil

	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath, task.SQLiteSchema)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite task store")
		repo := task.NewTaskRepoSQLite(conn)
		return &taskStore{
			Repo:   repo,
			Health: db.SQLiteHealthHandler(conn),
			seed: func(ctx context.Context, tasks []*task.Task) (int, error) {
				return task.Seed(ctx, repo, tasks)
			},
			close: func() { conn.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
