package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/habitr/internal/config"
	"github.com/sadopc/habitr/internal/logging"
	"github.com/sadopc/habitr/internal/store"
)

// env holds what a data command needs: configuration, a logger and an open store.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	loc    *time.Location
}

// openEnv loads configuration and opens the database. console also sends
// log output to stderr, which the terminal UI cannot tolerate.
func openEnv(configPath string, console bool) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Console:    console,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("database opened", zap.String("path", cfg.DBPath))

	return &env{cfg: cfg, logger: logger, store: st, loc: loc}, nil
}

// owner returns id when set, otherwise this installation's local owner.
func (e *env) owner(ctx context.Context, id string) (string, error) {
	if id != "" {
		if err := e.store.UpsertOwner(ctx, id); err != nil {
			return "", err
		}
		return id, nil
	}
	return e.store.LocalOwner(ctx)
}

func (e *env) Close() error {
	_ = e.logger.Sync()
	return e.store.Close()
}
