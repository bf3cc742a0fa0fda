package cli

import (
	"context"
	"fmt"
	"io"

	"notifier/internal/backend/datastore"
	"notifier/internal/backend/sqlitestore"
	"notifier/internal/config"
	"notifier/internal/logging"
	"notifier/internal/service"
)

// NewServiceFactory returns the factory used by the binary. It opens the
// backend named in cfg; backend logs go to logOut.
func NewServiceFactory(logOut io.Writer) ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		switch cfg.Backend {
		case config.BackendSQLite:
			if cfg.SQLite.Path == "" {
				if err := cfg.EnsureDir(); err != nil {
					return nil, fmt.Errorf("create config dir: %w", err)
				}
			}
			return sqlitestore.Open(cfg.DBPath(), cfg.Namespace())
		default:
			return datastore.New(ctx, cfg, logging.ForConfig(logOut, cfg))
		}
	}
}
