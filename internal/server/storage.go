package server

import (
	"context"
	"fmt"

	"github.com/iudanet/taskkeeper/internal/server/config"
	"github.com/iudanet/taskkeeper/internal/server/storage"
	"github.com/iudanet/taskkeeper/internal/server/storage/mongostore"
	"github.com/iudanet/taskkeeper/internal/server/storage/sqlstore"
)

// OpenStorage открывает хранилище, выбранное DB_DRIVER
func OpenStorage(ctx context.Context, cfg config.DatabaseConfig) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverSQLite, config.DriverPostgres:
		dialect := sqlstore.DialectSQLite
		if cfg.Driver == config.DriverPostgres {
			dialect = sqlstore.DialectPostgres
		}
		s, err := sqlstore.New(ctx, dialect, cfg.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMongo:
		s, err := mongostore.New(ctx, cfg.URL, cfg.Name)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
