package store

import (
	"context"
	"fmt"

	"github.com/Payphone-Digital/midas/config"
	"github.com/Payphone-Digital/midas/internal/constants"
	"go.uber.org/zap"
)

// Open builds the backend selected by STORE_DRIVER, wrapped with operation
// logging.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		s   Store
		err error
	)

	switch cfg.Store.Driver {
	case "file":
		s, err = NewFileStore(cfg.Store.DataDir)
	case "redis":
		s, err = NewRedisStore(ctx, cfg.Redis, cfg.RedisAddress(), constants.StoreKeyPrefix, logger)
	case "postgres":
		s, err = NewPostgresStore(ctx, cfg.Database, cfg.DatabaseConnectionString(), cfg.App.Environment, logger)
	case "mongo":
		s, err = NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Store ready", zap.String("driver", cfg.Store.Driver))
	return WithLogging(s, logger), nil
}
