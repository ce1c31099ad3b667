// Package storage selects the document store backend named by STORE_DRIVER.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotelhub/internal/domain"
	"hotelhub/internal/shared"
	"hotelhub/internal/storage/memory"
	"hotelhub/internal/storage/mongodb"
	mysqlrepo "hotelhub/internal/storage/mysql"
)

// Open connects the configured backend. The returned func releases its
// connections.
func Open(ctx context.Context, cfg shared.Config) (domain.Store, func(), error) {
	switch cfg.StoreDriver {
	case shared.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		st := mongodb.New(client.Database(cfg.MongoDB))
		if err := st.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("mongo index creation failed")
		}
		log.Info().Str("db", cfg.MongoDB).Msg("mongo connection ok")
		return st, func() { _ = client.Disconnect(context.Background()) }, nil

	case shared.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("mysql ping: %w", err)
		}
		log.Info().Msg("database connection ok")
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil

	case shared.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return memory.New(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
