// Package database opens the configured document and key/value stores.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/localmart/localmart-backend-go/config"
	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/kvstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/sirupsen/logrus"
)

// OpenDocstore selects the backend named by DOCSTORE_DRIVER.
func OpenDocstore(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (docstore.Store, error) {
	storeLog := logger.Component(log, "docstore")
	switch cfg.DocstoreDriver {
	case "mongo", "mongodb":
		db, err := ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, storeLog)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return docstore.NewMongoStore(db, cfg.WatchPollInterval, storeLog), nil
	case "firestore":
		client, err := ConnectFirestore(ctx, cfg.FirestoreProject, storeLog)
		if err != nil {
			return nil, fmt.Errorf("connect firestore: %w", err)
		}
		return docstore.NewFirestoreStore(client, storeLog), nil
	case "memory":
		storeLog.Warn("using in-memory document store; data is lost on restart")
		return docstore.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown DOCSTORE_DRIVER %q", cfg.DocstoreDriver)
}

// KV is a kvstore that may hold a connection to release.
type KV interface {
	kvstore.Store
	Close() error
}

type memoryKV struct{ *kvstore.MemoryStore }

func (memoryKV) Close() error { return nil }

// OpenKV connects to Redis when REDIS_ADDR is set, else keeps state in memory.
func OpenKV(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (KV, error) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set; carts and recent receipts are kept in memory")
		return memoryKV{kvstore.NewMemoryStore()}, nil
	}
	r := kvstore.NewRedisStore(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB, 0)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("connected to Redis")
	return r, nil
}
