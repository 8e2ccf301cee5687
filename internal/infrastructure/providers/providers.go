package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/totegamma/supermarkets/client"
	"github.com/totegamma/supermarkets/internal/config"
	"github.com/totegamma/supermarkets/internal/infrastructure/database"
	"github.com/totegamma/supermarkets/internal/infrastructure/session"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

// NewRedis returns nil without error when no redis address is configured.
func NewRedis(ctx context.Context, conf config.Server) (*redis.Client, error) {
	if conf.RedisAddr == "" {
		return nil, nil
	}
	return database.NewRedis(ctx, conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
}

// NewSessionStore picks the session backend named in the config.
func NewSessionStore(ctx context.Context, conf config.Config) (session.Store, error) {
	ttl := time.Duration(conf.Session.TTLSeconds) * time.Second

	switch conf.Session.Backend {
	case "memory":
		return session.NewMemoryStore(ttl), nil
	case "redis":
		sealer, err := session.NewSealer(conf.Session.Secret)
		if err != nil {
			return nil, err
		}
		rdb, err := database.NewRedis(ctx, conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
		if err != nil {
			return nil, err
		}
		return session.NewRedisStore(rdb, sealer, ttl), nil
	case "memcached":
		sealer, err := session.NewSealer(conf.Session.Secret)
		if err != nil {
			return nil, err
		}
		mc, err := database.NewMemcached(conf.Server.MemcachedAddr)
		if err != nil {
			return nil, err
		}
		return session.NewMemcachedStore(mc, sealer, ttl), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", conf.Session.Backend)
	}
}

// NewClient constructs the HTTP client used to talk to the supermarkets API.
func NewClient(conf config.Web) *client.Client {
	return client.New(conf.APIBaseURL, nil)
}
