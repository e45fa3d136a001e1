package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/watchtower-lab/chanpulse/pkg/domain/interfaces"
	"github.com/watchtower-lab/chanpulse/pkg/repository/memory"
	"github.com/watchtower-lab/chanpulse/pkg/repository/redis"
	"github.com/watchtower-lab/chanpulse/pkg/utils/logging"
)

// Repository holds CLI flags for the cache backend configuration
type Repository struct {
	backend       string
	redisAddr     string
	redisPassword string `masq:"secret"`
	redisDB       int64
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cache-backend",
			Usage:       "Profile cache backend (memory or redis)",
			Value:       "memory",
			Sources:     cli.EnvVars("CHANPULSE_CACHE_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (required when using redis backend)",
			Value:       "localhost:6379",
			Sources:     cli.EnvVars("CHANPULSE_REDIS_ADDR"),
			Destination: &r.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Sources:     cli.EnvVars("CHANPULSE_REDIS_PASSWORD"),
			Destination: &r.redisPassword,
		},
		&cli.Int64Flag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Sources:     cli.EnvVars("CHANPULSE_REDIS_DB"),
			Destination: &r.redisDB,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes and returns a repository based on the configured
// backend. The caller is responsible for calling Close().
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "memory":
		logging.Default().Info("Using in-memory profile cache")
		return memory.New(), nil

	case "redis":
		repo, err := redis.New(ctx, redis.Config{
			Address:  r.redisAddr,
			Password: r.redisPassword,
			DB:       int(r.redisDB),
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize redis repository")
		}
		logging.Default().Info("Using Redis profile cache",
			"addr", r.redisAddr,
			"db", r.redisDB,
		)
		return repo, nil

	default:
		return nil, goerr.New("invalid cache backend", goerr.V("backend", r.backend))
	}
}
