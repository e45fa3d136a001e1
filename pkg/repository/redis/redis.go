package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/m-mizutani/goerr/v2"
	"github.com/watchtower-lab/chanpulse/pkg/domain/interfaces"
)

// Config holds connection settings for the Redis backend
type Config struct {
	Address  string
	Password string
	DB       int
	PoolSize int
}

// Client is the Redis-backed repository. Profiles are stored one JSON
// value per key with a membership set for bulk reads; message logs are
// capped lists. Using Redis gives multiple instances a shared profile
// cache without changing any call site.
type Client struct {
	rdb     *redis.Client
	profile *profileRepository
	message *messageRepository
}

var _ interfaces.Repository = &Client{}

// New connects to Redis and verifies the connection with a ping
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Address == "" {
		cfg.Address = "localhost:6379"
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to connect to Redis", goerr.V("address", cfg.Address))
	}

	return &Client{
		rdb:     rdb,
		profile: &profileRepository{rdb: rdb},
		message: &messageRepository{rdb: rdb},
	}, nil
}

func (c *Client) Profile() interfaces.ProfileRepository {
	return c.profile
}

func (c *Client) Message() interfaces.MessageRepository {
	return c.message
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
