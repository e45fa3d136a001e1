package repository_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/watchtower-lab/chanpulse/pkg/domain/interfaces"
	"github.com/watchtower-lab/chanpulse/pkg/repository/memory"
	"github.com/watchtower-lab/chanpulse/pkg/repository/redis"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

// newRedisRepository runs each test against its own miniredis instance
func newRedisRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	mr := miniredis.RunT(t)

	repo, err := redis.New(context.Background(), redis.Config{
		Address: mr.Addr(),
	})
	if err != nil {
		t.Fatalf("failed to create redis repository: %v", err)
	}

	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close redis repository: %v", err)
		}
	})

	return repo
}
