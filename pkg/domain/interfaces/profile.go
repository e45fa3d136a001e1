package interfaces

import (
	"context"

	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
)

// ProfileRepository is the process-wide profile cache. Entries are
// created or overwritten whenever a profile is resolved and are never
// deleted. Get-then-Put is not atomic; concurrent writes for the same ID
// race with last-write-wins semantics, which is acceptable because the
// data is display-only.
//
// N+1 Prevention Policy:
// - Bulk readers (the history crawler) use GetByIDs, never Get in a loop
// - The refresh worker uses SaveMany, never Put in a loop
type ProfileRepository interface {
	// Get retrieves a cached profile. A miss returns (nil, nil); errors
	// are reserved for backend failures.
	Get(ctx context.Context, id model.ProfileID) (*model.Profile, error)

	// GetByIDs retrieves multiple profiles in one round trip. Missing
	// IDs are absent from the result map, not an error.
	GetByIDs(ctx context.Context, ids []model.ProfileID) (map[model.ProfileID]*model.Profile, error)

	// GetAll retrieves every cached profile
	GetAll(ctx context.Context) ([]*model.Profile, error)

	// Put stores a profile, overwriting any existing entry (no merge)
	Put(ctx context.Context, profile *model.Profile) error

	// SaveMany upserts multiple profiles
	SaveMany(ctx context.Context, profiles []*model.Profile) error

	// GetMetadata retrieves background sync metadata
	GetMetadata(ctx context.Context) (*model.ProfileSyncMetadata, error)

	// SaveMetadata saves background sync metadata
	SaveMetadata(ctx context.Context, metadata *model.ProfileSyncMetadata) error
}
