package memory

import (
	"context"
	"sync"
	"time"

	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
)

type profileRepository struct {
	mu       sync.RWMutex
	profiles map[model.ProfileID]*model.Profile
	metadata *model.ProfileSyncMetadata
}

func newProfileRepository() *profileRepository {
	return &profileRepository{
		profiles: make(map[model.ProfileID]*model.Profile),
		metadata: &model.ProfileSyncMetadata{
			LastRefreshSuccess: time.Time{},
			LastRefreshAttempt: time.Time{},
			ProfileCount:       0,
		},
	}
}

func copyProfile(p *model.Profile) *model.Profile {
	copied := *p
	if p.Email != nil {
		email := *p.Email
		copied.Email = &email
	}
	if p.AvatarURL != nil {
		avatar := *p.AvatarURL
		copied.AvatarURL = &avatar
	}
	if p.TeamID != nil {
		team := *p.TeamID
		copied.TeamID = &team
	}
	return &copied
}

// Get retrieves a single profile by ID. A miss returns (nil, nil).
func (r *profileRepository) Get(ctx context.Context, id model.ProfileID) (*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}

	// Return a deep copy to prevent external modifications
	return copyProfile(profile), nil
}

// GetByIDs retrieves multiple profiles by ID
func (r *profileRepository) GetByIDs(ctx context.Context, ids []model.ProfileID) (map[model.ProfileID]*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[model.ProfileID]*model.Profile, len(ids))
	for _, id := range ids {
		if profile, ok := r.profiles[id]; ok {
			result[id] = copyProfile(profile)
		}
		// Missing profiles are not included in the result map (not an error)
	}

	return result, nil
}

// GetAll retrieves all cached profiles
func (r *profileRepository) GetAll(ctx context.Context) ([]*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make([]*model.Profile, 0, len(r.profiles))
	for _, profile := range r.profiles {
		profiles = append(profiles, copyProfile(profile))
	}

	return profiles, nil
}

// Put stores a profile, overwriting any existing entry
func (r *profileRepository) Put(ctx context.Context, profile *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[profile.ID] = copyProfile(profile)
	return nil
}

// SaveMany upserts multiple profiles
func (r *profileRepository) SaveMany(ctx context.Context, profiles []*model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, profile := range profiles {
		r.profiles[profile.ID] = copyProfile(profile)
	}

	return nil
}

// GetMetadata retrieves sync metadata
func (r *profileRepository) GetMetadata(ctx context.Context) (*model.ProfileSyncMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metadataCopy := *r.metadata
	return &metadataCopy, nil
}

// SaveMetadata saves sync metadata
func (r *profileRepository) SaveMetadata(ctx context.Context, metadata *model.ProfileSyncMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	metadataCopy := *metadata
	r.metadata = &metadataCopy
	return nil
}
