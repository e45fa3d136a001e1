package redis

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/m-mizutani/goerr/v2"
	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
)

const (
	profileKeyPrefix   = "profile:"
	profileIndexKey    = "profiles"
	profileMetadataKey = "profile:metadata"
)

type profileRepository struct {
	rdb *redis.Client
}

func profileKey(id model.ProfileID) string {
	return profileKeyPrefix + string(id)
}

// Get retrieves a single profile by ID. A miss returns (nil, nil).
func (r *profileRepository) Get(ctx context.Context, id model.ProfileID) (*model.Profile, error) {
	data, err := r.rdb.Get(ctx, profileKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V("id", id))
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, goerr.Wrap(err, "failed to decode stored profile", goerr.V("id", id))
	}

	return &profile, nil
}

// GetByIDs retrieves multiple profiles in a single MGET round trip
func (r *profileRepository) GetByIDs(ctx context.Context, ids []model.ProfileID) (map[model.ProfileID]*model.Profile, error) {
	if len(ids) == 0 {
		return map[model.ProfileID]*model.Profile{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(id)
	}

	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get profiles", goerr.V("count", len(ids)))
	}

	result := make(map[model.ProfileID]*model.Profile, len(ids))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue // missing key
		}

		var profile model.Profile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			return nil, goerr.Wrap(err, "failed to decode stored profile", goerr.V("id", ids[i]))
		}
		result[ids[i]] = &profile
	}

	return result, nil
}

// GetAll retrieves every cached profile via the membership set
func (r *profileRepository) GetAll(ctx context.Context) ([]*model.Profile, error) {
	members, err := r.rdb.SMembers(ctx, profileIndexKey).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list profile index")
	}

	if len(members) == 0 {
		return []*model.Profile{}, nil
	}

	ids := make([]model.ProfileID, len(members))
	for i, m := range members {
		ids[i] = model.ProfileID(m)
	}

	byID, err := r.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	profiles := make([]*model.Profile, 0, len(byID))
	for _, profile := range byID {
		profiles = append(profiles, profile)
	}

	return profiles, nil
}

// Put stores a profile, overwriting any existing entry
func (r *profileRepository) Put(ctx context.Context, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return goerr.Wrap(err, "failed to encode profile", goerr.V("id", profile.ID))
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, profileKey(profile.ID), data, 0)
	pipe.SAdd(ctx, profileIndexKey, string(profile.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return goerr.Wrap(err, "failed to store profile", goerr.V("id", profile.ID))
	}

	return nil
}

// SaveMany upserts multiple profiles in one pipeline
func (r *profileRepository) SaveMany(ctx context.Context, profiles []*model.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	pipe := r.rdb.TxPipeline()
	for _, profile := range profiles {
		data, err := json.Marshal(profile)
		if err != nil {
			return goerr.Wrap(err, "failed to encode profile", goerr.V("id", profile.ID))
		}
		pipe.Set(ctx, profileKey(profile.ID), data, 0)
		pipe.SAdd(ctx, profileIndexKey, string(profile.ID))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return goerr.Wrap(err, "failed to store profiles", goerr.V("count", len(profiles)))
	}

	return nil
}

// GetMetadata retrieves sync metadata
func (r *profileRepository) GetMetadata(ctx context.Context) (*model.ProfileSyncMetadata, error) {
	data, err := r.rdb.Get(ctx, profileMetadataKey).Bytes()
	if err == redis.Nil {
		return &model.ProfileSyncMetadata{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get profile sync metadata")
	}

	var metadata model.ProfileSyncMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, goerr.Wrap(err, "failed to decode profile sync metadata")
	}

	return &metadata, nil
}

// SaveMetadata saves sync metadata
func (r *profileRepository) SaveMetadata(ctx context.Context, metadata *model.ProfileSyncMetadata) error {
	data, err := json.Marshal(metadata)
	if err != nil {
		return goerr.Wrap(err, "failed to encode profile sync metadata")
	}

	if err := r.rdb.Set(ctx, profileMetadataKey, data, 0).Err(); err != nil {
		return goerr.Wrap(err, "failed to store profile sync metadata")
	}

	return nil
}
