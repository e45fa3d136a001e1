package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/watchtower-lab/chanpulse/pkg/domain/interfaces"
	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
	slacksvc "github.com/watchtower-lab/chanpulse/pkg/service/slack"
	"github.com/watchtower-lab/chanpulse/pkg/utils/logging"
)

// EnrichUseCase resolves bare IDs into display metadata, cache-first
type EnrichUseCase struct {
	repo interfaces.Repository
	svc  slacksvc.Service
}

func NewEnrichUseCase(repo interfaces.Repository, svc slacksvc.Service) *EnrichUseCase {
	return &EnrichUseCase{
		repo: repo,
		svc:  svc,
	}
}

// lookupUser is the strict resolution path: cache hit, or a remote fetch
// whose result is written back to the cache before returning. Remote
// failures propagate to the caller.
func (uc *EnrichUseCase) lookupUser(ctx context.Context, id model.ProfileID) (*model.Profile, error) {
	cached, err := uc.repo.Profile().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read profile cache", goerr.V(UserIDKey, id))
	}
	if cached != nil {
		return cached, nil
	}

	user, err := uc.svc.GetUser(ctx, string(id))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch user from Slack", goerr.V(UserIDKey, id))
	}

	profile := model.NewProfile(userSource(user), time.Now())
	if err := uc.repo.Profile().Put(ctx, profile); err != nil {
		return nil, goerr.Wrap(err, "failed to write profile cache", goerr.V(UserIDKey, id))
	}

	return profile, nil
}

// ResolveUser resolves a user ID to a profile, consulting the cache
// first and falling back to the Slack API. It never fails: on any
// failure the Unknown placeholder is returned so enrichment degrades
// gracefully instead of surfacing remote errors.
func (uc *EnrichUseCase) ResolveUser(ctx context.Context, id model.ProfileID) *model.Profile {
	profile, err := uc.lookupUser(ctx, id)
	if err != nil {
		logging.From(ctx).Warn("user enrichment degraded to placeholder",
			"user_id", id,
			"error", err.Error(),
		)
		return model.PlaceholderProfile(id)
	}

	return profile
}

// ResolveChannel resolves a channel ID to its metadata. Channel names
// are not stored in the profile cache; the Slack service keeps its own
// short-TTL name cache. The name degrades to "Unknown" on failure.
func (uc *EnrichUseCase) ResolveChannel(ctx context.Context, id string) model.Channel {
	channel, err := uc.svc.GetChannel(ctx, id)
	if err != nil {
		logging.From(ctx).Warn("channel enrichment degraded to placeholder",
			"channel_id", id,
			"error", err.Error(),
		)
		return model.Channel{ID: id, Name: "Unknown"}
	}

	return model.Channel{ID: channel.ID, Name: channel.Name}
}

func userSource(u *slacksvc.User) model.ProfileSource {
	return model.ProfileSource{
		ID:          u.ID,
		Name:        u.Name,
		RealName:    u.RealName,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
		IsBot:       u.IsBot,
		IsAdmin:     u.IsAdmin,
		TeamID:      u.TeamID,
	}
}
