package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/watchtower-lab/chanpulse/pkg/domain/interfaces"
	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
	slacksvc "github.com/watchtower-lab/chanpulse/pkg/service/slack"
	"github.com/watchtower-lab/chanpulse/pkg/utils/logging"
	"golang.org/x/sync/semaphore"
)

// ChannelUseCase covers the channel-scoped passthrough operations:
// member listing, channel listing, message sending, and reading back
// recent ingested records.
type ChannelUseCase struct {
	repo   interfaces.Repository
	svc    slacksvc.Service
	enrich *EnrichUseCase

	// memberConcurrency caps the fan-out of ListMembers resolutions
	memberConcurrency int64
}

func NewChannelUseCase(repo interfaces.Repository, svc slacksvc.Service, enrich *EnrichUseCase, memberConcurrency int64) *ChannelUseCase {
	if memberConcurrency <= 0 {
		memberConcurrency = DefaultMemberConcurrency
	}
	return &ChannelUseCase{
		repo:              repo,
		svc:               svc,
		enrich:            enrich,
		memberConcurrency: memberConcurrency,
	}
}

// ListMembers fetches the channel's member IDs and resolves each to a
// profile (cache-or-fetch), writing every resolved profile into the
// cache. Resolutions run concurrently under a weighted semaphore so a
// large channel cannot flood the Slack API. Individual failures are
// excluded from the result rather than failing the whole call.
func (uc *ChannelUseCase) ListMembers(ctx context.Context, channelID string) ([]*model.Profile, error) {
	ids, err := uc.svc.ListChannelMembers(ctx, channelID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list channel members", goerr.V(ChannelIDKey, channelID))
	}

	sem := semaphore.NewWeighted(uc.memberConcurrency)
	resolved := make([]*model.Profile, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, goerr.Wrap(err, "member resolution cancelled", goerr.V(ChannelIDKey, channelID))
		}

		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			defer sem.Release(1)

			profile, err := uc.enrich.lookupUser(ctx, model.ProfileID(id))
			if err != nil {
				logging.From(ctx).Warn("skipping unresolvable member",
					"user_id", id,
					"channel_id", channelID,
					"error", err.Error(),
				)
				return
			}
			resolved[i] = profile
		}(i, id)
	}
	wg.Wait()

	profiles := make([]*model.Profile, 0, len(resolved))
	for _, profile := range resolved {
		if profile != nil {
			profiles = append(profiles, profile)
		}
	}

	return profiles, nil
}

// ListChannels is a direct passthrough to the Slack API
func (uc *ChannelUseCase) ListChannels(ctx context.Context) ([]model.Channel, error) {
	channels, err := uc.svc.ListChannels(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list channels")
	}

	result := make([]model.Channel, len(channels))
	for i, ch := range channels {
		result[i] = model.Channel{ID: ch.ID, Name: ch.Name}
	}

	return result, nil
}

// SendMessage posts a text message to the channel. Empty text is a
// validation error and performs no remote call.
func (uc *ChannelUseCase) SendMessage(ctx context.Context, channelID, text string) (string, error) {
	if text == "" {
		return "", goerr.Wrap(ErrEmptyMessageText, "refusing to send empty message", goerr.V(ChannelIDKey, channelID))
	}

	timestamp, err := uc.svc.PostMessage(ctx, channelID, text)
	if err != nil {
		return "", goerr.Wrap(err, "failed to send message", goerr.V(ChannelIDKey, channelID))
	}

	return timestamp, nil
}

// RecentMessages returns the most recent ingested records for a channel
func (uc *ChannelUseCase) RecentMessages(ctx context.Context, channelID string, limit int) ([]*model.MessageRecord, error) {
	records, err := uc.repo.Message().Recent(ctx, channelID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read message records", goerr.V(ChannelIDKey, channelID))
	}

	return records, nil
}
