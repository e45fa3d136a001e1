package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/watchtower-lab/chanpulse/pkg/domain/interfaces"
	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
	slacksvc "github.com/watchtower-lab/chanpulse/pkg/service/slack"
)

// CrawlUseCase paginates channel history and joins each message with
// the sender's cached profile. Crawling is a bulk path: it reads the
// cache only and never issues a per-message user lookup. Uncached
// senders appear with the Unknown placeholder.
type CrawlUseCase struct {
	repo interfaces.Repository
	svc  slacksvc.Service
}

func NewCrawlUseCase(repo interfaces.Repository, svc slacksvc.Service) *CrawlUseCase {
	return &CrawlUseCase{
		repo: repo,
		svc:  svc,
	}
}

// Crawl fetches one page of history with the given filters. HasMore and
// NextCursor are passed through verbatim for client-driven pagination;
// Crawl never auto-paginates.
func (uc *CrawlUseCase) Crawl(ctx context.Context, channelID string, filters model.HistoryFilters) (*model.HistoryPage, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}

	history, err := uc.svc.GetHistory(ctx, channelID, slacksvc.HistoryParams{
		Limit:     limit,
		Oldest:    filters.Oldest,
		Latest:    filters.Latest,
		Inclusive: filters.Inclusive,
		Cursor:    filters.Cursor,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to crawl channel history", goerr.V(ChannelIDKey, channelID))
	}

	// One batched cache read for all senders on the page
	ids := senderIDs(history.Messages)
	profiles, err := uc.repo.Profile().GetByIDs(ctx, ids)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read profile cache", goerr.V(ChannelIDKey, channelID))
	}

	messages := make([]model.HistoryMessage, len(history.Messages))
	for i, msg := range history.Messages {
		profile, ok := profiles[model.ProfileID(msg.UserID)]
		if !ok {
			profile = model.PlaceholderProfile(model.ProfileID(msg.UserID))
		}
		messages[i] = model.HistoryMessage{
			User:      profile,
			Text:      msg.Text,
			Timestamp: msg.Timestamp,
		}
	}

	return &model.HistoryPage{
		Messages:   messages,
		HasMore:    history.HasMore,
		NextCursor: history.NextCursor,
	}, nil
}

func senderIDs(messages []slacksvc.HistoryMessage) []model.ProfileID {
	seen := make(map[string]bool, len(messages))
	ids := make([]model.ProfileID, 0, len(messages))
	for _, msg := range messages {
		if seen[msg.UserID] {
			continue
		}
		seen[msg.UserID] = true
		ids = append(ids, model.ProfileID(msg.UserID))
	}
	return ids
}
