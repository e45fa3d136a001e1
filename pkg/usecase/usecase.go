package usecase

import (
	"github.com/watchtower-lab/chanpulse/pkg/domain/interfaces"
	slacksvc "github.com/watchtower-lab/chanpulse/pkg/service/slack"
)

// DefaultMemberConcurrency caps the parallel user lookups during member
// listing so large channels cannot flood the Slack API.
const DefaultMemberConcurrency = 8

type UseCases struct {
	repo interfaces.Repository
	svc  slacksvc.Service

	Enrich  *EnrichUseCase
	Event   *EventUseCase
	Crawl   *CrawlUseCase
	Channel *ChannelUseCase

	memberConcurrency int64
}

type Option func(*UseCases)

// WithMemberConcurrency overrides the member listing fan-out limit
func WithMemberConcurrency(n int64) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.memberConcurrency = n
		}
	}
}

func New(repo interfaces.Repository, svc slacksvc.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:              repo,
		svc:               svc,
		memberConcurrency: DefaultMemberConcurrency,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Enrich = NewEnrichUseCase(repo, svc)
	uc.Event = NewEventUseCase(repo, svc, uc.Enrich)
	uc.Crawl = NewCrawlUseCase(repo, svc)
	uc.Channel = NewChannelUseCase(repo, svc, uc.Enrich, uc.memberConcurrency)

	return uc
}
