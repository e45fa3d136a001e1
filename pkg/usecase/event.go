package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/watchtower-lab/chanpulse/pkg/domain/interfaces"
	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
	slacksvc "github.com/watchtower-lab/chanpulse/pkg/service/slack"
	"github.com/watchtower-lab/chanpulse/pkg/utils/errutil"
	"github.com/watchtower-lab/chanpulse/pkg/utils/logging"
)

// EventUseCase consumes inbound webhook events. Cache writes happen
// before HandleEvent returns, so a caller that acknowledges afterwards
// observes them immediately.
type EventUseCase struct {
	repo   interfaces.Repository
	svc    slacksvc.Service
	enrich *EnrichUseCase
}

func NewEventUseCase(repo interfaces.Repository, svc slacksvc.Service, enrich *EnrichUseCase) *EventUseCase {
	return &EventUseCase{
		repo:   repo,
		svc:    svc,
		enrich: enrich,
	}
}

// HandleEvent processes one decoded webhook event. Enrichment failures
// are absorbed (the remote platform must not re-deliver because of a
// transient metadata lookup); only genuine processing failures, such as
// a record store write error, are returned.
func (uc *EventUseCase) HandleEvent(ctx context.Context, ev *model.Event) error {
	logger := logging.From(ctx)

	switch ev.Kind {
	case model.KindMessage:
		return uc.handleMessage(ctx, ev.Message)

	case model.KindMemberJoined:
		return uc.handleMemberJoined(ctx, ev.MemberJoined)

	case model.KindUserChange:
		return uc.handleUserChange(ctx, ev.UserChange)

	case model.KindURLVerification:
		// Answered at the HTTP layer; nothing to do here
		return nil

	default:
		logger.Debug("ignoring unsupported event kind", "kind", ev.Kind)
		return nil
	}
}

// handleMessage enriches a plain channel message and emits the
// structured record. Messages with a subtype (edits, deletes, system
// messages) are ignored.
func (uc *EventUseCase) handleMessage(ctx context.Context, ev *model.MessageEvent) error {
	logger := logging.From(ctx)

	if ev.SubType != "" {
		logger.Debug("ignoring message with subtype", "subtype", ev.SubType, "channel_id", ev.Channel)
		return nil
	}

	user := uc.enrich.ResolveUser(ctx, model.ProfileID(ev.User))
	channel := uc.enrich.ResolveChannel(ctx, ev.Channel)

	record := &model.MessageRecord{
		ID:          uuid.NewString(),
		ChannelID:   ev.Channel,
		ChannelName: channel.Name,
		UserID:      ev.User,
		UserName:    user.DisplayLabel(),
		Text:        ev.Text,
		Timestamp:   ev.Timestamp,
		ReceivedAt:  time.Now(),
	}

	if err := uc.repo.Message().Put(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to store message record",
			goerr.V(ChannelIDKey, ev.Channel),
			goerr.V(UserIDKey, ev.User),
		)
	}

	logger.Info("message received",
		"channel_id", record.ChannelID,
		"channel_name", record.ChannelName,
		"user_id", record.UserID,
		"user_name", record.UserName,
		"text", record.Text,
		"timestamp", record.Timestamp,
	)

	return nil
}

// handleMemberJoined fetches the joining user's full profile and caches
// it. Lookup failures are logged and absorbed; the join notification
// itself is not retried by the sender.
func (uc *EventUseCase) handleMemberJoined(ctx context.Context, ev *model.MemberJoinedEvent) error {
	logger := logging.From(ctx)

	user, err := uc.svc.GetUser(ctx, ev.User)
	if err != nil {
		errutil.Handle(ctx, err, "failed to fetch joining user, cache not updated")
		return nil
	}

	profile := model.NewProfile(userSource(user), time.Now())
	if err := uc.repo.Profile().Put(ctx, profile); err != nil {
		return goerr.Wrap(err, "failed to cache joining user's profile", goerr.V(UserIDKey, ev.User))
	}

	logger.Info("member joined, profile cached",
		"user_id", ev.User,
		"channel_id", ev.Channel,
	)

	return nil
}

// handleUserChange maps the profile payload carried by the event
// directly into the cache, with no remote round-trip
func (uc *EventUseCase) handleUserChange(ctx context.Context, ev *model.UserChangeEvent) error {
	profile := model.NewProfile(ev.User.Source(), time.Now())
	if err := uc.repo.Profile().Put(ctx, profile); err != nil {
		return goerr.Wrap(err, "failed to cache changed profile", goerr.V(UserIDKey, ev.User.ID))
	}

	logging.From(ctx).Info("user profile updated from event", "user_id", ev.User.ID)

	return nil
}
