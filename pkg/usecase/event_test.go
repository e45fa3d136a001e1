package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
	"github.com/watchtower-lab/chanpulse/pkg/repository/memory"
	slacksvc "github.com/watchtower-lab/chanpulse/pkg/service/slack"
	"github.com/watchtower-lab/chanpulse/pkg/usecase"
)

func TestHandleMessageEvent(t *testing.T) {
	t.Run("stores an enriched record", func(t *testing.T) {
		repo := memory.New()
		svc := &mockSlackService{
			getUserFn: func(ctx context.Context, userID string) (*slacksvc.User, error) {
				return &slacksvc.User{ID: userID, Name: "alice", RealName: "Alice Smith", DisplayName: "ali"}, nil
			},
			getChannelFn: func(ctx context.Context, channelID string) (*slacksvc.Channel, error) {
				return &slacksvc.Channel{ID: channelID, Name: "general"}, nil
			},
		}
		uc := usecase.New(repo, svc)
		ctx := context.Background()

		err := uc.Event.HandleEvent(ctx, &model.Event{
			Kind: model.KindMessage,
			Message: &model.MessageEvent{
				Channel:   "C001",
				User:      "U001",
				Text:      "hello world",
				Timestamp: "1700000000.000100",
			},
		})
		gt.NoError(t, err).Required()

		records, err := repo.Message().Recent(ctx, "C001", 10)
		gt.NoError(t, err).Required()
		gt.Value(t, len(records)).Equal(1)

		record := records[0]
		gt.Value(t, record.ID).NotEqual("")
		gt.Value(t, record.ChannelID).Equal("C001")
		gt.Value(t, record.ChannelName).Equal("general")
		gt.Value(t, record.UserID).Equal("U001")
		gt.Value(t, record.UserName).Equal("ali")
		gt.Value(t, record.Text).Equal("hello world")
		gt.Value(t, record.Timestamp).Equal("1700000000.000100")
	})

	t.Run("enrichment failures degrade to Unknown, event still succeeds", func(t *testing.T) {
		repo := memory.New()
		svc := &mockSlackService{
			getUserFn: func(ctx context.Context, userID string) (*slacksvc.User, error) {
				return nil, errors.New("user_not_found")
			},
			getChannelFn: func(ctx context.Context, channelID string) (*slacksvc.Channel, error) {
				return nil, errors.New("channel_not_found")
			},
		}
		uc := usecase.New(repo, svc)
		ctx := context.Background()

		err := uc.Event.HandleEvent(ctx, &model.Event{
			Kind: model.KindMessage,
			Message: &model.MessageEvent{
				Channel:   "C001",
				User:      "U001",
				Text:      "hello",
				Timestamp: "1700000000.000100",
			},
		})
		gt.NoError(t, err).Required()

		records, err := repo.Message().Recent(ctx, "C001", 10)
		gt.NoError(t, err).Required()
		gt.Value(t, len(records)).Equal(1)
		gt.Value(t, records[0].UserName).Equal("Unknown")
		gt.Value(t, records[0].ChannelName).Equal("Unknown")
	})

	t.Run("message with subtype is ignored without remote calls", func(t *testing.T) {
		repo := memory.New()
		svc := &mockSlackService{}
		uc := usecase.New(repo, svc)
		ctx := context.Background()

		err := uc.Event.HandleEvent(ctx, &model.Event{
			Kind: model.KindMessage,
			Message: &model.MessageEvent{
				Channel: "C001",
				SubType: "message_changed",
			},
		})
		gt.NoError(t, err).Required()

		records, err := repo.Message().Recent(ctx, "C001", 10)
		gt.NoError(t, err).Required()
		gt.Value(t, len(records)).Equal(0)
		gt.Value(t, svc.getUserCalls.Load()).Equal(int64(0))
	})
}

func TestHandleMemberJoinedEvent(t *testing.T) {
	t.Run("caches the joining user's profile", func(t *testing.T) {
		repo := memory.New()
		svc := &mockSlackService{
			getUserFn: func(ctx context.Context, userID string) (*slacksvc.User, error) {
				return &slacksvc.User{ID: userID, Name: "alice", RealName: "Alice Smith", Email: "alice@example.com"}, nil
			},
		}
		uc := usecase.New(repo, svc)
		ctx := context.Background()

		err := uc.Event.HandleEvent(ctx, &model.Event{
			Kind:         model.KindMemberJoined,
			MemberJoined: &model.MemberJoinedEvent{User: "U001", Channel: "C001"},
		})
		gt.NoError(t, err).Required()

		cached, err := repo.Profile().Get(ctx, "U001")
		gt.NoError(t, err).Required()
		gt.Value(t, cached).NotNil()
		gt.Value(t, cached.Name).Equal("alice")
		gt.Value(t, cached.Email).NotNil()
	})

	t.Run("lookup failure is absorbed and cache stays untouched", func(t *testing.T) {
		repo := memory.New()
		svc := &mockSlackService{
			getUserFn: func(ctx context.Context, userID string) (*slacksvc.User, error) {
				return nil, errors.New("user_not_found")
			},
		}
		uc := usecase.New(repo, svc)
		ctx := context.Background()

		err := uc.Event.HandleEvent(ctx, &model.Event{
			Kind:         model.KindMemberJoined,
			MemberJoined: &model.MemberJoinedEvent{User: "U404", Channel: "C001"},
		})
		gt.NoError(t, err).Required()

		cached, err := repo.Profile().Get(ctx, "U404")
		gt.NoError(t, err).Required()
		gt.Value(t, cached).Nil()
	})

	t.Run("repeated joins keep one entry with the latest value", func(t *testing.T) {
		repo := memory.New()
		name := "alice.v1"
		svc := &mockSlackService{
			getUserFn: func(ctx context.Context, userID string) (*slacksvc.User, error) {
				return &slacksvc.User{ID: userID, Name: name}, nil
			},
		}
		uc := usecase.New(repo, svc)
		ctx := context.Background()

		ev := &model.Event{
			Kind:         model.KindMemberJoined,
			MemberJoined: &model.MemberJoinedEvent{User: "U001", Channel: "C001"},
		}
		gt.NoError(t, uc.Event.HandleEvent(ctx, ev)).Required()

		name = "alice.v2"
		gt.NoError(t, uc.Event.HandleEvent(ctx, ev)).Required()

		all, err := repo.Profile().GetAll(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, len(all)).Equal(1)
		gt.Value(t, all[0].Name).Equal("alice.v2")
	})
}

func TestHandleUserChangeEvent(t *testing.T) {
	t.Run("caches the payload without a remote call", func(t *testing.T) {
		repo := memory.New()
		svc := &mockSlackService{
			getUserFn: func(ctx context.Context, userID string) (*slacksvc.User, error) {
				return nil, errors.New("remote must not be called for user_change")
			},
		}
		uc := usecase.New(repo, svc)
		ctx := context.Background()

		ev := &model.UserChangeEvent{}
		ev.User.ID = "U001"
		ev.User.Name = "alice"
		ev.User.RealName = "Alice Smith"
		ev.User.Profile.DisplayName = "ali"
		ev.User.Profile.Email = "alice@example.com"

		err := uc.Event.HandleEvent(ctx, &model.Event{Kind: model.KindUserChange, UserChange: ev})
		gt.NoError(t, err).Required()
		gt.Value(t, svc.getUserCalls.Load()).Equal(int64(0))

		cached, err := repo.Profile().Get(ctx, "U001")
		gt.NoError(t, err).Required()
		gt.Value(t, cached).NotNil()
		gt.Value(t, cached.DisplayName).Equal("ali")
		gt.Value(t, cached.Email).NotNil()
		gt.Value(t, *cached.Email).Equal("alice@example.com")

		// An immediately following resolution sees the new data without
		// touching the remote directory
		resolved := uc.Enrich.ResolveUser(ctx, "U001")
		gt.Value(t, resolved.DisplayName).Equal("ali")
		gt.Value(t, svc.getUserCalls.Load()).Equal(int64(0))
	})

	t.Run("overwrites a previously cached profile", func(t *testing.T) {
		repo := memory.New()
		svc := &mockSlackService{}
		uc := usecase.New(repo, svc)
		ctx := context.Background()

		first := &model.UserChangeEvent{}
		first.User.ID = "U001"
		first.User.Name = "alice"
		first.User.Profile.DisplayName = "old name"
		gt.NoError(t, uc.Event.HandleEvent(ctx, &model.Event{Kind: model.KindUserChange, UserChange: first})).Required()

		second := &model.UserChangeEvent{}
		second.User.ID = "U001"
		second.User.Name = "alice"
		second.User.Profile.DisplayName = "new name"
		gt.NoError(t, uc.Event.HandleEvent(ctx, &model.Event{Kind: model.KindUserChange, UserChange: second})).Required()

		cached, err := repo.Profile().Get(ctx, "U001")
		gt.NoError(t, err).Required()
		gt.Value(t, cached.DisplayName).Equal("new name")
	})
}

func TestHandleOtherEventKinds(t *testing.T) {
	repo := memory.New()
	svc := &mockSlackService{}
	uc := usecase.New(repo, svc)
	ctx := context.Background()

	t.Run("url_verification is a no-op", func(t *testing.T) {
		err := uc.Event.HandleEvent(ctx, &model.Event{Kind: model.KindURLVerification, Challenge: "abc123"})
		gt.NoError(t, err).Required()
	})

	t.Run("unknown kind is acknowledged", func(t *testing.T) {
		err := uc.Event.HandleEvent(ctx, &model.Event{Kind: model.KindUnknown})
		gt.NoError(t, err).Required()
	})
}
