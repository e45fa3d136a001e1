package usecase_test

import (
	"context"
	"sync/atomic"

	slacksvc "github.com/watchtower-lab/chanpulse/pkg/service/slack"
)

// mockSlackService is a mock implementation of slack.Service for testing.
// Call counters are atomic because ListMembers resolves concurrently.
type mockSlackService struct {
	getUserFn            func(ctx context.Context, userID string) (*slacksvc.User, error)
	getChannelFn         func(ctx context.Context, channelID string) (*slacksvc.Channel, error)
	listChannelMembersFn func(ctx context.Context, channelID string) ([]string, error)
	getHistoryFn         func(ctx context.Context, channelID string, params slacksvc.HistoryParams) (*slacksvc.History, error)
	listChannelsFn       func(ctx context.Context) ([]slacksvc.Channel, error)
	postMessageFn        func(ctx context.Context, channelID, text string) (string, error)
	listUsersFn          func(ctx context.Context) ([]*slacksvc.User, error)

	getUserCalls     atomic.Int64
	postMessageCalls atomic.Int64
}

func (m *mockSlackService) GetUser(ctx context.Context, userID string) (*slacksvc.User, error) {
	m.getUserCalls.Add(1)
	if m.getUserFn != nil {
		return m.getUserFn(ctx, userID)
	}
	return &slacksvc.User{
		ID:          userID,
		Name:        "testuser",
		RealName:    "Test User",
		DisplayName: "tester",
		Email:       "test@example.com",
		AvatarURL:   "https://example.com/avatar.jpg",
	}, nil
}

func (m *mockSlackService) GetChannel(ctx context.Context, channelID string) (*slacksvc.Channel, error) {
	if m.getChannelFn != nil {
		return m.getChannelFn(ctx, channelID)
	}
	return &slacksvc.Channel{ID: channelID, Name: "general"}, nil
}

func (m *mockSlackService) ListChannelMembers(ctx context.Context, channelID string) ([]string, error) {
	if m.listChannelMembersFn != nil {
		return m.listChannelMembersFn(ctx, channelID)
	}
	return []string{"U001", "U002"}, nil
}

func (m *mockSlackService) GetHistory(ctx context.Context, channelID string, params slacksvc.HistoryParams) (*slacksvc.History, error) {
	if m.getHistoryFn != nil {
		return m.getHistoryFn(ctx, channelID, params)
	}
	return &slacksvc.History{}, nil
}

func (m *mockSlackService) ListChannels(ctx context.Context) ([]slacksvc.Channel, error) {
	if m.listChannelsFn != nil {
		return m.listChannelsFn(ctx)
	}
	return []slacksvc.Channel{
		{ID: "C001", Name: "general"},
		{ID: "C002", Name: "random"},
	}, nil
}

func (m *mockSlackService) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	m.postMessageCalls.Add(1)
	if m.postMessageFn != nil {
		return m.postMessageFn(ctx, channelID, text)
	}
	return "1700000000.000100", nil
}

func (m *mockSlackService) ListUsers(ctx context.Context) ([]*slacksvc.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return []*slacksvc.User{
		{ID: "U001", Name: "user1", RealName: "User One"},
		{ID: "U002", Name: "user2", RealName: "User Two"},
	}, nil
}
