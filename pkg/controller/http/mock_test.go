package http_test

import (
	"context"

	slacksvc "github.com/watchtower-lab/chanpulse/pkg/service/slack"
)

// mockSlackService is a mock implementation of slack.Service for testing
type mockSlackService struct {
	getUserFn            func(ctx context.Context, userID string) (*slacksvc.User, error)
	getChannelFn         func(ctx context.Context, channelID string) (*slacksvc.Channel, error)
	listChannelMembersFn func(ctx context.Context, channelID string) ([]string, error)
	getHistoryFn         func(ctx context.Context, channelID string, params slacksvc.HistoryParams) (*slacksvc.History, error)
	listChannelsFn       func(ctx context.Context) ([]slacksvc.Channel, error)
	postMessageFn        func(ctx context.Context, channelID, text string) (string, error)
	listUsersFn          func(ctx context.Context) ([]*slacksvc.User, error)
}

func (m *mockSlackService) GetUser(ctx context.Context, userID string) (*slacksvc.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, userID)
	}
	return &slacksvc.User{ID: userID, Name: "testuser", RealName: "Test User"}, nil
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
	return []slacksvc.Channel{{ID: "C001", Name: "general"}}, nil
}

func (m *mockSlackService) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	if m.postMessageFn != nil {
		return m.postMessageFn(ctx, channelID, text)
	}
	return "1700000000.000100", nil
}

func (m *mockSlackService) ListUsers(ctx context.Context) ([]*slacksvc.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, nil
}
