package slack

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL for the channel name cache
	DefaultCacheTTL = 45 * time.Second
)

// DefaultChannelTypes are the conversation types listed when none are configured
var DefaultChannelTypes = []string{"public_channel", "private_channel"}

// cacheEntry holds a cached channel with expiration. Channel names are
// cached here rather than in the profile cache, which holds users only.
type cacheEntry struct {
	channel   Channel
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api          *slack.Client
	cacheTTL     time.Duration
	channelTypes []string

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for the channel name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// WithChannelTypes sets the conversation types returned by ListChannels
func WithChannelTypes(types []string) Option {
	return func(c *client) {
		c.channelTypes = types
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		api:          slack.New(token),
		cacheTTL:     DefaultCacheTTL,
		channelTypes: DefaultChannelTypes,
		cache:        make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// APIErrorCode extracts the Slack API error code (e.g. "channel_not_found")
// from an error returned by this service, or "" if none is attached.
func APIErrorCode(err error) string {
	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) {
		return apiErr.Err
	}
	return ""
}

func userFromAPI(u *slack.User) *User {
	return &User{
		ID:          u.ID,
		Name:        u.Name,
		RealName:    u.RealName,
		DisplayName: u.Profile.DisplayName,
		Email:       u.Profile.Email,
		AvatarURL:   u.Profile.Image192,
		IsBot:       u.IsBot,
		IsAdmin:     u.IsAdmin,
		TeamID:      u.TeamID,
	}
}

// GetUser retrieves user information for the given user ID
func (c *client) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user info", goerr.V("user_id", userID))
	}

	return userFromAPI(user), nil
}

// GetChannel retrieves channel metadata with short-TTL caching
func (c *client) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.cache[channelID]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(now) {
		channel := entry.channel
		return &channel, nil
	}

	info, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get channel info", goerr.V("channel_id", channelID))
	}

	channel := Channel{ID: info.ID, Name: info.Name}

	c.mu.Lock()
	c.cache[channelID] = cacheEntry{
		channel:   channel,
		expiresAt: now.Add(c.cacheTTL),
	}
	c.mu.Unlock()

	return &channel, nil
}

// ListChannelMembers retrieves all member IDs of a channel, following
// pagination cursors until exhausted
func (c *client) ListChannelMembers(ctx context.Context, channelID string) ([]string, error) {
	var members []string
	var cursor string

	for {
		page, nextCursor, err := c.api.GetUsersInConversationContext(ctx, &slack.GetUsersInConversationParameters{
			ChannelID: channelID,
			Cursor:    cursor,
			Limit:     200,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get channel members", goerr.V("channel_id", channelID))
		}

		members = append(members, page...)

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return members, nil
}

// GetHistory retrieves one page of channel history. Pagination is
// client-driven; this never follows the next cursor itself.
func (c *client) GetHistory(ctx context.Context, channelID string, params HistoryParams) (*History, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}

	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     limit,
		Oldest:    params.Oldest,
		Latest:    params.Latest,
		Inclusive: params.Inclusive,
		Cursor:    params.Cursor,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get channel history", goerr.V("channel_id", channelID))
	}

	messages := make([]HistoryMessage, len(resp.Messages))
	for i, msg := range resp.Messages {
		messages[i] = HistoryMessage{
			UserID:    msg.User,
			Text:      msg.Text,
			Timestamp: msg.Timestamp,
		}
	}

	return &History{
		Messages:   messages,
		HasMore:    resp.HasMore,
		NextCursor: resp.ResponseMetaData.NextCursor,
	}, nil
}

// ListChannels retrieves the channels of the configured types
func (c *client) ListChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	var cursor string

	for {
		convs, nextCursor, err := c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Types:           c.channelTypes,
			ExcludeArchived: true,
			Limit:           100,
			Cursor:          cursor,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get conversations")
		}

		for _, conv := range convs {
			channels = append(channels, Channel{
				ID:   conv.ID,
				Name: conv.Name,
			})
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return channels, nil
}

// PostMessage sends a text message and returns its timestamp
func (c *client) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	_, timestamp, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}

	return timestamp, nil
}

// ListUsers retrieves all non-deleted users in the workspace
func (c *client) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}

	result := make([]*User, 0, len(users))
	for _, u := range users {
		if u.Deleted {
			continue
		}
		user := u
		result = append(result, userFromAPI(&user))
	}

	return result, nil
}
