package slack

import "context"

// Service provides the interface to the Slack Web API consumed by the
// use case layer. It is the only component that talks to the remote
// platform; everything above it degrades gracefully when it fails.
type Service interface {
	// GetUser retrieves one user's raw attributes
	GetUser(ctx context.Context, userID string) (*User, error)

	// GetChannel retrieves channel metadata (name cached with a short TTL)
	GetChannel(ctx context.Context, channelID string) (*Channel, error)

	// ListChannelMembers retrieves all member IDs of a channel
	ListChannelMembers(ctx context.Context, channelID string) ([]string, error)

	// GetHistory retrieves one page of channel history with the given filters
	GetHistory(ctx context.Context, channelID string, params HistoryParams) (*History, error)

	// ListChannels retrieves the channels of the configured types
	ListChannels(ctx context.Context) ([]Channel, error)

	// PostMessage sends a text message and returns its timestamp
	PostMessage(ctx context.Context, channelID, text string) (string, error)

	// ListUsers retrieves all non-deleted users in the workspace
	ListUsers(ctx context.Context) ([]*User, error)
}

// User carries raw user attributes as returned by Slack. Empty strings
// mean the field was absent.
type User struct {
	ID          string
	Name        string
	RealName    string
	DisplayName string
	Email       string
	AvatarURL   string
	IsBot       bool
	IsAdmin     bool
	TeamID      string
}

// Channel represents a Slack channel
type Channel struct {
	ID   string
	Name string
}

// HistoryParams are the pagination filters for GetHistory. Zero values
// are omitted from the API call.
type HistoryParams struct {
	Limit     int
	Oldest    string
	Latest    string
	Inclusive bool
	Cursor    string
}

// HistoryMessage is one raw message from channel history
type HistoryMessage struct {
	UserID    string
	Text      string
	Timestamp string
}

// History is one page of channel history. NextCursor and HasMore are
// passed through verbatim from the API response.
type History struct {
	Messages   []HistoryMessage
	HasMore    bool
	NextCursor string
}
