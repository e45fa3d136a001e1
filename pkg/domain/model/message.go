package model

import "time"

// Channel represents a Slack channel
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MessageRecord is the structured record emitted for every plain channel
// message, after best-effort enrichment of the sender and channel names.
type MessageRecord struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel"`
	ChannelName string    `json:"channel_name"`
	UserID      string    `json:"user"`
	UserName    string    `json:"user_name"`
	Text        string    `json:"text"`
	Timestamp   string    `json:"timestamp"`
	ReceivedAt  time.Time `json:"received_at"`
}

// HistoryFilters are the pagination filters passed through to the
// conversation history API. Zero values mean "not set".
type HistoryFilters struct {
	Limit     int
	Oldest    string
	Latest    string
	Inclusive bool
	Cursor    string
}

// DefaultHistoryLimit is applied when no usable limit is given
const DefaultHistoryLimit = 100

// HistoryMessage is a single crawled message joined with the sender's
// cached profile (or the Unknown placeholder for uncached senders).
type HistoryMessage struct {
	User      *Profile `json:"user"`
	Text      string   `json:"text"`
	Timestamp string   `json:"timestamp"`
}

// HistoryPage is one page of crawled channel history. NextCursor is
// empty when the remote reported no further pages.
type HistoryPage struct {
	Messages   []HistoryMessage
	HasMore    bool
	NextCursor string
}
