package interfaces

import (
	"context"

	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
)

// MessageRepository stores the enriched records emitted for inbound
// channel messages. Each channel keeps a capped log of recent records.
type MessageRepository interface {
	// Put appends a record to the channel's log
	Put(ctx context.Context, record *model.MessageRecord) error

	// Recent returns up to limit records for the channel, newest first
	Recent(ctx context.Context, channelID string, limit int) ([]*model.MessageRecord, error)
}
