package redis

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/m-mizutani/goerr/v2"
	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
)

const (
	messageKeyPrefix = "messages:"
	// maxRecordsPerChannel caps each channel's message log
	maxRecordsPerChannel = 1000
)

type messageRepository struct {
	rdb *redis.Client
}

func messageKey(channelID string) string {
	return messageKeyPrefix + channelID
}

// Put pushes the record onto the channel's list and trims it to the cap
func (r *messageRepository) Put(ctx context.Context, record *model.MessageRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return goerr.Wrap(err, "failed to encode message record", goerr.V("id", record.ID))
	}

	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, messageKey(record.ChannelID), data)
	pipe.LTrim(ctx, messageKey(record.ChannelID), 0, maxRecordsPerChannel-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return goerr.Wrap(err, "failed to store message record",
			goerr.V("id", record.ID),
			goerr.V("channel_id", record.ChannelID),
		)
	}

	return nil
}

// Recent returns up to limit records for the channel, newest first
func (r *messageRepository) Recent(ctx context.Context, channelID string, limit int) ([]*model.MessageRecord, error) {
	if limit <= 0 || limit > maxRecordsPerChannel {
		limit = maxRecordsPerChannel
	}

	values, err := r.rdb.LRange(ctx, messageKey(channelID), 0, int64(limit)-1).Result()
	if err != nil && err != redis.Nil {
		return nil, goerr.Wrap(err, "failed to list message records", goerr.V("channel_id", channelID))
	}

	records := make([]*model.MessageRecord, 0, len(values))
	for _, value := range values {
		var record model.MessageRecord
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			return nil, goerr.Wrap(err, "failed to decode stored message record", goerr.V("channel_id", channelID))
		}
		records = append(records, &record)
	}

	return records, nil
}
