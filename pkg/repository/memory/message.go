package memory

import (
	"context"
	"sync"

	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
)

// maxRecordsPerChannel caps the per-channel message log so that the
// record store cannot grow without bound.
const maxRecordsPerChannel = 1000

type messageRepository struct {
	mu      sync.RWMutex
	records map[string][]*model.MessageRecord // channelID -> newest first
}

func newMessageRepository() *messageRepository {
	return &messageRepository{
		records: make(map[string][]*model.MessageRecord),
	}
}

// Put appends a record to the channel's log, evicting the oldest entry
// when the cap is reached
func (r *messageRepository) Put(ctx context.Context, record *model.MessageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recordCopy := *record
	log := append([]*model.MessageRecord{&recordCopy}, r.records[record.ChannelID]...)
	if len(log) > maxRecordsPerChannel {
		log = log[:maxRecordsPerChannel]
	}
	r.records[record.ChannelID] = log

	return nil
}

// Recent returns up to limit records for the channel, newest first
func (r *messageRepository) Recent(ctx context.Context, channelID string, limit int) ([]*model.MessageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.records[channelID]
	if limit <= 0 || limit > len(log) {
		limit = len(log)
	}

	result := make([]*model.MessageRecord, 0, limit)
	for _, record := range log[:limit] {
		recordCopy := *record
		result = append(result, &recordCopy)
	}

	return result, nil
}
