package memory

import (
	"errors"

	"github.com/watchtower-lab/chanpulse/pkg/domain/interfaces"
)

// ErrNotFound is returned for lookups of entries that do not exist
var ErrNotFound = errors.New("not found")

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the default in-process repository backend
type Memory struct {
	profile *profileRepository
	message *messageRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		profile: newProfileRepository(),
		message: newMessageRepository(),
	}
}

func (m *Memory) Profile() interfaces.ProfileRepository {
	return m.profile
}

func (m *Memory) Message() interfaces.MessageRepository {
	return m.message
}

func (m *Memory) Close() error {
	return nil
}
