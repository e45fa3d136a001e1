package interfaces

// Repository aggregates the persistence interfaces. Implementations live
// in pkg/repository/memory (default) and pkg/repository/redis.
type Repository interface {
	Profile() ProfileRepository
	Message() MessageRepository

	// Close releases backend resources (no-op for the memory backend)
	Close() error
}
