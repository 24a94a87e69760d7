package identity

import (
	"log/slog"
	"sync"

	"cinelog/internal/logging"
)

// Entity names one of the independent identifier namespaces.
type Entity string

const (
	Category Entity = "category"
	Platform Entity = "platform"
	Cast     Entity = "cast"
	Season   Entity = "season"
	Episode  Entity = "episode"
)

var entities = []Entity{Category, Platform, Cast, Season, Episode}

// Cache provides thread-safe external-id to local-id resolution, one
// independent map per entity type. Writes are last-write-wins; duplicate
// population from concurrent reconciliations is harmless because every
// writer observed the same store row.
type Cache struct {
	logger *slog.Logger
	mu     sync.RWMutex
	maps   map[Entity]map[int64]int64
}

// NewCache creates an empty cache. Construct one per process and inject it
// wherever resolution is needed.
func NewCache(logger *slog.Logger) *Cache {
	c := &Cache{
		logger: logging.NewComponentLogger(logger, "identity"),
		maps:   make(map[Entity]map[int64]int64, len(entities)),
	}
	for _, entity := range entities {
		c.maps[entity] = make(map[int64]int64)
	}
	return c
}

// Resolve returns the local id cached for the external id, if any.
func (c *Cache) Resolve(entity Entity, externalID int64) (int64, bool) {
	if externalID <= 0 {
		return 0, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.maps[entity]
	if !ok {
		return 0, false
	}
	localID, found := m[externalID]
	return localID, found
}

// Remember records an external-id to local-id mapping.
func (c *Cache) Remember(entity Entity, externalID, localID int64) {
	if externalID <= 0 || localID <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.maps[entity]
	if !ok {
		return
	}
	m[externalID] = localID

	c.logger.Debug("cached identity",
		logging.String(logging.FieldEntity, string(entity)),
		logging.Int64(logging.FieldExternalID, externalID),
		logging.Int64("local_id", localID))
}

// Len reports how many mappings an entity namespace holds.
func (c *Cache) Len(entity Entity) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.maps[entity])
}

// Reset clears every namespace. Intended for test isolation; production
// processes keep the cache for their whole lifetime.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entity := range entities {
		c.maps[entity] = make(map[int64]int64)
	}
}
