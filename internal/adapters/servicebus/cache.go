package servicebus

import (
	"context"
	"crypto/sha256"
	"sync"
	"time"

	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
)

const sweepInterval = time.Minute

// ClientCache is the process-wide pool of live broker clients, one per
// namespace. It is the only long-lived broker state in the engine.
type ClientCache struct {
	idleTTL time.Duration
	limits  Limits
	logger  libLog.Logger

	mu      sync.Mutex
	entries map[uuid.UUID]*cacheEntry

	done      chan struct{}
	closeOnce sync.Once

	// newClient builds a wrapper; tests substitute it.
	newClient func(namespace *mmodel.Namespace, credential string) (Client, error)
}

type cacheEntry struct {
	client      Client
	fingerprint [sha256.Size]byte
	createdAt   time.Time
	lastUsedAt  time.Time
}

// NewClientCache builds the cache and starts its idle sweep.
func NewClientCache(idleTTL time.Duration, limits Limits, logger libLog.Logger) *ClientCache {
	c := &ClientCache{
		idleTTL: idleTTL,
		limits:  limits,
		logger:  logger,
		entries: make(map[uuid.UUID]*cacheEntry),
		done:    make(chan struct{}),
	}

	c.newClient = func(namespace *mmodel.Namespace, credential string) (Client, error) {
		return NewClientWrapper(namespace, credential, limits, logger)
	}

	go c.sweepLoop()

	return c
}

// GetOrCreate returns the live client for a namespace, building one when
// missing or when the credential fingerprint changed. The replaced client is
// disposed asynchronously; at most one client per namespace is ever live.
func (c *ClientCache) GetOrCreate(ctx context.Context, namespace *mmodel.Namespace, credential string) (Client, error) {
	fingerprint := sha256.Sum256([]byte(credential))

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[namespace.ID]; ok {
		if entry.fingerprint == fingerprint {
			entry.lastUsedAt = time.Now()

			return entry.client, nil
		}

		delete(c.entries, namespace.ID)
		c.disposeAsync(namespace.ID, entry.client)
	}

	// Wrapper construction does no network I/O (links dial lazily), so holding
	// the lock here is what keeps the one-wrapper-per-namespace invariant.
	client, err := c.newClient(namespace, credential)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c.entries[namespace.ID] = &cacheEntry{
		client:      client,
		fingerprint: fingerprint,
		createdAt:   now,
		lastUsedAt:  now,
	}

	return client, nil
}

// Invalidate removes and disposes a namespace's client, typically after a
// credential rotation or a disconnect.
func (c *ClientCache) Invalidate(ctx context.Context, namespaceID uuid.UUID) {
	c.mu.Lock()
	entry, ok := c.entries[namespaceID]
	if ok {
		delete(c.entries, namespaceID)
	}
	c.mu.Unlock()

	if ok {
		c.disposeAsync(namespaceID, entry.client)
	}
}

// Shutdown stops the sweep and disposes every client synchronously.
func (c *ClientCache) Shutdown(ctx context.Context) {
	c.closeOnce.Do(func() {
		close(c.done)
	})

	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[uuid.UUID]*cacheEntry)
	c.mu.Unlock()

	for id, entry := range entries {
		if err := entry.client.Close(ctx); err != nil {
			c.logger.Warnf("disposing broker client for namespace %s on shutdown: %v", id, err)
		}
	}
}

func (c *ClientCache) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *ClientCache) sweep() {
	now := time.Now()

	c.mu.Lock()

	var expired []*cacheEntry

	var expiredIDs []uuid.UUID

	for id, entry := range c.entries {
		if now.Sub(entry.lastUsedAt) > c.idleTTL {
			expired = append(expired, entry)
			expiredIDs = append(expiredIDs, id)

			delete(c.entries, id)
		}
	}

	c.mu.Unlock()

	for i, entry := range expired {
		c.logger.Infof("evicting idle broker client for namespace %s", expiredIDs[i])
		c.disposeAsync(expiredIDs[i], entry.client)
	}
}

func (c *ClientCache) disposeAsync(namespaceID uuid.UUID, client Client) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := client.Close(ctx); err != nil {
			c.logger.Warnf("disposing broker client for namespace %s: %v", namespaceID, err)
		}
	}()
}
