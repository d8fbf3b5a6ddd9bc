package server

import (
	"context"
	"sync"
	"time"

	"vehicle-market/models"
	"vehicle-market/utils"
)

// Loader produces a complete, freshly normalized vehicle collection.
type Loader interface {
	FetchAll(ctx context.Context) ([]models.Vehicle, error)
}

// Catalog holds the collection the API searches. A refresh swaps in a new
// slice; readers never see a partially built collection.
type Catalog struct {
	loader Loader
	logger *utils.Logger

	mu        sync.RWMutex
	vehicles  []models.Vehicle
	fetchedAt time.Time
}

func NewCatalog(loader Loader, logger *utils.Logger) *Catalog {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Catalog{loader: loader, logger: logger}
}

// Refresh runs a full fetch. On failure the previous collection is kept.
func (c *Catalog) Refresh(ctx context.Context) (int, error) {
	vehicles, err := c.loader.FetchAll(ctx)
	if err != nil {
		c.logger.Error("[catalog] Refresh failed, keeping %d vehicles: %v", c.Len(), err)
		return 0, err
	}

	c.mu.Lock()
	c.vehicles = vehicles
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	c.logger.Info("[catalog] Loaded %d vehicles", len(vehicles))
	return len(vehicles), nil
}

// Snapshot returns the current collection. Callers must not modify it.
func (c *Catalog) Snapshot() ([]models.Vehicle, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vehicles, c.fetchedAt
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vehicles)
}
