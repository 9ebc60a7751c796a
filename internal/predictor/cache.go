package predictor

import (
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// defaultCache backs PredictURL.
var defaultCache = NewCache()

// Cache keeps one Predictor per model file.
// Entries are keyed by absolute path and never evicted; a changed model
// file is not reloaded.
type Cache struct {
	mu         sync.Mutex
	predictors map[string]*Predictor
	opts       []Option
	loads      singleflight.Group
	load       func(path string, opts ...Option) (*Predictor, error)
}

// NewCache creates an empty cache. opts are applied to every Predictor it creates.
func NewCache(opts ...Option) *Cache {
	return &Cache{
		predictors: make(map[string]*Predictor),
		opts:       opts,
		load:       New,
	}
}

// Get returns the Predictor for modelPath, loading the model on first use.
// Failed loads are not cached.
func (c *Cache) Get(modelPath string) (*Predictor, error) {
	key, err := filepath.Abs(modelPath)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve model path %s: %w", modelPath, err)
	}

	c.mu.Lock()
	p, ok := c.predictors[key]
	c.mu.Unlock()
	if ok {
		return p, nil
	}

	// Concurrent misses on the same key share one load.
	v, err, _ := c.loads.Do(key, func() (any, error) {
		c.mu.Lock()
		p, ok := c.predictors[key]
		c.mu.Unlock()
		if ok {
			return p, nil
		}

		loaded, err := c.load(key, c.opts...)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.predictors[key] = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Predictor), nil //nolint:forcetypeassert // the group only stores *Predictor
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.predictors)
}
