package ml

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedPredictor memoises Infer results. Only valid for models that never
// change after loading.
type CachedPredictor struct {
	next  Predictor
	cache *lru.Cache[FeatureRecord, float64]
}

func NewCachedPredictor(next Predictor, size int) (*CachedPredictor, error) {
	if next == nil {
		return nil, fmt.Errorf("cached predictor needs a model")
	}
	cache, err := lru.New[FeatureRecord, float64](size)
	if err != nil {
		return nil, err
	}
	return &CachedPredictor{next: next, cache: cache}, nil
}

func (c *CachedPredictor) Infer(record FeatureRecord) (float64, error) {
	if value, ok := c.cache.Get(record); ok {
		return value, nil
	}
	value, err := c.next.Infer(record)
	if err != nil {
		return 0, err
	}
	c.cache.Add(record, value)
	return value, nil
}

func (c *CachedPredictor) Len() int {
	return c.cache.Len()
}
