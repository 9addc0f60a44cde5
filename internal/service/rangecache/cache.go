package rangecache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

const (
	outcomeHit       = "hit"
	outcomeMiss      = "miss"
	outcomeCoalesced = "coalesced"
	outcomeError     = "error"
)

// FetchFunc загружает данные для ключа
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Cache кэш результатов по ключу диапазона
// Для каждого ключа одновременно выполняется не больше одной загрузки,
// остальные вызывающие получают тот же результат
type Cache[V any] struct {
	name    string
	metrics Metrics
	logger  Logger

	mu         sync.RWMutex
	results    map[Key]V
	generation uint64

	inflight singleflight.Group
}

// New создает новый кэш
func New[V any](name string, metrics Metrics, logger Logger) *Cache[V] {
	return &Cache[V]{
		name:    name,
		metrics: metrics,
		logger:  logger,
		results: make(map[Key]V),
	}
}

// Get возвращает результат для ключа, загружая его при отсутствии
// Ошибка загрузки не кэшируется, следующий вызов повторит загрузку
func (c *Cache[V]) Get(ctx context.Context, key Key, fetch FetchFunc[V]) (V, error) {
	var zero V

	if v, ok := c.Peek(key); ok {
		c.lookup(outcomeHit)
		return v, nil
	}

	gen := c.currentGeneration()

	ch := c.inflight.DoChan(key.String(), func() (interface{}, error) {
		// Ключ мог загрузиться, пока мы ждали
		if v, ok := c.Peek(key); ok {
			return v, nil
		}

		// Загрузка общая для всех ожидающих, отмена одного из них не должна ее прерывать
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation == gen {
			c.results[key] = v
		}
		c.mu.Unlock()

		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.lookup(outcomeError)
			c.logger.Warn("Get: %s fetch failed for %s: %v", c.name, key, res.Err)
			return zero, fmt.Errorf("%w: Get - %s %s: %v", ErrRangeFetchFailed, c.name, key, res.Err)
		}
		if res.Shared {
			c.lookup(outcomeCoalesced)
		} else {
			c.lookup(outcomeMiss)
		}
		return res.Val.(V), nil
	}
}

// Peek возвращает результат без загрузки
func (c *Cache[V]) Peek(key Key) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.results[key]
	return v, ok
}

// Invalidate удаляет ключ; загрузка, начатая до инвалидации, не попадет в кэш
func (c *Cache[V]) Invalidate(key Key) {
	c.mu.Lock()
	delete(c.results, key)
	c.generation++
	c.mu.Unlock()

	c.inflight.Forget(key.String())
}

// InvalidateSunDerived удаляет все ключи солнечных данных, возвращает количество удаленных
func (c *Cache[V]) InvalidateSunDerived() int {
	c.mu.Lock()
	var removed []Key
	for key := range c.results {
		if key.IsSunDerived() {
			removed = append(removed, key)
			delete(c.results, key)
		}
	}
	c.generation++
	c.mu.Unlock()

	for _, key := range removed {
		c.inflight.Forget(key.String())
	}
	if len(removed) > 0 {
		c.logger.Info("InvalidateSunDerived: %s dropped %d entries", c.name, len(removed))
	}
	return len(removed)
}

// Keys возвращает закэшированные ключи
func (c *Cache[V]) Keys() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]Key, 0, len(c.results))
	for key := range c.results {
		keys = append(keys, key)
	}
	return keys
}

func (c *Cache[V]) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *Cache[V]) lookup(outcome string) {
	if c.metrics != nil {
		c.metrics.CacheLookup(c.name, outcome)
	}
}
