package core

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// Collection is an observable ordered collection persisted as a whole under a fixed key.
// Mutations are serialized; nothing spans two collections.
type Collection[T any] struct {
	key  string
	kv   KVStore
	seed []T

	mu  sync.Mutex // serializes mutations
	obs *Observable[[]T]
}

var _ Watchable = (*Collection[int])(nil)

// NewCollection creates an empty collection. seed is used by Load when nothing was persisted yet.
func NewCollection[T any](key string, kv KVStore, seed ...T) *Collection[T] {
	return &Collection[T]{
		key:  key,
		kv:   kv,
		seed: seed,
		obs:  NewObservable[[]T](nil),
	}
}

func (c *Collection[T]) Key() string { return c.key }

// Load replaces the in-memory collection with the persisted snapshot, or with the seed if there is none.
func (c *Collection[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.kv.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			items := make([]T, len(c.seed))
			copy(items, c.seed)
			c.obs.Set(items)
			return nil
		}
		return errors.Wrapf(err, "loading %s", c.key)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrapf(err, "decoding %s", c.key)
	}
	c.obs.Set(items)
	return nil
}

// Items returns a copy of the collection.
func (c *Collection[T]) Items() []T {
	curr := c.obs.Get()
	items := make([]T, len(curr))
	copy(items, curr)
	return items
}

func (c *Collection[T]) Len() int { return len(c.obs.Get()) }

// Find returns the first item matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	for _, item := range c.obs.Get() {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns the items matching pred, in collection order.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	items := make([]T, 0)
	for _, item := range c.obs.Get() {
		if pred(item) {
			items = append(items, item)
		}
	}
	return items
}

// Mutate computes the new collection from a copy of the current one, persists the snapshot
// then replaces it. If fn or the save fails the collection is left untouched and subscribers
// are not notified.
// fn must not modify the elements' shared slices or maps in place.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(c.Items())
	if err != nil {
		return err
	}
	if err := c.save(ctx, next); err != nil {
		return err
	}
	c.obs.Set(next)
	return nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", c.key)
	}
	if err := c.kv.Put(ctx, c.key, data); err != nil {
		return errors.Wrapf(err, "saving %s", c.key)
	}
	return nil
}

func (c *Collection[T]) Subscribe(fn func([]T)) (unsubscribe func()) { return c.obs.Subscribe(fn) }

func (c *Collection[T]) OnChange(fn func()) (unsubscribe func()) { return c.obs.OnChange(fn) }
