package core

import "sync"

// Watchable is anything that can report that its value changed.
type Watchable interface {
	OnChange(fn func()) (unsubscribe func())
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Observable holds a value and notifies subscribers synchronously after every change.
// Subscribers must not mutate the observable they are notified by.
type Observable[T any] struct {
	mu     sync.RWMutex
	val    T
	subs   []subscriber[T]
	nextID int
}

var _ Watchable = (*Observable[int])(nil)

func NewObservable[T any](val T) *Observable[T] {
	return &Observable[T]{val: val}
}

func (o *Observable[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.val
}

func (o *Observable[T]) Set(val T) {
	o.mu.Lock()
	o.val = val
	subs := o.subscribers()
	o.mu.Unlock()

	for _, sub := range subs {
		sub.fn(val)
	}
}

// Update replaces the value with fn's result, computed under the lock.
func (o *Observable[T]) Update(fn func(T) T) {
	o.mu.Lock()
	val := fn(o.val)
	o.val = val
	subs := o.subscribers()
	o.mu.Unlock()

	for _, sub := range subs {
		sub.fn(val)
	}
}

func (o *Observable[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscriber[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, sub := range o.subs {
				if sub.id == id {
					o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
					break
				}
			}
		})
	}
}

func (o *Observable[T]) OnChange(fn func()) (unsubscribe func()) {
	return o.Subscribe(func(T) { fn() })
}

// subscribers returns a copy of the subscriber list. o.mu must be held.
func (o *Observable[T]) subscribers() []subscriber[T] {
	subs := make([]subscriber[T], len(o.subs))
	copy(subs, o.subs)
	return subs
}

// Computed is a read-only value derived from other observables,
// recomputed whenever one of its sources changes.
type Computed[T any] struct {
	obs     *Observable[T]
	compute func() T
	unsubs  []func()
}

var _ Watchable = (*Computed[int])(nil)

func NewComputed[T any](compute func() T, sources ...Watchable) *Computed[T] {
	c := &Computed[T]{
		obs:     NewObservable(compute()),
		compute: compute,
	}
	for _, src := range sources {
		c.unsubs = append(c.unsubs, src.OnChange(c.refresh))
	}
	return c
}

func (c *Computed[T]) refresh() { c.obs.Set(c.compute()) }

func (c *Computed[T]) Get() T { return c.obs.Get() }

func (c *Computed[T]) Subscribe(fn func(T)) (unsubscribe func()) { return c.obs.Subscribe(fn) }

func (c *Computed[T]) OnChange(fn func()) (unsubscribe func()) { return c.obs.OnChange(fn) }

// Close detaches the computed value from its sources.
func (c *Computed[T]) Close() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}
