// Package store provides a keyed state container with per-key change
// notification.
//
// A Store is owned by a router and shared with every view it constructs.
// It is not safe for concurrent use: all calls must happen on the UI loop,
// the same goroutine that runs router operations and bridge deliveries.
//
// Subscribers are invoked synchronously from Set, in the order they
// subscribed. A subscriber that panics is the subscriber's responsibility:
// the panic propagates to the caller of Set or Update.
package store

import (
	"maps"
	"slices"
)

// Callback receives the key that changed and its new value.
type Callback func(key string, value any)

// Subscription is the handle returned by Subscribe. It is the only valid
// token for Unsubscribe.
type Subscription struct {
	key      string
	callback Callback
}

// Key returns the key the subscription watches.
func (s *Subscription) Key() string {
	return s.key
}

// Store holds application state keyed by string.
type Store struct {
	state       map[string]any
	subscribers map[string][]*Subscription
}

// New creates an empty store.
func New() *Store {
	return &Store{
		state:       make(map[string]any),
		subscribers: make(map[string][]*Subscription),
	}
}

// Get returns the value stored under key, or def if the key is not set.
func (s *Store) Get(key string, def any) any {
	if value, ok := s.state[key]; ok {
		return value
	}
	return def
}

// Lookup returns the value stored under key and whether it was set.
func (s *Store) Lookup(key string) (any, bool) {
	value, ok := s.state[key]
	return value, ok
}

// Set stores value under key and notifies the key's subscribers.
func (s *Store) Set(key string, value any) {
	s.state[key] = value
	s.notify(key, value)
}

// Update sets every entry of values. Each key notifies its own subscribers;
// keys are applied in sorted order.
func (s *Store) Update(values map[string]any) {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		s.Set(key, values[key])
	}
}

// Subscribe registers callback for changes to key. The same callback may be
// registered more than once; each registration gets its own handle.
// A nil callback is ignored and yields a nil handle.
func (s *Store) Subscribe(key string, callback Callback) *Subscription {
	if callback == nil {
		return nil
	}
	sub := &Subscription{key: key, callback: callback}
	s.subscribers[key] = append(s.subscribers[key], sub)
	return sub
}

// Unsubscribe removes exactly sub from key. Unknown or already removed
// handles are ignored.
func (s *Store) Unsubscribe(key string, sub *Subscription) {
	subs, ok := s.subscribers[key]
	if !ok || sub == nil {
		return
	}

	idx := slices.Index(subs, sub)
	if idx < 0 {
		return
	}

	// Copy so a notification round already iterating the old slice is unaffected
	remaining := make([]*Subscription, 0, len(subs)-1)
	remaining = append(remaining, subs[:idx]...)
	remaining = append(remaining, subs[idx+1:]...)

	if len(remaining) == 0 {
		delete(s.subscribers, key)
		return
	}
	s.subscribers[key] = remaining
}

// Clear removes all state. Subscribers are kept and are not notified.
func (s *Store) Clear() {
	clear(s.state)
}

// GetAll returns a copy of the current state.
func (s *Store) GetAll() map[string]any {
	return maps.Clone(s.state)
}

// Keys returns the set keys in sorted order.
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.state))
}

// Len returns the number of set keys.
func (s *Store) Len() int {
	return len(s.state)
}

// SubscriberCount returns how many handles are registered for key.
func (s *Store) SubscriberCount(key string) int {
	return len(s.subscribers[key])
}

func (s *Store) notify(key string, value any) {
	for _, sub := range s.subscribers[key] {
		sub.callback(key, value)
	}
}
