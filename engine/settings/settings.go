package settings

import (
	"sync"
)

// KeyShadows is the settings key holding the shadow quality tier ("low", "medium" or "high").
const KeyShadows = "shadows"

// ChangeHandler receives the new value of a settings key.
type ChangeHandler func(key, value string)

// subscription is the implementation of the Subscription interface.
type subscription struct {
	store *settingsImpl
	key   string
	id    uint64
	once  sync.Once
}

// Subscription is the handle returned by Settings.OnChange. It stays registered
// until Unsubscribe is called.
type Subscription interface {
	// Key returns the settings key this subscription listens to.
	//
	// Returns:
	//   - string: the key
	Key() string

	// Unsubscribe removes the handler from the store. Safe to call more than once.
	Unsubscribe()
}

type listener struct {
	id      uint64
	handler ChangeHandler
}

// settingsImpl is the implementation of the Settings interface.
type settingsImpl struct {
	mu *sync.Mutex

	values    map[string]string
	listeners map[string][]listener
	nextID    uint64
}

// Settings is a string key/value store that notifies subscribers when a value changes.
//
// Handlers run synchronously on the goroutine that calls Set, in the order they
// subscribed. The renderer expects Set to be called between frames on the render
// thread so that handlers never overlap a frame.
type Settings interface {
	// Get returns the current value for a key.
	//
	// Parameters:
	//   - key: the settings key
	//
	// Returns:
	//   - string: the stored value, or "" when unset
	//   - bool: true if the key has a value
	Get(key string) (string, bool)

	// Set stores a value and notifies every handler subscribed to the key.
	// Storing the value already held is a no-op and notifies nobody.
	//
	// Parameters:
	//   - key: the settings key
	//   - value: the new value
	Set(key, value string)

	// OnChange subscribes a handler to a key. When fireImmediately is true the
	// handler is invoked once, synchronously, with the current value before
	// OnChange returns, so callers can establish their initial state from it.
	//
	// Parameters:
	//   - key: the settings key to watch
	//   - handler: the function invoked with the key and new value
	//   - fireImmediately: invoke the handler once with the current value
	//
	// Returns:
	//   - Subscription: the handle used to unsubscribe
	OnChange(key string, handler ChangeHandler, fireImmediately bool) Subscription
}

var _ Settings = &settingsImpl{}

// NewSettings creates an empty settings store with the provided options applied.
//
// Parameters:
//   - options: variadic list of SettingsBuilderOption functions
//
// Returns:
//   - Settings: the new store
func NewSettings(options ...SettingsBuilderOption) Settings {
	s := &settingsImpl{
		mu:        &sync.Mutex{},
		values:    make(map[string]string),
		listeners: make(map[string][]listener),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *settingsImpl) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *settingsImpl) Set(key, value string) {
	s.mu.Lock()
	if old, ok := s.values[key]; ok && old == value {
		s.mu.Unlock()
		return
	}
	s.values[key] = value
	// Copy so handlers may subscribe or unsubscribe without deadlocking.
	ls := make([]listener, len(s.listeners[key]))
	copy(ls, s.listeners[key])
	s.mu.Unlock()

	for _, l := range ls {
		l.handler(key, value)
	}
}

func (s *settingsImpl) OnChange(key string, handler ChangeHandler, fireImmediately bool) Subscription {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[key] = append(s.listeners[key], listener{id: id, handler: handler})
	value := s.values[key]
	s.mu.Unlock()

	if fireImmediately {
		handler(key, value)
	}
	return &subscription{store: s, key: key, id: id}
}

func (s *settingsImpl) remove(key string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls := s.listeners[key]
	for i, l := range ls {
		if l.id == id {
			s.listeners[key] = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(s.listeners[key]) == 0 {
		delete(s.listeners, key)
	}
}

func (sub *subscription) Key() string {
	return sub.key
}

func (sub *subscription) Unsubscribe() {
	sub.once.Do(func() {
		sub.store.remove(sub.key, sub.id)
	})
}
