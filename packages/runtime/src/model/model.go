// Package model holds observable data bound to runtime scopes.
package model

import "sort"

// Observer is told which keys of a model changed.
type Observer interface {
	ModelUpdated(m *Model, keys []string)
}

// Model is a set of named values that notifies observers on change.
type Model struct {
	values    map[string]interface{}
	observers []Observer
}

// New creates a model holding a copy of values.
func New(values map[string]interface{}) *Model {
	m := &Model{values: map[string]interface{}{}}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get returns the value of key.
func (m *Model) Get(key string) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in sorted order.
func (m *Model) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores value and notifies observers.
func (m *Model) Set(key string, value interface{}) {
	m.Update(map[string]interface{}{key: value})
}

// SetQuiet stores value without notifying observers.
func (m *Model) SetQuiet(key string, value interface{}) {
	m.values[key] = value
}

// Update stores several values and notifies observers once.
func (m *Model) Update(values map[string]interface{}) {
	keys := make([]string, 0, len(values))
	for k, v := range values {
		m.values[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, o := range append([]Observer(nil), m.observers...) {
		o.ModelUpdated(m, keys)
	}
}

// Observe registers o. Registering twice has no effect.
func (m *Model) Observe(o Observer) {
	for _, existing := range m.observers {
		if existing == o {
			return
		}
	}
	m.observers = append(m.observers, o)
}

// Unobserve removes o.
func (m *Model) Unobserve(o Observer) {
	for i, existing := range m.observers {
		if existing == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// Observers returns the number of registered observers.
func (m *Model) Observers() int {
	return len(m.observers)
}
