// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"notifier/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu      sync.RWMutex
	keys    []string // store order
	entries map[string]service.Item

	// Error injection for testing
	ListErr   error
	GetErr    error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// Namespaces is returned by ListNamespaces.
	Namespaces []string

	// Call counters
	ListCalls   int
	GetCalls    int
	CreateCalls int
	UpdateCalls int
	DeleteCalls int
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		entries: make(map[string]service.Item),
	}
}

// AddEntry seeds an entry without counting it as a call.
func (f *FakeService) AddEntry(key string, item service.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[key]; !ok {
		f.keys = append(f.keys, key)
	}
	if item.ID == "" {
		item.ID = key
	}
	f.entries[key] = item
}

// AddItem seeds a titled entry created at the given offset from a fixed base
// time, so ordering by creation is predictable.
func (f *FakeService) AddItem(key, title string, completed bool, createdOffset time.Duration) {
	created := BaseTime.Add(createdOffset)
	f.AddEntry(key, service.Item{
		Title:       title,
		Completed:   completed,
		Created:     created,
		LastUpdated: created,
	})
}

// BaseTime anchors the creation times of seeded entries.
var BaseTime = time.Date(2023, 6, 2, 8, 0, 0, 0, time.UTC)

// Item returns the stored value for key.
func (f *FakeService) Item(key string) (service.Item, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	item, ok := f.entries[key]
	return item, ok
}

// Len returns the number of stored entries.
func (f *FakeService) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.keys)
}

// ListEntries implements service.Service.
func (f *FakeService) ListEntries(ctx context.Context) ([]service.Entry, error) {
	f.mu.Lock()
	f.ListCalls++
	f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Entry, 0, len(f.keys))
	for _, k := range f.keys {
		result = append(result, service.Entry{Key: k, Value: f.entries[k]})
	}
	return result, nil
}

// GetEntry implements service.Service.
func (f *FakeService) GetEntry(ctx context.Context, key string) (service.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	if f.GetErr != nil {
		return service.Entry{}, f.GetErr
	}
	item, ok := f.entries[key]
	if !ok {
		return service.Entry{}, fmt.Errorf("entry %s: %w", key, service.ErrNotFound)
	}
	return service.Entry{Key: key, Value: item}, nil
}

// CreateEntry implements service.Service.
func (f *FakeService) CreateEntry(ctx context.Context, key string, item service.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return f.CreateErr
	}
	if _, ok := f.entries[key]; ok {
		return fmt.Errorf("entry %s: %w", key, service.ErrConflict)
	}
	f.keys = append(f.keys, key)
	f.entries[key] = item
	return nil
}

// UpdateEntry implements service.Service.
func (f *FakeService) UpdateEntry(ctx context.Context, key string, item service.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	if _, ok := f.entries[key]; !ok {
		return fmt.Errorf("entry %s: %w", key, service.ErrNotFound)
	}
	f.entries[key] = item
	return nil
}

// DeleteEntry implements service.Service.
func (f *FakeService) DeleteEntry(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.entries[key]; !ok {
		return fmt.Errorf("entry %s: %w", key, service.ErrNotFound)
	}
	delete(f.entries, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
	return nil
}

// ListNamespaces implements service.NamespaceLister.
func (f *FakeService) ListNamespaces(ctx context.Context) ([]string, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.Namespaces...), nil
}
