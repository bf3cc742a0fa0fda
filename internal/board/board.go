// Package board keeps a local snapshot of the store's entries in sync with
// the remote store.
//
// Every read is served from the last fetched snapshot: entries are filtered
// into pending and completed, sorted by creation time, and paginated on the
// client. Every mutation pushes a single entry to the store and then refetches
// the whole namespace, whether or not the push succeeded.
package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"notifier/internal/logging"
	"notifier/internal/service"
)

// Validation errors.
var (
	ErrTitleRequired    = errors.New("title required")
	ErrInvalidDueDate   = errors.New("invalid due date (want YYYY-MM-DD)")
	ErrEmptyPatch       = errors.New("nothing to change")
	ErrAlreadyCompleted = errors.New("entry already completed")
	ErrNotCompleted     = errors.New("entry is not completed")
	ErrAmbiguousKey     = errors.New("ambiguous key prefix")
)

// Draft holds the fields of a new entry.
type Draft struct {
	Title       string
	Description string
	DueDate     string
	Completed   bool
}

// Patch lists the fields to change on an entry. Nil fields are left alone.
type Patch struct {
	Title       *string
	Description *string
	DueDate     *string
	Completed   *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && p.Completed == nil
}

// Board is the state-sync layer over a service.Service.
type Board struct {
	svc    service.Service
	logger *log.Logger
	now    func() time.Time
	newKey func() string

	mu        sync.RWMutex
	entries   []service.Entry
	fetchedAt time.Time
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the logger used for sync diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithKeyGenerator overrides the UUID key generator.
func WithKeyGenerator(gen func() string) Option {
	return func(b *Board) { b.newKey = gen }
}

// New creates a Board with an empty snapshot. Call Refresh to load it.
func New(svc service.Service, opts ...Option) *Board {
	b := &Board{
		svc:    svc,
		logger: logging.Discard(),
		now:    time.Now,
		newKey: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Refresh fetches every entry and replaces the snapshot.
// On failure the previous snapshot is kept.
func (b *Board) Refresh(ctx context.Context) error {
	entries, err := b.svc.ListEntries(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.entries = entries
	b.fetchedAt = b.now()
	b.mu.Unlock()
	b.logger.Debug("fetched entries", "count", len(entries))
	return nil
}

// FetchedAt returns the time of the last successful Refresh.
func (b *Board) FetchedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fetchedAt
}

// Entries returns a copy of the snapshot in store order.
func (b *Board) Entries() []service.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.entries)
}

// Pending returns entries not yet completed, oldest first.
func (b *Board) Pending() []service.Entry {
	return b.filter(func(e service.Entry) bool { return !e.Value.Completed })
}

// Completed returns completed entries, oldest first.
func (b *Board) Completed() []service.Entry {
	return b.filter(func(e service.Entry) bool { return e.Value.Completed })
}

func (b *Board) filter(keep func(service.Entry) bool) []service.Entry {
	b.mu.RLock()
	var out []service.Entry
	for _, e := range b.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	b.mu.RUnlock()
	SortByCreated(out)
	return out
}

// SortByCreated orders entries by creation time, then key.
func SortByCreated(entries []service.Entry) {
	slices.SortStableFunc(entries, func(a, b service.Entry) int {
		if c := a.Value.Created.Compare(b.Value.Created); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
}

// DueToday returns pending entries due on now's calendar date.
func (b *Board) DueToday(now time.Time) []service.Entry {
	today := now.Format(service.DueDateLayout)
	var out []service.Entry
	for _, e := range b.Pending() {
		if strings.TrimSpace(e.Value.DueDate) == today {
			out = append(out, e)
		}
	}
	return out
}

// Find looks up an entry by exact key.
func (b *Board) Find(key string) (service.Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, e := range b.entries {
		if e.Key == key {
			return e, true
		}
	}
	return service.Entry{}, false
}

// FindPrefix looks up an entry by key or unique key prefix (case-insensitive).
func (b *Board) FindPrefix(prefix string) (service.Entry, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return service.Entry{}, service.ErrNotFound
	}
	if e, ok := b.Find(prefix); ok {
		return e, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	var matches []service.Entry
	for _, e := range b.entries {
		if strings.HasPrefix(strings.ToLower(e.Key), prefix) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return service.Entry{}, service.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return service.Entry{}, fmt.Errorf("%w: %s", ErrAmbiguousKey, prefix)
	}
}

// Dashboard is everything the landing view shows.
type Dashboard struct {
	Now       time.Time
	DueToday  []service.Entry
	Pending   Page[service.Entry]
	Completed Page[service.Entry]
}

// Dashboard paginates the current snapshot.
func (b *Board) Dashboard(now time.Time, pendingPage, completedPage, perPage int) Dashboard {
	return Dashboard{
		Now:       now,
		DueToday:  b.DueToday(now),
		Pending:   Paginate(b.Pending(), pendingPage, perPage),
		Completed: Paginate(b.Completed(), completedPage, perPage),
	}
}

// Add creates a new entry under a fresh UUID.
func (b *Board) Add(ctx context.Context, d Draft) (service.Entry, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return service.Entry{}, ErrTitleRequired
	}
	due := strings.TrimSpace(d.DueDate)
	if !service.ValidDueDate(due) {
		return service.Entry{}, fmt.Errorf("%w: %s", ErrInvalidDueDate, due)
	}

	key := b.newKey()
	now := b.now().UTC()
	entry := service.Entry{
		Key: key,
		Value: service.Item{
			ID:          key,
			Title:       title,
			Description: d.Description,
			Completed:   d.Completed,
			DueDate:     due,
			Created:     now,
			LastUpdated: now,
		},
	}

	err := b.mutate(ctx, "create", key, func() error {
		return b.svc.CreateEntry(ctx, key, entry.Value)
	}, func(entries []service.Entry) []service.Entry {
		return append(entries, entry)
	})
	if err != nil {
		return service.Entry{}, err
	}
	return entry, nil
}

// Edit applies p to the entry stored under key.
func (b *Board) Edit(ctx context.Context, key string, p Patch) (service.Entry, error) {
	if p.IsEmpty() {
		return service.Entry{}, ErrEmptyPatch
	}
	entry, ok := b.Find(key)
	if !ok {
		return service.Entry{}, service.ErrNotFound
	}

	item := entry.Value
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return service.Entry{}, ErrTitleRequired
		}
		item.Title = title
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.DueDate != nil {
		due := strings.TrimSpace(*p.DueDate)
		if !service.ValidDueDate(due) {
			return service.Entry{}, fmt.Errorf("%w: %s", ErrInvalidDueDate, due)
		}
		item.DueDate = due
	}
	if p.Completed != nil {
		item.Completed = *p.Completed
	}
	return b.update(ctx, "update", key, item)
}

// Complete marks a pending entry as completed.
func (b *Board) Complete(ctx context.Context, key string) error {
	entry, ok := b.Find(key)
	if !ok {
		return service.ErrNotFound
	}
	if entry.Value.Completed {
		return ErrAlreadyCompleted
	}
	item := entry.Value
	item.Completed = true
	_, err := b.update(ctx, "complete", key, item)
	return err
}

// Revive moves a completed entry back to pending.
func (b *Board) Revive(ctx context.Context, key string) error {
	entry, ok := b.Find(key)
	if !ok {
		return service.ErrNotFound
	}
	if !entry.Value.Completed {
		return ErrNotCompleted
	}
	item := entry.Value
	item.Completed = false
	_, err := b.update(ctx, "revive", key, item)
	return err
}

// Delete removes the entry stored under key.
func (b *Board) Delete(ctx context.Context, key string) error {
	if _, ok := b.Find(key); !ok {
		return service.ErrNotFound
	}
	return b.mutate(ctx, "delete", key, func() error {
		return b.svc.DeleteEntry(ctx, key)
	}, func(entries []service.Entry) []service.Entry {
		return slices.DeleteFunc(entries, func(e service.Entry) bool { return e.Key == key })
	})
}

// PurgeCompleted deletes every completed entry and refetches once.
// It stops at the first failed delete and reports how many went through.
func (b *Board) PurgeCompleted(ctx context.Context) (int, error) {
	deleted := 0
	var pushErr error
	for _, e := range b.Completed() {
		if err := b.svc.DeleteEntry(ctx, e.Key); err != nil {
			pushErr = fmt.Errorf("delete %s: %w", e.Key, err)
			break
		}
		deleted++
	}

	if pushErr != nil {
		b.logger.Debug("purge stopped, refetching", "deleted", deleted, "err", pushErr)
	} else {
		b.logger.Debug("purge applied", "deleted", deleted)
	}
	if err := b.Refresh(ctx); err != nil {
		b.logger.Warn("refetch failed after purge", "err", err)
	}
	return deleted, pushErr
}

func (b *Board) update(ctx context.Context, op, key string, item service.Item) (service.Entry, error) {
	item.LastUpdated = b.now().UTC()
	if item.ID == "" {
		item.ID = key
	}
	updated := service.Entry{Key: key, Value: item}

	err := b.mutate(ctx, op, key, func() error {
		return b.svc.UpdateEntry(ctx, key, item)
	}, func(entries []service.Entry) []service.Entry {
		for i := range entries {
			if entries[i].Key == key {
				entries[i] = updated
			}
		}
		return entries
	})
	if err != nil {
		return service.Entry{}, err
	}
	return updated, nil
}

// mutate runs push, applies the optimistic change when it succeeds, and
// refetches in every case. The push error wins over the refetch error.
func (b *Board) mutate(ctx context.Context, op, key string, push func() error, apply func([]service.Entry) []service.Entry) error {
	pushErr := push()
	if pushErr != nil {
		b.logger.Debug("mutation failed, refetching", "op", op, "key", key, "err", pushErr)
	} else {
		b.mu.Lock()
		b.entries = apply(slices.Clone(b.entries))
		b.mu.Unlock()
		b.logger.Debug("mutation applied", "op", op, "key", key)
	}

	if err := b.Refresh(ctx); err != nil {
		if pushErr != nil {
			b.logger.Debug("refetch failed", "op", op, "err", err)
		} else {
			b.logger.Warn("refetch failed, showing local state", "op", op, "err", err)
		}
	}
	return pushErr
}
