package board

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"notifier/internal/service"
)

// ImportResult counts what Import did.
type ImportResult struct {
	Created int
	Updated int
	Skipped int
}

// Import stores entries one by one and refetches once at the end.
// Entries without a key get a fresh UUID. Existing keys are skipped unless
// replace is set. The first push failure stops the import.
func (b *Board) Import(ctx context.Context, entries []service.Entry, replace bool) (ImportResult, error) {
	var res ImportResult
	now := b.now().UTC()

	var pushErr error
	for _, e := range entries {
		item := e.Value
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			pushErr = ErrTitleRequired
			break
		}
		key := strings.TrimSpace(e.Key)
		if key == "" {
			key = b.newKey()
		}
		item.ID = key
		if item.Created.IsZero() {
			item.Created = now
		}
		if item.LastUpdated.IsZero() {
			item.LastUpdated = item.Created
		}

		_, exists := b.Find(key)
		switch {
		case exists && !replace:
			res.Skipped++
			continue
		case exists:
			if err := b.svc.UpdateEntry(ctx, key, item); err != nil {
				pushErr = fmt.Errorf("update %s: %w", key, err)
			} else {
				res.Updated++
			}
		default:
			err := b.svc.CreateEntry(ctx, key, item)
			switch {
			case errors.Is(err, service.ErrConflict) && !replace:
				res.Skipped++
			case errors.Is(err, service.ErrConflict):
				if err := b.svc.UpdateEntry(ctx, key, item); err != nil {
					pushErr = fmt.Errorf("update %s: %w", key, err)
				} else {
					res.Updated++
				}
			case err != nil:
				pushErr = fmt.Errorf("create %s: %w", key, err)
			default:
				res.Created++
			}
		}
		if pushErr != nil {
			break
		}
	}

	if pushErr != nil {
		b.logger.Debug("import stopped, refetching", "err", pushErr)
	} else {
		b.logger.Debug("import applied", "created", res.Created, "updated", res.Updated, "skipped", res.Skipped)
	}
	if err := b.Refresh(ctx); err != nil {
		b.logger.Warn("refetch failed after import", "err", err)
	}
	return res, pushErr
}
