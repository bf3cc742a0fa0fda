package service

import (
	"encoding/json"
	"strings"
	"time"
)

// DueDateLayout is the calendar date format used for due dates.
const DueDateLayout = "2006-01-02"

// Item is the JSON document stored as an entry value.
type Item struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	DueDate     string    `json:"dueDate,omitempty"` // YYYY-MM-DD, optional
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// timestampLayouts are tried in order when decoding created and lastUpdated.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999", // no zone, read as UTC
	DueDateLayout,
}

// UnmarshalJSON decodes an item written by any client. Timestamps that are
// missing, empty or in an unknown format decode as the zero time instead of
// failing the whole item.
func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var raw struct {
		plain
		Created     json.RawMessage `json:"created"`
		LastUpdated json.RawMessage `json:"lastUpdated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*it = Item(raw.plain)
	it.Created = parseTimestamp(raw.Created)
	it.LastUpdated = parseTimestamp(raw.LastUpdated)
	return nil
}

func parseTimestamp(raw json.RawMessage) time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Entry is a stored item together with its key.
type Entry struct {
	Key   string `json:"key"`
	Value Item   `json:"value"`
}

// Status returns "Done" or "Pending".
func (e Entry) Status() string {
	if e.Value.Completed {
		return "Done"
	}
	return "Pending"
}

// ValidDueDate reports whether s is empty or a YYYY-MM-DD calendar date.
func ValidDueDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, err := time.Parse(DueDateLayout, s)
	return err == nil
}
