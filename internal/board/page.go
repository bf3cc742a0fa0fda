package board

// DefaultPerPage is used when a non-positive page size is requested.
const DefaultPerPage = 10

// Page is one slice of a sorted entry list.
type Page[T any] struct {
	Items      []T
	Number     int // 1-based
	PerPage    int
	TotalItems int
	TotalPages int // at least 1
	Offset     int // index of Items[0] in the full list
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// Paginate returns page number page (1-based) of items.
// page < 1 is treated as 1; a page past the end has no items.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}

	p := Page[T]{
		Number:     page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: pages,
		Offset:     total,
	}
	// Compared before multiplying so a huge page number cannot overflow.
	if page > pages {
		return p
	}
	start := (page - 1) * perPage
	if start >= total {
		return p
	}
	p.Offset = start
	p.Items = items[start : start+min(perPage, total-start)]
	return p
}
