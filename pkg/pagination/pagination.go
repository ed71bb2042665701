package pagination

// PageSize is the fixed number of products rendered per page.
const PageSize = 6

// TotalPages returns how many pages the given row count spans.
// An empty result set has zero pages.
func TotalPages(totalItems int) int {
	if totalItems <= 0 {
		return 0
	}
	return (totalItems + PageSize - 1) / PageSize
}

// ClampPage forces a requested page into the valid range. The floor is
// always 1 so an empty result set still addresses page one.
func ClampPage(page, totalPages int) int {
	ceiling := totalPages
	if ceiling < 1 {
		ceiling = 1
	}
	if page < 1 {
		return 1
	}
	if page > ceiling {
		return ceiling
	}
	return page
}

// Offset converts a clamped one-based page number into a row offset.
func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}

// Paginate slices one page out of an in-memory collection. Out-of-range
// pages yield an empty slice, not an error; callers that need the nearest
// real page clamp with ClampPage first.
func Paginate[T any](items []T, page int) []T {
	if page < 1 {
		return []T{}
	}
	start := (page - 1) * PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
