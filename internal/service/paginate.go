package service

// Paginate returns one page of items. page is clamped into range and
// returned with the total page count, which is at least 1.
func Paginate[T any](items []T, page, perPage int) ([]T, int, int) {
	if perPage <= 0 {
		perPage = len(items)
	}
	totalPages := 1
	if perPage > 0 && len(items) > 0 {
		totalPages = (len(items) + perPage - 1) / perPage
	}
	page = max(0, min(page, totalPages-1))

	start := page * perPage
	end := min(start+perPage, len(items))
	if start >= len(items) {
		return items[:0], page, totalPages
	}
	return items[start:end], page, totalPages
}
