// Package pagination provides the generic page envelope returned by every
// listing endpoint.
package pagination

// Page wraps one page of content with its metadata. Metadata is always
// populated, even for an empty page, so clients can tell a valid empty page
// from an error.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// New builds a page envelope from the underlying query result. A nil content
// slice is normalized to an empty one so it serializes as [].
func New[T any](content []T, page, size int, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return Page[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          page >= totalPages-1,
	}
}

// Empty returns a zero-content page that still carries correct metadata.
func Empty[T any](page, size int, total int64) Page[T] {
	return New[T](nil, page, size, total)
}
