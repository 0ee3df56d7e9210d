package models

// Page represents one cursor-paginated slice of a backend list endpoint
type Page[T any] struct {
	Results     []T    `json:"results"`
	HasNextPage bool   `json:"hasNextPage"`
	NextCursor  string `json:"nextCursor"`
}

// Empty reports whether the page carries no results
func (p Page[T]) Empty() bool {
	return len(p.Results) == 0
}
