package schema

// PaginatedResponse represents a unified paginated API response
type PaginatedResponse[T any] struct {
	Pagination *PaginationMetadata `json:"pagination"`
	Data       []T                 `json:"data"`
}

// PaginationMetadata represents the metadata present in a PaginatedResponse
type PaginationMetadata struct {
	Offset        int64 `json:"offset"`
	Limit         int64 `json:"limit"`
	TotalCount    int   `json:"total_count"`
	IncludedCount int   `json:"included_count"`
}

// BuildPaginatedResponse builds a unified paginated API response
func BuildPaginatedResponse[T any](offset, limit int64, totalCount int, data []T) *PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return &PaginatedResponse[T]{
		Pagination: &PaginationMetadata{
			Offset:        offset,
			Limit:         limit,
			TotalCount:    totalCount,
			IncludedCount: len(data),
		},
		Data: data,
	}
}

// Paginate builds a paginated response holding the page of all starting at offset with at most limit elements
func Paginate[T any](all []T, offset, limit int64) *PaginatedResponse[T] {
	start := min(offset, int64(len(all)))
	end := min(start+min(limit, int64(len(all))), int64(len(all)))
	return BuildPaginatedResponse(offset, limit, len(all), all[start:end])
}
