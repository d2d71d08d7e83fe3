package repository

// ListQuery carries pagination, sorting and filter parameters for list
// endpoints.
type ListQuery struct {
	Page    int
	PerPage int
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery returns a ListQuery with sane defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		SortBy:  "created_at",
		SortDir: "desc",
		Filters: make(map[string]string),
	}
}

// Offset returns the row offset for the current page
func (q *ListQuery) Offset() int {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}
	return (q.Page - 1) * q.PerPage
}

// Order returns the ORDER BY clause for the query
func (q *ListQuery) Order() string {
	dir := "desc"
	if q.SortDir == "asc" {
		dir = "asc"
	}
	col := q.SortBy
	if col == "" {
		col = "created_at"
	}
	return col + " " + dir
}
