package domain

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListOptions carries paging and ordering for list queries. SortBy is a
// whitelisted field name; repositories ignore unknown values.
type ListOptions struct {
	Page     int
	Limit    int
	SortBy   string
	SortDesc bool
}

// Normalize applies the default page, default limit and the limit cap.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	return o
}

// Skip is the number of records before the requested page.
func (o ListOptions) Skip() int {
	n := o.Normalize()
	return (n.Page - 1) * n.Limit
}

// ListResult is one page of records plus the total matching count.
type ListResult[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

// NewListResult builds a result for opts, which should already be normalized.
func NewListResult[T any](items []T, total int64, opts ListOptions) *ListResult[T] {
	if items == nil {
		items = []T{}
	}
	return &ListResult[T]{Items: items, Total: total, Page: opts.Page, Limit: opts.Limit}
}

// TotalPages is ceil(Total/Limit).
func (r *ListResult[T]) TotalPages() int {
	if r.Limit <= 0 {
		return 0
	}
	return int((r.Total + int64(r.Limit) - 1) / int64(r.Limit))
}
