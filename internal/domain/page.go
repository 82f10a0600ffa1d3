package domain

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SortKey names a column students can be ordered by.
type SortKey string

const (
	SortByID       SortKey = "id"
	SortByUsername SortKey = "username"
	SortByLevel    SortKey = "level"
)

// SortDirection is ASC or DESC.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ParseSortDirection treats a case-insensitive "DESC" as descending and
// anything else as ascending.
func ParseSortDirection(raw string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(raw), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// ParseSortKey resolves a sort column name. Empty input selects the id.
func ParseSortKey(raw string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(raw))); key {
	case "":
		return SortByID, nil
	case SortByID, SortByUsername, SortByLevel:
		return key, nil
	default:
		return "", fmt.Errorf("unsupported sort key %q", raw)
	}
}

// PageRequest selects a window over an ordered collection. Page is 0-based.
type PageRequest struct {
	Page      int
	Size      int
	SortBy    SortKey
	Direction SortDirection
}

// DefaultPageRequest returns the first page of ten, ordered by id ascending.
func DefaultPageRequest() PageRequest {
	return PageRequest{Page: 0, Size: DefaultPageSize, SortBy: SortByID, Direction: SortAsc}
}

// Validate checks bounds and fills in a missing sort key or direction.
func (p *PageRequest) Validate() error {
	if p.Page < 0 {
		return fmt.Errorf("page index must not be negative")
	}
	if p.Size < 1 {
		return fmt.Errorf("page size must be at least 1")
	}
	if p.Size > MaxPageSize {
		return fmt.Errorf("page size must not exceed %d", MaxPageSize)
	}
	// Offset must fit in an int
	if p.Page > math.MaxInt/p.Size {
		return fmt.Errorf("page index %d is too large", p.Page)
	}
	if p.SortBy == "" {
		p.SortBy = SortByID
	}
	key, err := ParseSortKey(string(p.SortBy))
	if err != nil {
		return err
	}
	p.SortBy = key
	p.Direction = ParseSortDirection(string(p.Direction))
	return nil
}

// Offset is the number of rows preceding the requested page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is an ordered window of items plus the size of the full matching set.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Size  int
}

// NewPage builds a page; nil items become an empty slice.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: req.Page, Size: req.Size}
}

// TotalPages is zero for an empty collection.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 || p.Total == 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) First() bool {
	return p.Page == 0
}

func (p Page[T]) Last() bool {
	return p.Page+1 >= p.TotalPages()
}

// Map converts the items of a page while keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i := range p.Items {
		out[i] = fn(p.Items[i])
	}
	return Page[U]{Items: out, Total: p.Total, Page: p.Page, Size: p.Size}
}
