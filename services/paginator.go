package services

import (
	"context"
	"fmt"
	"math"
)

// DefaultPageSize is used when an endpoint does not configure one.
const DefaultPageSize = 10

// Source is a lazily evaluated result set the paginator can slice.
// Count is consulted only when a requested page lies past the end.
type Source[T any] interface {
	Slice(ctx context.Context, offset, limit int) ([]T, error)
	Count(ctx context.Context) (int64, error)
}

// Page is one window of a Source. It carries no total count.
type Page[T any] struct {
	Number      int
	Size        int
	Items       []T
	HasNext     bool
	HasPrevious bool
}

// Paginate returns page number of src. A page past the end degrades to the last non-empty page.
func Paginate[T any](ctx context.Context, src Source[T], number, size int) (Page[T], error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if number < 1 {
		number = 1
	}

	// One extra row tells us whether a next page exists without counting.
	// A page whose offset does not fit in an int is past the end of any source.
	var items []T
	if offset, ok := pageOffset(number, size); ok {
		var err error
		items, err = src.Slice(ctx, offset, size+1)
		if err != nil {
			return Page[T]{}, fmt.Errorf("slice page %d: %w", number, err)
		}
	}

	if len(items) == 0 && number > 1 {
		total, err := src.Count(ctx)
		if err != nil {
			return Page[T]{}, fmt.Errorf("count for last page: %w", err)
		}
		number = int((total + int64(size) - 1) / int64(size))
		if number < 1 {
			number = 1
		}
		if total > 0 {
			items, err = src.Slice(ctx, (number-1)*size, size+1)
			if err != nil {
				return Page[T]{}, fmt.Errorf("slice last page %d: %w", number, err)
			}
		}
	}

	page := Page[T]{Number: number, Size: size, HasPrevious: number > 1}
	if len(items) > size {
		page.HasNext = true
		items = items[:size]
	}
	if items == nil {
		items = []T{}
	}
	page.Items = items
	return page, nil
}

func pageOffset(number, size int) (int, bool) {
	if number-1 > (math.MaxInt-size-1)/size {
		return 0, false
	}
	return (number - 1) * size, true
}
