package blocks

import (
	"errors"
	"fmt"
)

// ErrInvalidBatch is returned for a batch size below one or an overlap that
// is not smaller than the batch size.
var ErrInvalidBatch = errors.New("invalid batch parameters")

// Batches splits items into consecutive slices of at most size elements.
// Each batch after the first repeats the last overlap elements of the one
// before it. The final batch is partial when the items run out.
func Batches[T any](items []T, size, overlap int) ([][]T, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: size %d must be at least 1", ErrInvalidBatch, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidBatch, overlap, size)
	}

	var out [][]T
	step := size - overlap
	for start := 0; start < len(items); start += step {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
		if end == len(items) {
			break
		}
	}
	return out, nil
}
