package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		size      int
		requested string
		number    int
		numPages  int
		offset    int
		hasNext   bool
		hasPrev   bool
	}{
		{name: "first page", total: 13, size: 10, requested: "", number: 1, numPages: 2, offset: 0, hasNext: true},
		{name: "second page", total: 13, size: 10, requested: "2", number: 2, numPages: 2, offset: 10, hasPrev: true},
		{name: "past the end", total: 13, size: 10, requested: "99", number: 2, numPages: 2, offset: 10, hasPrev: true},
		{name: "not a number", total: 13, size: 10, requested: "abc", number: 1, numPages: 2, offset: 0, hasNext: true},
		{name: "too large for int", total: 13, size: 10, requested: "99999999999999999999", number: 2, numPages: 2, offset: 10, hasPrev: true},
		{name: "zero", total: 13, size: 10, requested: "0", number: 2, numPages: 2, offset: 10, hasPrev: true},
		{name: "negative", total: 13, size: 10, requested: "-3", number: 2, numPages: 2, offset: 10, hasPrev: true},
		{name: "too small for int", total: 13, size: 10, requested: "-99999999999999999999", number: 2, numPages: 2, offset: 10, hasPrev: true},
		{name: "empty listing", total: 0, size: 10, requested: "5", number: 1, numPages: 1, offset: 0},
		{name: "exact fit", total: 10, size: 5, requested: "2", number: 2, numPages: 2, offset: 5, hasPrev: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Paginate(tc.total, tc.size, tc.requested)
			assert.Equal(t, tc.number, p.Number)
			assert.Equal(t, tc.numPages, p.NumPages)
			assert.Equal(t, tc.offset, p.Offset)
			assert.Equal(t, tc.size, p.Limit)
			assert.Equal(t, tc.hasNext, p.HasNext)
			assert.Equal(t, tc.hasPrev, p.HasPrevious)
		})
	}
}

func TestPage_Links(t *testing.T) {
	p := Paginate(25, 10, "2")
	assert.Equal(t, 3, p.NextNumber)
	assert.Equal(t, 1, p.PreviousNumber)
	assert.Equal(t, []int{1, 2, 3}, p.Numbers())
}
