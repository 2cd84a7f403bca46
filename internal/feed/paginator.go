package feed

import (
	"errors"
	"strconv"
	"strings"
)

const (
	PostsPerPage    = 10
	ProfilePerPage  = 5
	CommentsPerPage = 5
)

// Page is one window over an ordered listing. Pages are numbered from 1.
type Page struct {
	Number         int
	NumPages       int
	Total          int64
	HasNext        bool
	HasPrevious    bool
	NextNumber     int
	PreviousNumber int
	Offset         int
	Limit          int
}

// Paginate resolves the requested page number against total items.
// A missing or non-numeric request gives page 1. Any integer outside the
// valid range, including one too large for int, gives the last page. An empty
// listing has one empty page.
func Paginate(total int64, pageSize int, requested string) Page {
	if pageSize < 1 {
		pageSize = 1
	}
	numPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(requested))
	switch {
	case errors.Is(err, strconv.ErrRange):
		number = numPages
	case err != nil:
		number = 1
	case number < 1, number > numPages:
		number = numPages
	}

	p := Page{
		Number:      number,
		NumPages:    numPages,
		Total:       total,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
		Offset:      (number - 1) * pageSize,
		Limit:       pageSize,
	}
	if p.HasNext {
		p.NextNumber = number + 1
	}
	if p.HasPrevious {
		p.PreviousNumber = number - 1
	}
	return p
}

// Numbers lists every page number, for rendering the page links.
func (p Page) Numbers() []int {
	nums := make([]int, p.NumPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}
