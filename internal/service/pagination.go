package service

import (
	"math"
	"strconv"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
	// MaxPage keeps the offset within an int32 for any page size.
	MaxPage = math.MaxInt32 / maxPerPage
)

type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads page and perPage query values. Out of range or malformed
// values fall back to the defaults; pages past MaxPage are clamped to it.
func ParsePage(page, perPage string) Page {
	p := Page{Limit: defaultPerPage}

	if perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= maxPerPage {
			p.Limit = v
		}
	}
	if page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			p.Offset = (min(v, MaxPage) - 1) * p.Limit
		}
	}
	return p
}
