package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultPageLimit is used when the limit query parameter is absent.
	DefaultPageLimit = 50
	// MaxPageLimit caps a single page of list results.
	MaxPageLimit = 100
)

// Page is an offset window over a list endpoint.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// NextOffset returns the offset of the following page, or nil when count shows the
// window was not filled and there is nothing more to fetch.
func (p Page) NextOffset(count int) *int {
	if count < p.Limit {
		return nil
	}
	next := p.Offset + p.Limit
	return &next
}

// ParsePage reads offset and limit from the query string.
func ParsePage(c *gin.Context) (Page, error) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return Page{}, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	if err != nil || limit < 1 || limit > MaxPageLimit {
		return Page{}, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxPageLimit)
	}

	return Page{Offset: offset, Limit: limit}, nil
}
