package http

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// SetLinkHeaders sets RFC 8288 first/prev/next/last links. Filters in the
// current query string are carried over to every link.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	query := url.Values{}
	for k, v := range c.Queries() {
		query.Set(k, v)
	}
	link := func(offset int, rel string) string {
		query.Set("offset", strconv.Itoa(offset))
		query.Set("limit", strconv.Itoa(p.Limit))
		return "<" + c.Path() + "?" + query.Encode() + `>; rel="` + rel + `"`
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	links = append(links, link(max(p.Total-p.Limit, 0), "last"))

	c.Set(fiber.HeaderLink, strings.Join(links, ", "))
}

// paginate applies offset/limit query parameters to items, sets the Link
// header and returns the page.
func paginate[T any](c *fiber.Ctx, items []T, defaultLimit, maxLimit int) PaginatedResponse {
	offset := max(c.QueryInt("offset", 0), 0)
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	total := len(items)
	page := []T{}
	if offset < total {
		page = items[offset:min(offset+limit, total)]
	}

	pg := Pagination{Offset: offset, Limit: limit, Total: total}
	SetLinkHeaders(c, pg)
	return PaginatedResponse{Data: page, Pagination: pg}
}
