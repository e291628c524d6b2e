package task

import (
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

// queryParams is the wire shape of a list query. omitempty keeps unset
// dimensions out of the query string entirely.
type queryParams struct {
	Status   string `url:"status,omitempty"`
	Priority string `url:"priority,omitempty"`
	Category string `url:"category,omitempty"`
	Search   string `url:"search,omitempty"`
}

// BuildQuery turns a filter into the query descriptor sent with GET /tasks.
// Only set dimensions appear. The picker value "all" counts as unset for the
// status, priority and category dimensions; search text is sent verbatim.
func BuildQuery(f Filter) url.Values {
	v, err := query.Values(queryParams{
		Status:   dimension(string(f.Status)),
		Priority: dimension(string(f.Priority)),
		Category: dimension(f.Category),
		Search:   f.Search,
	})
	if err != nil {
		// Values only fails for non-struct input.
		return url.Values{}
	}
	return v
}

// Describe returns the canonical encoded form of the filter's query, with keys
// sorted and values percent-encoded.
func Describe(f Filter) string {
	return BuildQuery(f).Encode()
}

func dimension(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
