package resources

import (
	"context"

	"gearhub-client/internal/api"
	"gearhub-client/internal/cache"
)

const TagDTCCodes = "DTC"

// DTCCode is a diagnostic trouble code entry (e.g. P0301).
type DTCCode struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type DTCCodes struct {
	collection[DTCCode]
}

func NewDTCCodes(a *api.Client, c *cache.Cache) *DTCCodes {
	return &DTCCodes{collection[DTCCode]{
		api: a, cache: c,
		path: "/dtc", plural: "dtc_codes", tag: TagDTCCodes,
	}}
}

// Search looks codes up by prefix; results share the DTC tag so code
// mutations invalidate searches too.
func (r *DTCCodes) Search(ctx context.Context, query string, p Pager) ([]DTCCode, int, error) {
	params := p.Values()
	if query != "" {
		params.Set("q", query)
	}
	return r.listWith(ctx, params)
}
