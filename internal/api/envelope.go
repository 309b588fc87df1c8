package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ListPage is the normalized shape every list endpoint resolves to,
// whatever envelope the backend wrapped it in.
type ListPage struct {
	Items json.RawMessage
	Total int
}

// DecodeList normalizes the three list envelopes the backend is known
// to use: a bare array, {data: [...], total}, and {data: {<plural>:
// [...], total}}. plural is the resource's collection key inside the
// keyed envelope, e.g. "coupons".
func DecodeList(raw json.RawMessage, plural string) (ListPage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ListPage{}, fmt.Errorf("decoding %s list: empty body", plural)
	}

	if trimmed[0] == '[' {
		total, err := countItems(trimmed)
		if err != nil {
			return ListPage{}, fmt.Errorf("decoding %s list: %w", plural, err)
		}
		return ListPage{Items: trimmed, Total: total}, nil
	}

	var outer struct {
		Data  json.RawMessage `json:"data"`
		Total *int            `json:"total"`
	}
	if err := json.Unmarshal(trimmed, &outer); err != nil {
		return ListPage{}, fmt.Errorf("decoding %s list envelope: %w", plural, err)
	}

	inner := bytes.TrimSpace(outer.Data)
	if len(inner) == 0 {
		return ListPage{Items: json.RawMessage("[]")}, nil
	}

	if inner[0] == '[' {
		page := ListPage{Items: inner}
		if outer.Total != nil {
			page.Total = *outer.Total
		} else {
			total, err := countItems(inner)
			if err != nil {
				return ListPage{}, fmt.Errorf("decoding %s list: %w", plural, err)
			}
			page.Total = total
		}
		return page, nil
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(inner, &keyed); err != nil {
		return ListPage{}, fmt.Errorf("decoding %s keyed envelope: %w", plural, err)
	}

	items, ok := keyed[plural]
	if !ok {
		// Some endpoints key the collection under a name that never
		// matched their path; take the only array present.
		for k, v := range keyed {
			if k == "total" {
				continue
			}
			if t := bytes.TrimSpace(v); len(t) > 0 && t[0] == '[' {
				items = v
				ok = true
				break
			}
		}
	}
	if !ok {
		return ListPage{}, fmt.Errorf("decoding %s list: no %q collection in envelope", plural, plural)
	}

	page := ListPage{Items: items}
	if rawTotal, found := keyed["total"]; found {
		if err := json.Unmarshal(rawTotal, &page.Total); err != nil {
			return ListPage{}, fmt.Errorf("decoding %s total: %w", plural, err)
		}
	} else if outer.Total != nil {
		page.Total = *outer.Total
	} else {
		total, err := countItems(items)
		if err != nil {
			return ListPage{}, fmt.Errorf("decoding %s list: %w", plural, err)
		}
		page.Total = total
	}
	return page, nil
}

// DecodeItem unwraps a single-object response, tolerating both a bare
// object and the {data: {...}} envelope.
func DecodeItem(raw json.RawMessage, result interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	var outer struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &outer); err == nil && len(bytes.TrimSpace(outer.Data)) > 0 {
		return json.Unmarshal(outer.Data, result)
	}
	return json.Unmarshal(trimmed, result)
}

func countItems(raw json.RawMessage) (int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, err
	}
	return len(items), nil
}
