// Package normalize reconciles the platform API's inconsistent list response
// shapes into one contract. Endpoints variously return a bare array, an
// object with the list nested under an endpoint-specific key, or an object
// with a pagination block using differing field names. The normalizers here
// never fail: whatever comes in, callers get a JSON array and a fully
// populated pagination block out.
package normalize

import (
	"bytes"
	"encoding/json"
)

// Pagination is the canonical pagination block.
type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// collectionKeys are the known endpoint-specific wrapper keys for paginated
// responses, tried in order after the caller's itemKey and "items".
var collectionKeys = []string{"campaigns", "contacts", "automations", "templates", "transactions"}

// arrayKeys are the known wrapper keys for plain list responses.
var arrayKeys = []string{"items", "campaigns", "contacts", "automations", "templates", "categories", "discounts", "audiences", "packages"}

const (
	defaultPage     = 1
	defaultPageSize = 20
)

var emptyArray = json.RawMessage("[]")

// PaginatedResponse extracts the item array and a normalized pagination block
// from an already-unwrapped response body. itemKey is the endpoint-specific
// key the platform nests its list under (e.g. "campaigns"); when the body
// uses some other shape the extraction falls back through known keys, then to
// the body itself if it is already an array, then to an empty array.
func PaginatedResponse(raw json.RawMessage, itemKey string) (json.RawMessage, Pagination) {
	if isArray(raw) {
		return raw, backfill(rawPagination{})
	}

	fields := objectFields(raw)
	if fields == nil {
		return emptyArray, backfill(rawPagination{})
	}

	items := emptyArray
	keys := append([]string{itemKey, "items"}, collectionKeys...)
	for _, key := range keys {
		if key == "" {
			continue
		}
		if v, ok := fields[key]; ok && isArray(v) {
			items = v
			break
		}
	}

	var p rawPagination
	if v, ok := fields["pagination"]; ok {
		// Best effort; a malformed block degrades to defaults.
		_ = json.Unmarshal(v, &p)
	}

	return items, backfill(p)
}

// ArrayResponse extracts a JSON array from a response body that may be a bare
// array, an object wrapping the array under itemKey or one of the known
// keys, or something else entirely (in which case it yields an empty array).
func ArrayResponse(raw json.RawMessage, itemKey string) json.RawMessage {
	if isArray(raw) {
		return raw
	}

	fields := objectFields(raw)
	if fields == nil {
		return emptyArray
	}

	if itemKey != "" {
		if v, ok := fields[itemKey]; ok && isArray(v) {
			return v
		}
	}
	for _, key := range arrayKeys {
		if v, ok := fields[key]; ok && isArray(v) {
			return v
		}
	}
	return emptyArray
}

// rawPagination accepts every field-name variant the platform has been seen
// to use for pagination metadata.
type rawPagination struct {
	Page        *int  `json:"page"`
	CurrentPage *int  `json:"currentPage"`
	PageSize    *int  `json:"pageSize"`
	Limit       *int  `json:"limit"`
	PerPage     *int  `json:"perPage"`
	Total       *int  `json:"total"`
	TotalCount  *int  `json:"totalCount"`
	TotalPages  *int  `json:"totalPages"`
	Pages       *int  `json:"pages"`
	HasNextPage *bool `json:"hasNextPage"`
	HasPrevPage *bool `json:"hasPrevPage"`
}

func backfill(p rawPagination) Pagination {
	out := Pagination{
		Page:     firstInt(defaultPage, p.Page, p.CurrentPage),
		PageSize: firstInt(defaultPageSize, p.PageSize, p.Limit, p.PerPage),
		Total:    firstInt(0, p.Total, p.TotalCount),
	}

	if v := firstIntPtr(p.TotalPages, p.Pages); v != nil {
		out.TotalPages = *v
	} else if out.PageSize > 0 {
		out.TotalPages = (out.Total + out.PageSize - 1) / out.PageSize
	}

	if p.HasNextPage != nil {
		out.HasNextPage = *p.HasNextPage
	} else {
		out.HasNextPage = out.Page < out.TotalPages
	}
	if p.HasPrevPage != nil {
		out.HasPrevPage = *p.HasPrevPage
	} else {
		out.HasPrevPage = out.Page > 1
	}

	return out
}

func firstInt(fallback int, candidates ...*int) int {
	if v := firstIntPtr(candidates...); v != nil {
		return *v
	}
	return fallback
}

func firstIntPtr(candidates ...*int) *int {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// objectFields decodes raw into its top-level fields, or nil when raw is not
// a JSON object.
func objectFields(raw json.RawMessage) map[string]json.RawMessage {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}
