package application

import (
	"encoding/json"

	"textloop-gateway/internal/application/normalize"
)

// Collection is the canonical list payload served to the dashboard:
// a guaranteed array of items plus a fully populated pagination block,
// regardless of which shape the platform answered with.
type Collection struct {
	Items      json.RawMessage      `json:"items"`
	Pagination normalize.Pagination `json:"pagination"`
}

// decodeItems unmarshals a normalized item array into maps for adapter
// passes. Returns nil when the array cannot be decoded; callers then fall
// back to the raw array.
func decodeItems(items json.RawMessage) []map[string]any {
	var decoded []map[string]any
	if err := json.Unmarshal(items, &decoded); err != nil {
		return nil
	}
	return decoded
}

// encodeItems is the inverse of decodeItems. An encode failure yields an
// empty array rather than an error; adapted items are plain maps and should
// always marshal.
func encodeItems(items []map[string]any) json.RawMessage {
	if items == nil {
		items = []map[string]any{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return json.RawMessage("[]")
	}
	return encoded
}
