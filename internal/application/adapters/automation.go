// Package adapters translates entity payloads between the platform's
// persistence field names and the shape the dashboard works with. Adapters
// are map-based so fields they don't recognize pass through untouched.
package adapters

// automationAliases maps each canonical automation field to the platform
// field names it may arrive under, in priority order.
var automationAliases = map[string][]string{
	"name":        {"name", "title"},
	"description": {"description"},
	"trigger":     {"trigger", "triggerEvent"},
	"message":     {"message", "userMessage", "defaultMessage"},
}

// automationCreateFields is the platform's create contract, which matches the
// dashboard shape directly.
var automationCreateFields = []string{"name", "description", "trigger", "message", "status", "triggerConditions"}

// AutomationFromAPI reconciles an automation returned by the platform into
// the canonical dashboard shape. Legacy alias keys are dropped once folded
// into their canonical field; everything else (id, automationId,
// triggerConditions, timestamps, unknown fields) is preserved.
func AutomationFromAPI(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}

	for field, aliases := range automationAliases {
		if v, ok := firstPresent(in, aliases...); ok {
			out[field] = v
		}
	}

	if _, ok := in["status"]; !ok {
		if active, _ := in["isActive"].(bool); active {
			out["status"] = "active"
		} else {
			out["status"] = "draft"
		}
	}

	for _, legacy := range []string{"title", "triggerEvent", "userMessage", "defaultMessage", "isActive"} {
		delete(out, legacy)
	}

	return out
}

// AutomationToAPI builds the outgoing payload for an automation write.
//
// Create and update hit different platform contracts: create accepts the
// dashboard field names as-is, while update historically expects
// userMessage/isActive. Update payloads therefore carry both namings and let
// the platform pick whichever it recognizes; this redundancy is confined to
// this one function so it can be deleted when the contracts are unified.
func AutomationToAPI(in map[string]any, update bool) map[string]any {
	out := map[string]any{}
	for _, field := range automationCreateFields {
		if v, ok := in[field]; ok {
			out[field] = v
		}
	}

	if update {
		if v, ok := in["message"]; ok {
			out["userMessage"] = v
		}
		if v, ok := in["status"]; ok {
			status, _ := v.(string)
			out["isActive"] = status == "active"
		}
	}

	return out
}

func firstPresent(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && s == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}
