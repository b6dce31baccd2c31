package adapters

import "strings"

// ContactFromAPI copies a contact returned by the platform and adds a
// "phone" convenience alias for phoneE164. phoneE164 itself is left in
// place.
func ContactFromAPI(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in)+1)
	for k, v := range in {
		out[k] = v
	}

	phone, _ := in["phoneE164"].(string)
	out["phone"] = phone

	return out
}

// ContactToAPI prepares a contact write payload. An incoming "phone" field is
// normalized to E.164 under "phoneE164" and the ambiguous "phone" key is
// dropped; the platform must never receive it. All other fields pass through.
func ContactToAPI(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}

	if v, ok := in["phone"]; ok {
		if phone, _ := v.(string); phone != "" {
			out["phoneE164"] = NormalizePhoneE164(phone)
		}
		delete(out, "phone")
	}

	return out
}

// NormalizePhoneE164 strips formatting characters from a phone number and
// ensures a leading plus sign. "(555) 123-4567" becomes "+5551234567".
func NormalizePhoneE164(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}

	normalized := b.String()
	if normalized == "" {
		return normalized
	}
	if !strings.HasPrefix(normalized, "+") {
		normalized = "+" + normalized
	}
	return normalized
}
