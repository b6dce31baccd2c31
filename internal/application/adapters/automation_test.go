package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAutomationFromAPI_LegacyAliases(t *testing.T) {
	t.Parallel()

	got := AutomationFromAPI(map[string]any{
		"id":           "a1",
		"title":        "Welcome flow",
		"triggerEvent": "customer.created",
		"userMessage":  "Hi {{name}}!",
		"isActive":     true,
	})

	require.Equal(t, "Welcome flow", got["name"])
	require.Equal(t, "customer.created", got["trigger"])
	require.Equal(t, "Hi {{name}}!", got["message"])
	require.Equal(t, "active", got["status"])
	require.Equal(t, "a1", got["id"])

	for _, legacy := range []string{"title", "triggerEvent", "userMessage", "defaultMessage", "isActive"} {
		require.NotContains(t, got, legacy)
	}
}

func TestAutomationFromAPI_CanonicalWinsOverAlias(t *testing.T) {
	t.Parallel()

	got := AutomationFromAPI(map[string]any{
		"name":           "Canonical",
		"title":          "Legacy",
		"message":        "canonical body",
		"userMessage":    "legacy body",
		"defaultMessage": "fallback body",
		"status":         "draft",
		"isActive":       true,
	})

	require.Equal(t, "Canonical", got["name"])
	require.Equal(t, "canonical body", got["message"])
	// An explicit status is never overridden by isActive.
	require.Equal(t, "draft", got["status"])
}

func TestAutomationFromAPI_EmptyStringFallsThrough(t *testing.T) {
	t.Parallel()

	got := AutomationFromAPI(map[string]any{
		"message":        "",
		"userMessage":    "",
		"defaultMessage": "from default",
	})
	require.Equal(t, "from default", got["message"])
}

func TestAutomationFromAPI_StatusDefaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, "active", AutomationFromAPI(map[string]any{"isActive": true})["status"])
	require.Equal(t, "draft", AutomationFromAPI(map[string]any{"isActive": false})["status"])
	require.Equal(t, "draft", AutomationFromAPI(map[string]any{})["status"])
}

func TestAutomationFromAPI_PreservesUnknownFields(t *testing.T) {
	t.Parallel()

	got := AutomationFromAPI(map[string]any{
		"automationId":      "a2",
		"triggerConditions": map[string]any{"minOrderValue": 50},
		"createdAt":         "2026-01-15T10:00:00Z",
	})
	require.Equal(t, "a2", got["automationId"])
	require.Equal(t, map[string]any{"minOrderValue": 50}, got["triggerConditions"])
	require.Equal(t, "2026-01-15T10:00:00Z", got["createdAt"])
}

func TestAutomationFromAPI_Nil(t *testing.T) {
	t.Parallel()
	require.Nil(t, AutomationFromAPI(nil))
}

func TestAutomationToAPI_Create(t *testing.T) {
	t.Parallel()

	got := AutomationToAPI(map[string]any{
		"name":    "Welcome",
		"trigger": "customer.created",
		"message": "Hello!",
		"status":  "active",
		"junk":    "ignored",
	}, false)

	require.Equal(t, map[string]any{
		"name":    "Welcome",
		"trigger": "customer.created",
		"message": "Hello!",
		"status":  "active",
	}, got)
}

func TestAutomationToAPI_UpdateCarriesBothNamings(t *testing.T) {
	t.Parallel()

	got := AutomationToAPI(map[string]any{
		"name":    "Welcome",
		"message": "Hello!",
		"status":  "active",
	}, true)

	require.Equal(t, "Hello!", got["message"])
	require.Equal(t, "Hello!", got["userMessage"])
	require.Equal(t, "active", got["status"])
	require.Equal(t, true, got["isActive"])

	got = AutomationToAPI(map[string]any{"status": "paused"}, true)
	require.Equal(t, false, got["isActive"])
}

func TestAutomationRoundTrip(t *testing.T) {
	t.Parallel()

	legacy := map[string]any{
		"title":        "Abandoned cart",
		"triggerEvent": "cart.abandoned",
		"userMessage":  "You forgot something",
		"isActive":     true,
	}

	out := AutomationToAPI(AutomationFromAPI(legacy), true)
	require.Equal(t, "Abandoned cart", out["name"])
	require.Equal(t, "cart.abandoned", out["trigger"])
	require.Equal(t, "You forgot something", out["message"])
	require.Equal(t, "You forgot something", out["userMessage"])
	require.Equal(t, "active", out["status"])
	require.Equal(t, true, out["isActive"])
}
