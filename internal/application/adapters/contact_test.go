package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePhoneE164(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"(555) 123-4567", "+5551234567"},
		{"+1 555 123 4567", "+15551234567"},
		{"555.123.4567", "+5551234567"},
		{"+447911123456", "+447911123456"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizePhoneE164(tt.in), "input %q", tt.in)
	}
}

func TestContactFromAPI_PhoneAlias(t *testing.T) {
	t.Parallel()

	got := ContactFromAPI(map[string]any{
		"id":        "c1",
		"phoneE164": "+15551234567",
		"firstName": "Ada",
	})

	require.Equal(t, "+15551234567", got["phone"])
	require.Equal(t, "+15551234567", got["phoneE164"])
	require.Equal(t, "Ada", got["firstName"])
}

func TestContactFromAPI_MissingPhone(t *testing.T) {
	t.Parallel()

	got := ContactFromAPI(map[string]any{"id": "c2"})
	require.Equal(t, "", got["phone"])
}

func TestContactToAPI_NormalizesPhone(t *testing.T) {
	t.Parallel()

	got := ContactToAPI(map[string]any{
		"firstName": "Ada",
		"phone":     "(555) 123-4567",
	})

	require.Equal(t, "+5551234567", got["phoneE164"])
	require.NotContains(t, got, "phone")
	require.Equal(t, "Ada", got["firstName"])
}

func TestContactToAPI_EmptyPhoneDropped(t *testing.T) {
	t.Parallel()

	// An empty phone is dropped without clobbering an existing phoneE164.
	got := ContactToAPI(map[string]any{
		"phone":     "",
		"phoneE164": "+15551234567",
	})
	require.NotContains(t, got, "phone")
	require.Equal(t, "+15551234567", got["phoneE164"])
}

func TestContactToAPI_PassthroughWithoutPhone(t *testing.T) {
	t.Parallel()

	in := map[string]any{"tags": []any{"vip"}, "optedIn": true}
	got := ContactToAPI(in)
	require.Equal(t, in, got)
}
