package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"email", "Email"},
		{"new_email_received", "New Email Received"},
		{"google_drive", "Google Drive"},
		{"send-message", "Send Message"},
		{"send_SMS", "Send SMS"},
		{"already Title", "Already Title"},
		{"#general", "#General"},
		{"2fa_code", "2fa Code"},
		{"__", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, Label(tt.in))
		})
	}
}

func TestServiceKey(t *testing.T) {
	require.Equal(t, "google drive", ServiceKey("Google_Drive"))
	require.Equal(t, "email", ServiceKey("  EMAIL "))
	require.Equal(t, "todo list", ServiceKey("todo-list"))
	require.Equal(t, "", ServiceKey(""))
}
