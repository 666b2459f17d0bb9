package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitContactForm(t *testing.T) {
	_, app := newTestApp(t)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name: "Accepted",
			body: map[string]string{
				"name":    "Pat Doe",
				"email":   "pat@example.com",
				"message": "When does the market open?",
			},
			// mail is relayed asynchronously; the API always accepts
			expectedStatus: http.StatusAccepted,
		},
		{
			name: "Missing name",
			body: map[string]string{
				"email":   "pat@example.com",
				"message": "Hello",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Bad email",
			body: map[string]string{
				"name":    "Pat Doe",
				"email":   "not-an-email",
				"message": "Hello",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Message too long",
			body: map[string]string{
				"name":    "Pat Doe",
				"email":   "pat@example.com",
				"message": strings.Repeat("a", maxContactMessageLen+1),
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/contact", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
