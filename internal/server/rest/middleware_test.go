package rest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenFromRequest_Order(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		body    string
		headers map[string]string
		want    string
	}{
		{"body first", "/me?token=q", `{"token":"b"}`, map[string]string{"X-Access-Token": "h", "Authorization": "Bearer a"}, "b"},
		{"query before header", "/me?token=q", "", map[string]string{"X-Access-Token": "h", "Authorization": "Bearer a"}, "q"},
		{"header before bearer", "/me", "", map[string]string{"X-Access-Token": "h", "Authorization": "Bearer a"}, "h"},
		{"bearer last", "/me", "", map[string]string{"Authorization": "Bearer a"}, "a"},
		{"body without token", "/me?token=q", `{"username":"alice"}`, nil, "q"},
		{"body not json", "/me?token=q", `token=b`, nil, "q"},
		{"no bearer prefix", "/me", "", map[string]string{"Authorization": "a"}, ""},
		{"nothing", "/me", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(http.MethodPost, tt.target, body)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, accessTokenFromRequest(req))
		})
	}
}

func TestAccessTokenFromBody_RestoresBody(t *testing.T) {
	const payload = `{"token":"b","username":"alice"}`
	req := httptest.NewRequest(http.MethodPost, "/me", strings.NewReader(payload))

	assert.Equal(t, "b", accessTokenFromBody(req))

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, string(rest))
}
