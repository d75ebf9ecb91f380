package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_UnknownRoutes(t *testing.T) {
	router := newStubRouter(&stubEventService{}, &stubPermissions{})

	tests := []struct {
		method string
		path   string
		status int
		code   string
	}{
		{http.MethodGet, "/missing", http.StatusNotFound, codeNotFound},
		{http.MethodPost, "/users/permissions/ads", http.StatusMethodNotAllowed, codeMethodNotAllowed},
		{http.MethodPatch, "/events", http.StatusMethodNotAllowed, codeMethodNotAllowed},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

		require.Equal(t, tt.status, rec.Code, "%s %s", tt.method, tt.path)
		var resp errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, tt.code, resp.Code)
	}
}
