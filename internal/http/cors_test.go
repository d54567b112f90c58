package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateCORSMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		origins string
		wantNil bool
	}{
		{name: "disabled", enabled: false, origins: "https://hr.acme.example", wantNil: true},
		{name: "enabled without origins", enabled: true, origins: "", wantNil: true},
		{name: "only invalid origins", enabled: true, origins: "hr.acme.example, ftp://files", wantNil: true},
		{name: "portal origins", enabled: true, origins: "https://hr.acme.example, https://it.acme.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := createCORSMiddleware(tt.enabled, tt.origins, discardLogger())
			if tt.wantNil {
				assert.Nil(t, middleware)
			} else {
				assert.NotNil(t, middleware)
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{
			name:     "trims whitespace and trailing slash",
			input:    " https://hr.acme.example/ , http://localhost:3000 ",
			expected: []string{"https://hr.acme.example", "http://localhost:3000"},
		},
		{
			name:     "drops duplicates",
			input:    "https://hr.acme.example,https://hr.acme.example",
			expected: []string{"https://hr.acme.example"},
		},
		{
			name:     "skips invalid entries",
			input:    "hr.acme.example,https://hr.acme.example/portal,ftp://x,https://ok.example",
			expected: []string{"https://ok.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseOrigins(tt.input, discardLogger()))
		})
	}
}

func newCORSRouter(enabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	if middleware := createCORSMiddleware(enabled, "https://hr.acme.example", discardLogger()); middleware != nil {
		router.Use(middleware)
	}
	router.GET("/v1/offboarding", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})
	router.PATCH("/v1/offboarding/:id/tasks/:taskId", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCORS_AllowedOrigin(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/offboarding", nil)
	req.Header.Set("Origin", "https://hr.acme.example")
	newCORSRouter(true).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://hr.acme.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Request-Id", w.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORS_Disabled(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/offboarding", nil)
	req.Header.Set("Origin", "https://hr.acme.example")
	newCORSRouter(false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightForTaskUpdate(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/offboarding/1/tasks/2", nil)
	req.Header.Set("Origin", "https://hr.acme.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	newCORSRouter(true).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	assert.NotContains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}
