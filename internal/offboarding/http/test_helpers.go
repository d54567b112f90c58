package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	authHTTP "github.com/allisson/exitflow/internal/auth/http"
)

// createTestContext creates a test Gin context with the given request and, when actor is not nil,
// an authenticated actor.
func createTestContext(
	method, path string,
	body interface{},
	actor *authDomain.Actor,
) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			bodyReader = bytes.NewBufferString(raw)
		} else {
			bodyBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(bodyBytes)
		}
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(authHTTP.WithActor(req.Context(), actor))
	}
	c.Request = req

	return c, w
}
