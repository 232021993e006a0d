package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// HTTPTestHelper drives a gin router in tests.
type HTTPTestHelper struct {
	t      *testing.T
	router *gin.Engine
}

// NewHTTPTestHelper creates a helper around a fresh test-mode router.
func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	gin.SetMode(gin.TestMode)
	return &HTTPTestHelper{
		t:      t,
		router: gin.New(),
	}
}

// Router exposes the underlying router for route registration.
func (h *HTTPTestHelper) Router() *gin.Engine {
	return h.router
}

// SetRouter replaces the router under test.
func (h *HTTPTestHelper) SetRouter(router *gin.Engine) {
	h.router = router
}

// GetJSON performs a GET request expecting a JSON response.
func (h *HTTPTestHelper) GetJSON(url string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(h.t, err, "Failed to create HTTP request")

	req.Header.Set("Accept", "application/json")

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, req)

	return recorder
}

// DecodeJSON unmarshals a recorded response body into dest.
func (h *HTTPTestHelper) DecodeJSON(recorder *httptest.ResponseRecorder, dest any) {
	require.NoError(h.t, json.Unmarshal(recorder.Body.Bytes(), dest), "Failed to decode JSON response")
}
