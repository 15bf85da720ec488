// internal/server/middleware_test.go
package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"trial-search/internal/common/logger"
)

// ==========================
// Recovery Middleware Tests
// ==========================

func TestRecoveryMiddleware_PanicBeforeWrite(t *testing.T) {
	h := recoveryMiddleware(logger.NewNoOpLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestRecoveryMiddleware_PanicAfterBodyWrite(t *testing.T) {
	h := recoveryMiddleware(logger.NewNoOpLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// Headers already went out with the body; the recovery path must not
	// try to send a second response.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"data":[]}`, rec.Body.String())
}
