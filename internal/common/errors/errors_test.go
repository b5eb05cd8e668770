package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAppError_Error(t *testing.T) {
	err := BadRequest("invalid input")
	assert.Equal(t, "[BAD_REQUEST] invalid input", err.Error())

	withDetails := DatabaseError("insert user", errors.New("boom"))
	assert.Equal(t, "[DATABASE_ERROR] Database operation failed: insert user", withDetails.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("lookup failed", cause)
	assert.ErrorIs(t, err, cause)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   ErrorCode
		wantStatus int
	}{
		{"internal", Internal("boom", nil), ErrInternal, http.StatusInternalServerError},
		{"not found", NotFound("User"), ErrNotFound, http.StatusNotFound},
		{"bad request", BadRequest("nope"), ErrBadRequest, http.StatusBadRequest},
		{"unauthorized", Unauthorized("nope"), ErrUnauthorized, http.StatusUnauthorized},
		{"conflict", Conflict("dup"), ErrConflict, http.StatusConflict},
		{"not provisioned", NotProvisioned(), ErrNotProvisioned, http.StatusUnauthorized},
		{"account inactive", AccountInactive(), ErrAccountInactive, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.True(t, IsErrorCode(tt.err, tt.wantCode))
			assert.Equal(t, tt.wantStatus, GetStatusCode(tt.err))
		})
	}
}

func TestIsErrorCode_NonAppError(t *testing.T) {
	assert.False(t, IsErrorCode(errors.New("plain"), ErrInternal))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(errors.New("plain")))
}

func TestHandleError(t *testing.T) {
	t.Run("AppError status and body", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)

		HandleError(c, NotProvisioned())

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_PROVISIONED")
	})

	t.Run("plain error becomes 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)

		HandleError(c, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	})
}
