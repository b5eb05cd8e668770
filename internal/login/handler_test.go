package login

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dirbridge/dirbridge/internal/directory"
)

const testToken = "login-test-token"

func init() {
	gin.SetMode(gin.TestMode)
}

func newLoginRouter(t *testing.T) (*gin.Engine, *directory.MemoryStore) {
	t.Helper()
	store := directory.NewMemoryStore()
	router := gin.New()
	RegisterRoutes(router, NewReconciler(store, zap.NewNop()), testToken)
	return router, store
}

func postLogin(router *gin.Engine, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, "/internal/v1/login", &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleLogin_Success(t *testing.T) {
	router, store := newLoginRouter(t)
	_, err := store.Create(context.Background(), directory.UserFields{
		UserName: strPtr("alice@example.com"),
		Email:    strPtr("alice@example.com"),
		Name:     strPtr("Alice Smith"),
	})
	require.NoError(t, err)

	w := postLogin(router, testToken, Profile{
		SubjectID:   "sub-1",
		Email:       "alice@example.com",
		DisplayName: "Alice Smith",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp identityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "alice@example.com", resp.UserName)
	assert.Equal(t, "Alice Smith", resp.Name)
}

func TestHandleLogin_NotProvisioned(t *testing.T) {
	router, _ := newLoginRouter(t)

	w := postLogin(router, testToken, Profile{SubjectID: "sub-1", Email: "nobody@example.com"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_PROVISIONED", body["error"])
}

func TestHandleLogin_InactiveAccount(t *testing.T) {
	router, store := newLoginRouter(t)
	_, err := store.Create(context.Background(), directory.UserFields{
		UserName: strPtr("alice@example.com"),
		Active:   boolPtr(false),
	})
	require.NoError(t, err)

	w := postLogin(router, testToken, Profile{SubjectID: "sub-1", Email: "alice@example.com"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandleLogin_MissingSubjectID(t *testing.T) {
	router, _ := newLoginRouter(t)

	w := postLogin(router, testToken, Profile{Email: "alice@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLogin_RequiresToken(t *testing.T) {
	router, _ := newLoginRouter(t)

	w := postLogin(router, "", Profile{SubjectID: "sub-1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postLogin(router, "wrong", Profile{SubjectID: "sub-1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
