package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SamLoc/internal/auth"
)

var secret = []byte("test-secret")

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JwtAuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"playerId": c.GetString("playerId"), "name": c.GetString("name")})
	})
	r.GET("/admin", AdminTokenMiddleware("s3cret"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJwtAuthMiddleware(t *testing.T) {
	r := newRouter()
	token, err := auth.Issue(secret, "p-1", "Lan", time.Hour, time.Now())
	require.NoError(t, err)

	w := get(r, "/me", map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"playerId":"p-1","name":"Lan"}`, w.Body.String())

	w = get(r, "/me?token="+token, nil)
	assert.Equal(t, http.StatusOK, w.Code, "query token for websocket handshakes")

	w = get(r, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/me", map[string]string{"Authorization": "Basic " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	forged, err := auth.Issue([]byte("other"), "p-1", "Lan", time.Hour, time.Now())
	require.NoError(t, err)
	w = get(r, "/me", map[string]string{"Authorization": "Bearer " + forged})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")

	expired, err := auth.Issue(secret, "p-1", "Lan", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	w = get(r, "/me", map[string]string{"Authorization": "Bearer " + expired})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
}

func TestAdminTokenMiddleware(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusNoContent, get(r, "/admin", map[string]string{"X-Admin-Token": "s3cret"}).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin?token=s3cret", nil).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", nil).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin?token=nope", nil).Code)

	closed := gin.New()
	closed.GET("/admin", AdminTokenMiddleware(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	assert.Equal(t, http.StatusForbidden, get(closed, "/admin", nil).Code, "empty token disables the route")
}
