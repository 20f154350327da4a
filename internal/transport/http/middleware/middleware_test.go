package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"catalog-service/internal/core/auth"
	resp "catalog-service/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func do(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, resp.Resp) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body resp.Resp
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, resp.OK(gin.H{"rid": c.GetString(KeyRequestID), "uid": c.GetString(KeyUserID)}))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", ok)

	w, body := do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
	rid := w.Header().Get(KeyRequestID)
	assert.NotEmpty(t, rid)
	assert.Equal(t, rid, body.Data.(map[string]any)["rid"])

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	w, _ = do(t, r, req)
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "bad id forged")
	w, _ = do(t, r, req)
	assert.NotEqual(t, "bad id forged", w.Header().Get(KeyRequestID))
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("s"), Issuer: "catalog", TTL: time.Minute}
	r := gin.New()
	r.Use(AuthJWT(j, "admin"))
	r.GET("/", ok)

	_, body := do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, resp.CodeUnauthorized, body.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	_, body = do(t, r, req)
	assert.Equal(t, resp.CodeUnauthorized, body.Code)

	tok, err := j.Issue("u1", "user")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	_, body = do(t, r, req)
	assert.Equal(t, resp.CodeForbidden, body.Code)

	tok, err = j.Issue("u2", "admin")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	_, body = do(t, r, req)
	assert.Equal(t, resp.CodeOK, body.Code)
	assert.Equal(t, "u2", body.Data.(map[string]any)["uid"])
}

func TestRateLimit(t *testing.T) {
	for name, mw := range map[string]gin.HandlerFunc{
		"global": RateLimit(0.001, 1),
		"per ip": RateLimitPerIP(0.001, 1),
	} {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(mw)
			r.GET("/", ok)
			_, body := do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, resp.CodeOK, body.Code)
			_, body = do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, resp.CodeTooManyRequests, body.Code)
		})
	}
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", ok)
	_, body := do(t, r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"too long"}`)))
	assert.Equal(t, resp.CodeBadRequest, body.Code)
	_, body = do(t, r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	assert.Equal(t, resp.CodeOK, body.Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/", func(c *gin.Context) { <-c.Request.Context().Done() })
	_, body := do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, resp.CodeTimeout, body.Code)
}

func TestRecoveryAndAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)
	r := gin.New()
	r.Use(RequestID(), AccessLog(l), SimpleRecovery(l))
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	_, body := do(t, r, httptest.NewRequest(http.MethodGet, "/boom?token=secret&q=1", nil))
	assert.Equal(t, resp.CodeServerError, body.Code)

	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	access := logs.FilterMessage("HTTP").All()
	require.Len(t, access, 1)
	fields := access[0].ContextMap()
	assert.Equal(t, "/boom", fields["path"])
	assert.Equal(t, map[string][]string{"token": {"****"}, "q": {"1"}}, fields["query"])
}

func TestAccessLog_RecordsCaller(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	j := &auth.JWTer{Secret: []byte("s"), Issuer: "catalog", TTL: time.Minute}
	r := gin.New()
	r.Use(AccessLog(zap.New(core)), AuthJWT(j, auth.RoleAdmin))
	r.GET("/", ok)

	tok, err := j.Issue("ops", auth.RoleAdmin)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	do(t, r, req)
	do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))

	access := logs.FilterMessage("HTTP").All()
	require.Len(t, access, 2)
	assert.Equal(t, "ops", access[0].ContextMap()["uid"])
	assert.NotContains(t, access[1].ContextMap(), "uid")
}
