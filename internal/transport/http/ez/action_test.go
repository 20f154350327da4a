package ez

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resp "catalog-service/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type codedErr struct{}

func (codedErr) Error() string         { return "Invalid hierarchy: x: db detail" }
func (codedErr) HTTPStatus() int       { return http.StatusBadRequest }
func (codedErr) Details() any          { return map[string]any{"errors": []string{"x"}} }
func (codedErr) PublicMessage() string { return "Invalid hierarchy: x" }

type echoIn struct {
	Name string `json:"name" form:"name" binding:"required"`
}

func serve(t *testing.T, r http.Handler, method, target, body string) resp.Resp {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRegisterAction(t *testing.T) {
	r := gin.New()
	e := New(r.Group("/v1"))
	RegisterAction(e, Action[echoIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *echoIn) (gin.H, error) {
			return gin.H{"name": in.Name}, nil
		},
	})
	RegisterAction(e, Action[echoIn, gin.H]{
		Method: http.MethodGet,
		Path:   "/echo",
		Binder: BindQuery,
		Handler: func(c *gin.Context, in *echoIn) (gin.H, error) {
			return gin.H{"name": in.Name}, nil
		},
	})
	RegisterAction(e, Action[struct{}, any]{
		Method: http.MethodDelete,
		Path:   "/items/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			return nil, BadRequest("cannot delete " + c.Param("id"))
		},
	})

	out := serve(t, r, http.MethodPost, "/v1/echo", `{"name":"nike"}`)
	assert.Equal(t, resp.CodeOK, out.Code)
	assert.Equal(t, map[string]any{"name": "nike"}, out.Data)

	out = serve(t, r, http.MethodPost, "/v1/echo", `{}`)
	assert.Equal(t, resp.CodeBadRequest, out.Code)

	out = serve(t, r, http.MethodGet, "/v1/echo?name=adidas", "")
	assert.Equal(t, map[string]any{"name": "adidas"}, out.Data)

	out = serve(t, r, http.MethodDelete, "/v1/items/1", "")
	assert.Equal(t, resp.CodeBadRequest, out.Code)
	assert.Equal(t, "cannot delete 1", out.Msg)
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
		data any
	}{
		{"aerr", BadRequest("bad"), resp.CodeBadRequest, "bad", map[string]any{}},
		{"aerr 5xx", &AErr{Code: resp.CodeServerError, Msg: "boom", Err: errors.New("db")}, resp.CodeServerError, "boom", map[string]any{}},
		{"coded", codedErr{}, resp.CodeBadRequest, "Invalid hierarchy: x", map[string]any{"errors": []any{"x"}}},
		{"wrapped coded", errors.Join(errors.New("ctx"), codedErr{}), resp.CodeBadRequest, "Invalid hierarchy: x", map[string]any{"errors": []any{"x"}}},
		{"plain", errors.New("db down"), resp.CodeServerError, "Internal Server Error", map[string]any{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			var logged int
			r.GET("/", func(c *gin.Context) {
				WriteError(c, tc.err)
				logged = len(c.Errors)
			})
			out := serve(t, r, http.MethodGet, "/", "")
			assert.Equal(t, tc.code, out.Code)
			assert.Equal(t, tc.msg, out.Msg)
			assert.Equal(t, tc.data, out.Data)
			assert.Equal(t, tc.code >= resp.CodeServerError, logged > 0)
		})
	}
}
