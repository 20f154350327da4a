package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catalog-service/internal/repo"
	"catalog-service/internal/repo/repotest"
	"catalog-service/internal/service"
	"catalog-service/internal/transport/http/handler"
	resp "catalog-service/internal/transport/http/response"
)

type env struct {
	t *testing.T
	r *gin.Engine
}

func newEnv(t *testing.T) *env {
	gin.SetMode(gin.TestMode)
	db := repotest.Open(t)
	svc := service.NewCategoryService(repo.NewCatalog(db), service.Config{}, zap.NewNop())
	h := handler.NewCategoryHandler(svc)
	r := gin.New()
	h.MountAPI(r.Group("/api/v1"))
	h.MountAdmin(r.Group("/admin/v1"))
	return &env{t: t, r: r}
}

// call 返回信封，data 解到 out（可为 nil）
func (e *env) call(method, target, body string, out any) resp.Resp {
	e.t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	e.r.ServeHTTP(w, req)
	require.Equal(e.t, http.StatusOK, w.Code)

	var raw struct {
		Code int             `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &raw))
	if out != nil {
		require.NoError(e.t, json.Unmarshal(raw.Data, out), string(raw.Data))
	}
	var data any
	require.NoError(e.t, json.Unmarshal(raw.Data, &data))
	return resp.Resp{Code: raw.Code, Msg: raw.Msg, Data: data}
}

type cat struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ParentID  *string  `json:"parentId"`
	Level     int      `json:"level"`
	Path      string   `json:"path"`
	Ancestors []string `json:"ancestors"`
	IsActive  bool     `json:"isActive"`
}

func (e *env) create(body string) cat {
	e.t.Helper()
	var c cat
	res := e.call(http.MethodPost, "/admin/v1/categories", body, &c)
	require.Equal(e.t, resp.CodeOK, res.Code, res.Msg)
	return c
}

func TestCategoryHandler_CreateAndRead(t *testing.T) {
	e := newEnv(t)
	nike := e.create(`{"name":"Nike","level":0}`)
	shoes := e.create(`{"name":"Running Shoes","level":1,"parentId":"` + nike.ID + `"}`)
	assert.Equal(t, "nike/running-shoes", shoes.Path)
	assert.Equal(t, []string{"nike"}, shoes.Ancestors)
	assert.True(t, shoes.IsActive)

	var got cat
	res := e.call(http.MethodGet, "/api/v1/categories/"+shoes.ID, "", &got)
	assert.Equal(t, resp.CodeOK, res.Code)
	assert.Equal(t, shoes.ID, got.ID)

	res = e.call(http.MethodGet, "/api/v1/categories/by-path/nike/running-shoes", "", &got)
	assert.Equal(t, resp.CodeOK, res.Code)
	assert.Equal(t, shoes.ID, got.ID)

	var anc []cat
	e.call(http.MethodGet, "/api/v1/categories/"+shoes.ID+"/ancestors", "", &anc)
	require.Len(t, anc, 1)
	assert.Equal(t, nike.ID, anc[0].ID)

	var desc []cat
	e.call(http.MethodGet, "/api/v1/categories/"+nike.ID+"/descendants", "", &desc)
	require.Len(t, desc, 1)

	var page struct {
		Data       []cat `json:"data"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
	}
	e.call(http.MethodGet, "/api/v1/categories?search=shoes&limit=1", "", &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Running Shoes", page.Data[0].Name)

	var tree []struct {
		cat
		Children []struct {
			cat
		} `json:"children"`
	}
	e.call(http.MethodGet, "/api/v1/categories/tree", "", &tree)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, shoes.ID, tree[0].Children[0].ID)
}

func TestCategoryHandler_Errors(t *testing.T) {
	e := newEnv(t)
	nike := e.create(`{"name":"Nike","level":0}`)

	res := e.call(http.MethodPost, "/admin/v1/categories", `{"name":"Nike","level":0}`, nil)
	assert.Equal(t, resp.CodeBadRequest, res.Code)
	assert.Equal(t, "INVALID_HIERARCHY", res.Data.(map[string]any)["error"])

	res = e.call(http.MethodPost, "/admin/v1/categories", `{"name":"!!!","level":5,"parentId":"x"}`, nil)
	assert.Equal(t, resp.CodeBadRequest, res.Code)
	assert.Len(t, res.Data.(map[string]any)["errors"], 3)

	res = e.call(http.MethodPost, "/admin/v1/categories", `{"name":"No Level"}`, nil)
	assert.Equal(t, resp.CodeBadRequest, res.Code, "level is required")

	res = e.call(http.MethodGet, "/api/v1/categories/missing", "", nil)
	assert.Equal(t, resp.CodeNotFound, res.Code)
	assert.Equal(t, "Category with ID missing not found", res.Msg)

	e.create(`{"name":"Shoes","level":1,"parentId":"` + nike.ID + `"}`)
	res = e.call(http.MethodDelete, "/admin/v1/categories/"+nike.ID, "", nil)
	assert.Equal(t, resp.CodeConflict, res.Code)
	assert.Equal(t, "Cannot delete category with 1 subcategories. Delete subcategories first.", res.Msg)

	res = e.call(http.MethodGet, "/api/v1/categories/by-path/", "", nil)
	assert.Equal(t, resp.CodeBadRequest, res.Code)

	res = e.call(http.MethodGet, "/api/v1/categories/tree?rootLevel=7", "", nil)
	assert.Equal(t, resp.CodeBadRequest, res.Code)
}

func TestCategoryHandler_UpdateDeleteRestore(t *testing.T) {
	e := newEnv(t)
	nike := e.create(`{"name":"Nike","level":0}`)
	adidas := e.create(`{"name":"Adidas","level":0}`)
	shoes := e.create(`{"name":"Shoes","level":1,"parentId":"` + nike.ID + `"}`)

	var moved cat
	res := e.call(http.MethodPut, "/admin/v1/categories/"+shoes.ID, `{"parentId":"`+adidas.ID+`"}`, &moved)
	require.Equal(t, resp.CodeOK, res.Code, res.Msg)
	assert.Equal(t, "adidas/shoes", moved.Path)

	res = e.call(http.MethodPut, "/admin/v1/categories/"+shoes.ID, `{"parentId":null,"level":0}`, &moved)
	require.Equal(t, resp.CodeOK, res.Code, res.Msg)
	assert.Equal(t, "shoes", moved.Path)
	assert.Nil(t, moved.ParentID)

	res = e.call(http.MethodPut, "/admin/v1/categories/"+shoes.ID, `{"isActive":false}`, &moved)
	require.Equal(t, resp.CodeOK, res.Code, res.Msg)
	assert.False(t, moved.IsActive)

	var del struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	}
	res = e.call(http.MethodDelete, "/admin/v1/categories/"+shoes.ID, "", &del)
	require.Equal(t, resp.CodeOK, res.Code, res.Msg)
	assert.True(t, del.Deleted)

	res = e.call(http.MethodGet, "/api/v1/categories/"+shoes.ID, "", nil)
	assert.Equal(t, resp.CodeNotFound, res.Code)

	var restored cat
	res = e.call(http.MethodPost, "/admin/v1/categories/"+shoes.ID+"/restore", "", &restored)
	require.Equal(t, resp.CodeOK, res.Code, res.Msg)
	assert.Equal(t, "shoes", restored.Path)

	res = e.call(http.MethodPost, "/admin/v1/categories/"+shoes.ID+"/restore", "", nil)
	assert.Equal(t, resp.CodeNotFound, res.Code)
}

func TestCategoryHandler_Validate(t *testing.T) {
	e := newEnv(t)
	nike := e.create(`{"name":"Nike","level":0}`)

	var vr service.ValidationResult
	res := e.call(http.MethodPost, "/admin/v1/categories/validate", `{"name":"Shoes","level":1,"parentId":"`+nike.ID+`"}`, &vr)
	require.Equal(t, resp.CodeOK, res.Code)
	assert.True(t, vr.Valid)
	assert.Empty(t, vr.Errors)

	res = e.call(http.MethodPost, "/admin/v1/categories/validate", `{"name":"Nike","level":1}`, &vr)
	require.Equal(t, resp.CodeOK, res.Code)
	assert.False(t, vr.Valid)
	assert.Contains(t, vr.Errors, "Non-root categories must have a parent")
}

type page struct {
	Data  []cat `json:"data"`
	Total int64 `json:"total"`
}

func TestCategoryHandler_PublicHidesInactive(t *testing.T) {
	e := newEnv(t)
	nike := e.create(`{"name":"Nike","level":0}`)
	shoes := e.create(`{"name":"Shoes","level":1,"parentId":"` + nike.ID + `"}`)
	bags := e.create(`{"name":"Bags","level":1,"parentId":"` + nike.ID + `"}`)
	totes := e.create(`{"name":"Totes","level":2,"parentId":"` + bags.ID + `"}`)
	res := e.call(http.MethodPut, "/admin/v1/categories/"+bags.ID, `{"isActive":false}`, nil)
	require.Equal(t, resp.CodeOK, res.Code, res.Msg)

	var p page
	e.call(http.MethodGet, "/api/v1/categories?isActive=false", "", &p)
	assert.Zero(t, p.Total, "public list ignores isActive=false")
	e.call(http.MethodGet, "/api/v1/categories?limit=10", "", &p)
	assert.Equal(t, int64(3), p.Total)

	var tree []struct {
		cat
		Children []cat `json:"children"`
	}
	e.call(http.MethodGet, "/api/v1/categories/tree?includeInactive=true", "", &tree)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, shoes.ID, tree[0].Children[0].ID)

	res = e.call(http.MethodGet, "/api/v1/categories/"+bags.ID, "", nil)
	assert.Equal(t, resp.CodeNotFound, res.Code)
	assert.Equal(t, "Category with ID "+bags.ID+" not found", res.Msg)
	res = e.call(http.MethodGet, "/api/v1/categories/by-path/nike/bags", "", nil)
	assert.Equal(t, resp.CodeNotFound, res.Code)
	assert.Equal(t, "Category with path nike/bags not found", res.Msg)
	res = e.call(http.MethodGet, "/api/v1/categories/"+bags.ID+"/descendants", "", nil)
	assert.Equal(t, resp.CodeNotFound, res.Code)

	var desc []cat
	e.call(http.MethodGet, "/api/v1/categories/"+nike.ID+"/descendants", "", &desc)
	ids := make([]string, 0, len(desc))
	for _, d := range desc {
		ids = append(ids, d.ID)
	}
	assert.ElementsMatch(t, []string{shoes.ID, totes.ID}, ids)
}

func TestCategoryHandler_AdminReadsIncludeInactive(t *testing.T) {
	e := newEnv(t)
	nike := e.create(`{"name":"Nike","level":0}`)
	bags := e.create(`{"name":"Bags","level":1,"parentId":"` + nike.ID + `"}`)
	res := e.call(http.MethodPut, "/admin/v1/categories/"+bags.ID, `{"isActive":false}`, nil)
	require.Equal(t, resp.CodeOK, res.Code, res.Msg)

	var p page
	e.call(http.MethodGet, "/admin/v1/categories?isActive=false", "", &p)
	require.Equal(t, int64(1), p.Total)
	assert.Equal(t, bags.ID, p.Data[0].ID)

	var tree []struct {
		cat
		Children []cat `json:"children"`
	}
	e.call(http.MethodGet, "/admin/v1/categories/tree?includeInactive=true", "", &tree)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.False(t, tree[0].Children[0].IsActive)

	var got cat
	res = e.call(http.MethodGet, "/admin/v1/categories/by-path/nike/bags", "", &got)
	require.Equal(t, resp.CodeOK, res.Code, res.Msg)
	assert.Equal(t, bags.ID, got.ID)
	res = e.call(http.MethodGet, "/admin/v1/categories/"+bags.ID, "", &got)
	require.Equal(t, resp.CodeOK, res.Code, res.Msg)
	assert.False(t, got.IsActive)
}
