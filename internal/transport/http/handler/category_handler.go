package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"catalog-service/internal/domain"
	"catalog-service/internal/feature/category"
	"catalog-service/internal/service"
	"catalog-service/internal/transport/http/ez"
)

// CategoryAPI handler 依赖的服务方法
type CategoryAPI interface {
	Create(ctx context.Context, in service.CreateInput) (*domain.Category, error)
	Update(ctx context.Context, id string, p service.Patch) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (*domain.Category, error)
	ValidateHierarchy(ctx context.Context, in service.HierarchyInput) (service.ValidationResult, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	GetByPath(ctx context.Context, path string) (*domain.Category, error)
	GetAncestors(ctx context.Context, id string) ([]domain.Category, error)
	GetDescendants(ctx context.Context, id string) ([]domain.Category, error)
	List(ctx context.Context, o service.ListOptions) (domain.Page[domain.Category], error)
	BuildTree(ctx context.Context, rootLevel int, includeInactive bool) ([]domain.TreeNode, error)
}

type CategoryHandler struct {
	svc CategoryAPI
}

func NewCategoryHandler(svc CategoryAPI) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) Priority() int { return 10 }

// MountAPI 公开只读接口：只暴露 isActive=true 的分类，树不含未启用的子树
func (h *CategoryHandler) MountAPI(g *gin.RouterGroup) {
	h.mountReads(ez.New(g), true)
}

// mountReads 读接口。activeOnly 时强制过滤未启用分类，点查命中未启用分类按不存在处理。
func (h *CategoryHandler) mountReads(e ez.EZ, activeOnly bool) {
	active := true

	ez.RegisterAction(e, ez.Action[category.ListQuery, domain.Page[domain.Category]]{
		Method: http.MethodGet,
		Path:   "/categories",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *category.ListQuery) (domain.Page[domain.Category], error) {
			o := in.Options()
			if activeOnly {
				o.IsActive = &active
			}
			return h.svc.List(c.Request.Context(), o)
		},
	})
	ez.RegisterAction(e, ez.Action[category.TreeQuery, []domain.TreeNode]{
		Method: http.MethodGet,
		Path:   "/categories/tree",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *category.TreeQuery) ([]domain.TreeNode, error) {
			return h.svc.BuildTree(c.Request.Context(), in.RootLevel, in.IncludeInactive && !activeOnly)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Category]{
		Method: http.MethodGet,
		Path:   "/categories/by-path/*path",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Category, error) {
			path := strings.Trim(c.Param("path"), "/")
			if path == "" {
				return nil, ez.BadRequest("path is required")
			}
			cat, err := h.svc.GetByPath(c.Request.Context(), path)
			if err != nil {
				return nil, err
			}
			if activeOnly && !cat.IsActive {
				return nil, service.CategoryPathNotFound(path)
			}
			return cat, nil
		},
	})
	// get 取单个分类，并按可见性过滤
	get := func(c *gin.Context) (*domain.Category, error) {
		id := c.Param("id")
		cat, err := h.svc.Get(c.Request.Context(), id)
		if err != nil {
			return nil, err
		}
		if activeOnly && !cat.IsActive {
			return nil, service.CategoryNotFound(id)
		}
		return cat, nil
	}
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Category]{
		Method: http.MethodGet,
		Path:   "/categories/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Category, error) {
			return get(c)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Category]{
		Method: http.MethodGet,
		Path:   "/categories/:id/ancestors",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Category, error) {
			if _, err := get(c); err != nil {
				return nil, err
			}
			out, err := h.svc.GetAncestors(c.Request.Context(), c.Param("id"))
			if err != nil || !activeOnly {
				return out, err
			}
			return onlyActive(out), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Category]{
		Method: http.MethodGet,
		Path:   "/categories/:id/descendants",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Category, error) {
			if _, err := get(c); err != nil {
				return nil, err
			}
			out, err := h.svc.GetDescendants(c.Request.Context(), c.Param("id"))
			if err != nil || !activeOnly {
				return out, err
			}
			return onlyActive(out), nil
		},
	})
}

func onlyActive(cs []domain.Category) []domain.Category {
	out := make([]domain.Category, 0, len(cs))
	for _, c := range cs {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

// MountAdmin 不过滤的读接口 + 写接口，分组已挂 AuthJWT("admin")
func (h *CategoryHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)
	h.mountReads(e, false)

	ez.RegisterAction(e, ez.Action[category.CreateReq, *domain.Category]{
		Method: http.MethodPost,
		Path:   "/categories",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *category.CreateReq) (*domain.Category, error) {
			return h.svc.Create(c.Request.Context(), in.Input())
		},
	})
	ez.RegisterAction(e, ez.Action[category.ValidateReq, service.ValidationResult]{
		Method: http.MethodPost,
		Path:   "/categories/validate",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *category.ValidateReq) (service.ValidationResult, error) {
			return h.svc.ValidateHierarchy(c.Request.Context(), in.Input())
		},
	})
	ez.RegisterAction(e, ez.Action[category.UpdateReq, *domain.Category]{
		Method: http.MethodPut,
		Path:   "/categories/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *category.UpdateReq) (*domain.Category, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), in.Patch())
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, category.DeleteResp]{
		Method: http.MethodDelete,
		Path:   "/categories/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (category.DeleteResp, error) {
			id := c.Param("id")
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return category.DeleteResp{}, err
			}
			return category.DeleteResp{ID: id, Deleted: true}, nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Category]{
		Method: http.MethodPost,
		Path:   "/categories/:id/restore",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Category, error) {
			return h.svc.Restore(c.Request.Context(), c.Param("id"))
		},
	})
}
