package router

import (
	"slices"
	"sync"

	"github.com/gin-gonic/gin"
)

// 模块可实现其中一个或两个接口
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 实现 Priority 可控制挂载顺序（小的先挂），默认 100
type prioritizer interface{ Priority() int }

// Registry 收集各功能模块，构造引擎时一次性挂载
type Registry struct {
	mu    sync.Mutex
	api   []APIModule
	admin []AdminModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	r.Register(mods...)
	return r
}

// Register 按实现的接口分发；两个都没实现的模块被忽略
func (r *Registry) Register(mods ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mod := range mods {
		if m, ok := mod.(APIModule); ok {
			r.api = append(r.api, m)
		}
		if m, ok := mod.(AdminModule); ok {
			r.admin = append(r.admin, m)
		}
	}
}

func (r *Registry) MountAPI(g *gin.RouterGroup) {
	for _, m := range sorted(r, r.api) {
		m.MountAPI(g)
	}
}

func (r *Registry) MountAdmin(g *gin.RouterGroup) {
	for _, m := range sorted(r, r.admin) {
		m.MountAdmin(g)
	}
}

func sorted[M any](r *Registry, mods []M) []M {
	r.mu.Lock()
	out := slices.Clone(mods)
	r.mu.Unlock()
	slices.SortStableFunc(out, func(a, b M) int { return priorityOf(a) - priorityOf(b) })
	return out
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
