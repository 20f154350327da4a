package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	resp "catalog-service/internal/transport/http/response"
)

// EZ 对 RouterGroup 的轻封装
type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // 处理函数自己从 c.Param 取
)

// AErr 处理函数可直接返回的统一错误
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }

// 领域错误只要实现这些方法即可映射，ez 不依赖具体的 service 包
type (
	statusCoder   interface{ HTTPStatus() int }
	detailer      interface{ Details() any }
	publicMessage interface{ PublicMessage() string }
)

// Action 一个非 CRUD 接口：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // GET | POST | PUT | DELETE
	Path    string // 如 /categories/:id/restore
	Binder  Binder
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// WriteError 把错误映射成统一信封；5xx 的底层原因只进日志（c.Errors）
func WriteError(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= resp.CodeServerError {
			_ = c.Error(err)
		}
		c.JSON(http.StatusOK, resp.Error(ae.Code, ae.Error()))
		return
	}

	var sc statusCoder
	if !errors.As(err, &sc) {
		_ = c.Error(err)
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, ""))
		return
	}
	code := sc.HTTPStatus()
	msg := err.Error()
	if pm, ok := sc.(publicMessage); ok {
		msg = pm.PublicMessage()
	}
	var data any
	if d, ok := sc.(detailer); ok {
		data = d.Details()
	}
	if code >= resp.CodeServerError {
		_ = c.Error(err)
	}
	c.JSON(http.StatusOK, resp.ErrorWithData(code, msg, data))
}
