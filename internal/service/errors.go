package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"catalog-service/internal/domain"
	"catalog-service/pkg/utils"
)

type Code string

const (
	CodeInvalidSlug      Code = "INVALID_SLUG"
	CodeInvalidHierarchy Code = "INVALID_HIERARCHY"
	CodeCategoryNotFound Code = "CATEGORY_NOT_FOUND"
	CodeParentNotFound   Code = "PARENT_NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodeRefused          Code = "OPERATION_REFUSED"
	CodeInternal         Code = "CATEGORY_ERROR"
)

// Error 业务错误；errors.Is 按 Code 比较，可直接和下面的哨兵值比对
type Error struct {
	Code    Code
	Message string
	Reasons []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidSlug, CodeInvalidHierarchy:
		return http.StatusBadRequest
	case CodeCategoryNotFound, CodeParentNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeRefused:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Details 附带给调用方的结构化信息：错误码与校验原因
func (e *Error) Details() any {
	d := map[string]any{"error": string(e.Code)}
	if len(e.Reasons) > 0 {
		d["errors"] = e.Reasons
	}
	return d
}

// PublicMessage 不含底层 cause，可直接返回给调用方
func (e *Error) PublicMessage() string { return e.Message }

var (
	ErrInvalidSlug       = &Error{Code: CodeInvalidSlug, Message: msgInvalidSlug}
	ErrInvalidHierarchy  = &Error{Code: CodeInvalidHierarchy, Message: "Invalid hierarchy"}
	ErrCategoryNotFound  = &Error{Code: CodeCategoryNotFound, Message: "Category not found"}
	ErrParentNotFound    = &Error{Code: CodeParentNotFound, Message: msgParentNotFound}
	ErrConflict          = &Error{Code: CodeConflict, Message: "Path was claimed by a concurrent write, retry the request"}
	ErrOperationRefused  = &Error{Code: CodeRefused, Message: "Operation refused"}
	ErrCategoryOperation = &Error{Code: CodeInternal, Message: "Category operation failed"}
)

// CategoryNotFound 上层对不可见的分类也返回同一个错误
func CategoryNotFound(id string) error {
	return &Error{Code: CodeCategoryNotFound, Message: fmt.Sprintf("Category with ID %s not found", id)}
}

func CategoryPathNotFound(path string) error {
	return &Error{Code: CodeCategoryNotFound, Message: "Category with path " + path + " not found"}
}

func parentNotFound(id string) error {
	return &Error{Code: CodeParentNotFound, Message: fmt.Sprintf("Parent category with ID %s not found", id)}
}

func invalidHierarchy(reasons []string) error {
	return &Error{
		Code:    CodeInvalidHierarchy,
		Message: "Invalid hierarchy: " + strings.Join(reasons, ", "),
		Reasons: reasons,
	}
}

func refused(msg string) error { return &Error{Code: CodeRefused, Message: msg} }

func slugError(err error) error {
	if errors.Is(err, utils.ErrInvalidSlug) {
		return &Error{Code: CodeInvalidSlug, Message: msgInvalidSlug, cause: err}
	}
	return err
}

// wrap 把存储层错误归类成业务错误，已是 *Error 的原样返回
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrTxConflict) {
		return &Error{Code: CodeConflict, Message: ErrConflict.Message, cause: err}
	}
	return &Error{Code: CodeInternal, Message: "Failed to " + op + " category", cause: err}
}
