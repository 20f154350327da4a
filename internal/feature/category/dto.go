package category

import (
	"bytes"
	"encoding/json"

	"catalog-service/internal/service"
)

// OptionalID 区分 JSON 中字段缺省、显式 null 与字符串
type OptionalID struct {
	Set   bool
	Value *string
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type CreateReq struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId"`
	Level       *int    `json:"level" binding:"required"`
	SortOrder   int     `json:"sortOrder"`
}

func (r CreateReq) Input() service.CreateInput {
	return service.CreateInput{
		Name:        r.Name,
		Description: r.Description,
		ParentID:    r.ParentID,
		Level:       *r.Level,
		SortOrder:   r.SortOrder,
	}
}

// UpdateReq parentId 缺省表示不动，null 表示移到根级
type UpdateReq struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	ParentID    OptionalID `json:"parentId"`
	Level       *int       `json:"level"`
	SortOrder   *int       `json:"sortOrder"`
	IsActive    *bool      `json:"isActive"`
}

func (r UpdateReq) Patch() service.Patch {
	return service.Patch{
		Name:        r.Name,
		Description: r.Description,
		ParentID:    r.ParentID.Value,
		SetParent:   r.ParentID.Set,
		Level:       r.Level,
		SortOrder:   r.SortOrder,
		IsActive:    r.IsActive,
	}
}

type ValidateReq struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
	Level    int     `json:"level"`
}

func (r ValidateReq) Input() service.HierarchyInput {
	return service.HierarchyInput{ID: r.ID, Name: r.Name, ParentID: r.ParentID, Level: r.Level}
}

type ListQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Level    *int   `form:"level"`
	ParentID string `form:"parentId"`
	IsActive *bool  `form:"isActive"`
	Search   string `form:"search"`
}

func (q ListQuery) Options() service.ListOptions {
	o := service.ListOptions{
		Page:     q.Page,
		Limit:    q.Limit,
		Level:    q.Level,
		IsActive: q.IsActive,
		Search:   q.Search,
	}
	if q.ParentID != "" {
		o.ParentID = &q.ParentID
	}
	return o
}

type TreeQuery struct {
	RootLevel       int  `form:"rootLevel"`
	IncludeInactive bool `form:"includeInactive"`
}

type DeleteResp struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
