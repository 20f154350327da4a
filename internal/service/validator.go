package service

import (
	"context"
	"fmt"

	"catalog-service/internal/domain"
	"catalog-service/pkg/utils"
)

const (
	maxNameLen = 100

	msgInvalidSlug      = "Generated slug is empty - invalid name provided"
	msgParentNotFound   = "Parent category not found"
	msgInvalidParentID  = "Invalid parent ID format"
	msgLevelRange       = "Level must be between 0 and 2"
	msgRootWithParent   = "Root level categories (level 0) cannot have a parent"
	msgChildNoParent    = "Non-root categories must have a parent"
	msgNameTooLong      = "Name must be at most 100 characters"
	msgOwnParent        = "Category cannot be its own parent"
	msgCycle            = "Cannot set a descendant category as parent (would create a cycle)"
	msgSubtreeTooDeep   = "Move would place subcategories below level 2"
	msgNotFoundOrActive = "Category with ID %s not found or not deleted"
)

// ParentInfo 父节点上与层级计算相关的字段
type ParentInfo struct {
	ID        string
	Level     int
	Path      string
	Ancestors []string
}

// ParentCheck Valid 为 false 时 Error 给出原因
type ParentCheck struct {
	Valid  bool
	Parent *ParentInfo
	Error  string
}

// HierarchyValidator 层级规则校验。返回消息列表而不是 error，便于一次性汇总全部问题；
// 只有存储故障才返回 error。
type HierarchyValidator struct {
	store domain.CategoryStore
}

func NewHierarchyValidator(store domain.CategoryStore) *HierarchyValidator {
	return &HierarchyValidator{store: store}
}

func (v *HierarchyValidator) ValidateLevel(level int) []string {
	if level < domain.LevelBrand || level > domain.MaxLevel {
		return []string{msgLevelRange}
	}
	return nil
}

func (v *HierarchyValidator) ValidateRootConstraints(level int, parentID *string) []string {
	switch {
	case level == domain.LevelBrand && parentID != nil:
		return []string{msgRootWithParent}
	case level > domain.LevelBrand && parentID == nil:
		return []string{msgChildNoParent}
	}
	return nil
}

func (v *HierarchyValidator) ValidateParentExists(ctx context.Context, parentID string) (ParentCheck, error) {
	if !utils.IsID(parentID) {
		return ParentCheck{Error: msgInvalidParentID}, nil
	}
	p, err := v.store.FindByID(ctx, parentID)
	if err != nil {
		return ParentCheck{}, err
	}
	if p == nil {
		return ParentCheck{Error: msgParentNotFound}, nil
	}
	return ParentCheck{
		Valid:  true,
		Parent: &ParentInfo{ID: p.ID, Level: p.Level, Path: p.Path, Ancestors: p.Ancestors},
	}, nil
}

func (v *HierarchyValidator) ValidateParentLevel(parentLevel, childLevel int) []string {
	if parentLevel != childLevel-1 {
		return []string{fmt.Sprintf("Parent category must be at level %d for a level %d category", childLevel-1, childLevel)}
	}
	return nil
}
