package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// 层级固定为三层：品牌 / 分类 / 子分类
const (
	LevelBrand       = 0
	LevelCategory    = 1
	LevelSubcategory = 2
	MaxLevel         = LevelSubcategory

	PathSeparator = "/"
)

// Category 自引用树节点，path 为物化路径，ancestors 为祖先路径列表（根到直接父级）
type Category struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	ParentID    *string        `gorm:"size:36;index:idx_categories_parent_sort,priority:1" json:"parentId"`
	Level       int            `gorm:"not null;index:idx_categories_level_active_sort,priority:1" json:"level"`
	Path        string         `gorm:"size:768;not null;index:idx_categories_path" json:"path"`
	Ancestors   []string       `gorm:"type:text;serializer:json" json:"ancestors"`
	IsActive    bool           `gorm:"not null;index:idx_categories_level_active_sort,priority:2" json:"isActive"`
	SortOrder   int            `gorm:"not null;index:idx_categories_parent_sort,priority:2;index:idx_categories_level_active_sort,priority:3" json:"sortOrder"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deletedAt"`
}

func (Category) TableName() string { return "categories" }

// TreeNode 树查询结果节点
type TreeNode struct {
	Category
	Children []TreeNode `json:"children"`
}

// CategoryFilter 列表查询条件（store 层，已换算 offset）
type CategoryFilter struct {
	Offset   int
	Limit    int
	Level    *int
	ParentID *string
	IsActive *bool
	Search   string
}

// Page 分页结果
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// CategoryStore 只对未软删的数据生效，除非方法名另有说明。
// 查找类方法未命中时返回 (nil, nil)。
type CategoryStore interface {
	FindByID(ctx context.Context, id string) (*Category, error)
	FindDeletedByID(ctx context.Context, id string) (*Category, error)
	FindByPath(ctx context.Context, path string) (*Category, error)
	// FindByPaths 按 level 升序
	FindByPaths(ctx context.Context, paths []string) ([]Category, error)
	// FindByPathPrefix 返回 path 以 prefix+"/" 开头的全部节点，按 (level, sort_order) 排序
	FindByPathPrefix(ctx context.Context, prefix string) ([]Category, error)
	FindByParents(ctx context.Context, parentIDs []string, includeInactive bool) ([]Category, error)
	FindByLevel(ctx context.Context, level int, includeInactive bool) ([]Category, error)
	ExistsPath(ctx context.Context, path, excludeID string) (bool, error)
	List(ctx context.Context, f CategoryFilter) ([]Category, int64, error)

	Create(ctx context.Context, c *Category) error
	Save(ctx context.Context, c *Category) error
	// SaveBatch 一条语句写回 path/ancestors/level
	SaveBatch(ctx context.Context, cs []Category) error
	SoftDelete(ctx context.Context, id string) error
	// Restore 清除 deleted_at 并写回重新计算的层级字段
	Restore(ctx context.Context, c *Category) error
}

// Catalog 聚合仓储，Transaction 内拿到的是绑定同一事务的实例
type Catalog interface {
	Categories() CategoryStore
	Products() ProductCounter
	Transaction(ctx context.Context, fn func(tx Catalog) error) error
}
