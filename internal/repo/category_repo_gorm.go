package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalog-service/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

var _ domain.CategoryStore = (*CategoryRepo)(nil)

func (r *CategoryRepo) first(q *gorm.DB) (*domain.Category, error) {
	var c domain.Category
	err := q.First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryRepo) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *CategoryRepo) FindDeletedByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.first(r.db.WithContext(ctx).Unscoped().Where("id = ? AND deleted_at IS NOT NULL", id))
}

func (r *CategoryRepo) FindByPath(ctx context.Context, path string) (*domain.Category, error) {
	return r.first(r.db.WithContext(ctx).Where("path = ?", path))
}

func (r *CategoryRepo) FindByPaths(ctx context.Context, paths []string) ([]domain.Category, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	var cs []domain.Category
	err := r.db.WithContext(ctx).
		Where("path IN ?", paths).
		Order("level ASC").
		Find(&cs).Error
	return cs, translate(err)
}

func (r *CategoryRepo) FindByPathPrefix(ctx context.Context, prefix string) ([]domain.Category, error) {
	var cs []domain.Category
	err := r.db.WithContext(ctx).
		Where("path LIKE ? ESCAPE '!'", escapeLike(prefix)+domain.PathSeparator+"%").
		Order("level ASC, sort_order ASC").
		Find(&cs).Error
	return cs, translate(err)
}

func (r *CategoryRepo) FindByParents(ctx context.Context, parentIDs []string, includeInactive bool) ([]domain.Category, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).Where("parent_id IN ?", parentIDs)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var cs []domain.Category
	err := q.Order("sort_order ASC, name ASC").Find(&cs).Error
	return cs, translate(err)
}

func (r *CategoryRepo) FindByLevel(ctx context.Context, level int, includeInactive bool) ([]domain.Category, error) {
	q := r.db.WithContext(ctx).Where("level = ?", level)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var cs []domain.Category
	err := q.Order("sort_order ASC, name ASC").Find(&cs).Error
	return cs, translate(err)
}

func (r *CategoryRepo) ExistsPath(ctx context.Context, path, excludeID string) (bool, error) {
	if path == "" {
		return false, nil
	}
	q := r.db.WithContext(ctx).Model(&domain.Category{}).Where("path = ?", path)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

const listOrder = "level ASC, sort_order ASC, name ASC"

// 搜索相关度：名称完全相同 < 名称前缀 < 名称包含 < 仅描述命中
const relevanceOrder = "CASE WHEN LOWER(name) = ? THEN 0 " +
	"WHEN LOWER(name) LIKE ? ESCAPE '!' THEN 1 " +
	"WHEN LOWER(name) LIKE ? ESCAPE '!' THEN 2 ELSE 3 END, " + listOrder

func (r *CategoryRepo) List(ctx context.Context, f domain.CategoryFilter) ([]domain.Category, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Category{})
	if f.Level != nil {
		q = q.Where("level = ?", *f.Level)
	}
	if f.ParentID != nil {
		q = q.Where("parent_id = ?", *f.ParentID)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	contains := "%" + escapeLike(term) + "%"
	if term != "" {
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", contains, contains)
	}
	// Count 与 Find 复用同一条件链
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	list := q
	if term != "" {
		// 整个 ORDER BY 放在一个表达式里，避免与后续 Order 合并时丢失
		list = list.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                relevanceOrder,
			Vars:               []any{term, escapeLike(term) + "%", contains},
			WithoutParentheses: true,
		}})
	} else {
		list = list.Order(listOrder)
	}
	var cs []domain.Category
	if err := list.Offset(f.Offset).Limit(f.Limit).Find(&cs).Error; err != nil {
		return nil, 0, translate(err)
	}
	return cs, total, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

// Save 全字段更新（含零值，如 is_active=false / sort_order=0）
func (r *CategoryRepo) Save(ctx context.Context, c *domain.Category) error {
	return translate(r.db.WithContext(ctx).
		Model(c).
		Select("*").
		Omit("id", "created_at").
		Updates(c).Error)
}

// SaveBatch 以 upsert 方式批量写回层级字段，冲突键为主键
func (r *CategoryRepo) SaveBatch(ctx context.Context, cs []domain.Category) error {
	if len(cs) == 0 {
		return nil
	}
	now := time.Now()
	for i := range cs {
		cs[i].UpdatedAt = now
	}
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"path", "ancestors", "level", "updated_at"}),
		}).
		Create(&cs).Error)
}

func (r *CategoryRepo) SoftDelete(ctx context.Context, id string) error {
	return translate(r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Category{}).Error)
}

func (r *CategoryRepo) Restore(ctx context.Context, c *domain.Category) error {
	c.DeletedAt = gorm.DeletedAt{}
	return translate(r.db.WithContext(ctx).
		Unscoped().
		Model(c).
		Select("*").
		Omit("id", "created_at").
		Updates(c).Error)
}
