package repo

import (
	"context"

	"gorm.io/gorm"

	"catalog-service/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

var _ domain.ProductCounter = (*ProductRepo)(nil)

func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Joins("JOIN product_categories pc ON pc.product_id = products.id").
		Where("pc.category_id = ?", categoryID).
		Count(&n).Error
	return n, translate(err)
}
