package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Product 只建模到删除保护需要的程度，商品 CRUD 由其他服务负责
type Product struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	Title      string         `gorm:"size:200;not null" json:"title"`
	Categories []Category     `gorm:"many2many:product_categories;" json:"-"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string { return "products" }

type ProductCounter interface {
	// CountByCategory 统计引用该分类的未删除商品数
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
}
