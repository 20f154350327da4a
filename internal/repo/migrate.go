package repo

import (
	"gorm.io/gorm"

	"catalog-service/internal/domain"
)

// Migrate 建表 + path 的部分唯一索引（只约束未软删的行）。
// mysql 不支持部分索引，只保留普通索引，唯一性由事务内的校验保证。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Category{}, &domain.Product{}); err != nil {
		return err
	}
	switch db.Dialector.Name() {
	case "postgres", "sqlite":
		return db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_path_live ON categories (path) WHERE deleted_at IS NULL").Error
	}
	return nil
}
