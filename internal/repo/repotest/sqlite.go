// Package repotest 为各层测试提供迁移好的 sqlite 数据库
package repotest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalog-service/internal/core/database"
	"catalog-service/internal/repo"
)

// Open 在 t.TempDir() 下建库并迁移。连接数固定为 1：事务内的读写必须走事务句柄。
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "catalog.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, repo.Migrate(db))
	return db
}

// LinkProduct 插入一个商品并关联到分类
func LinkProduct(t testing.TB, db *gorm.DB, productID, title, categoryID string) {
	t.Helper()
	require.NoError(t, db.Exec("INSERT INTO products (id, title, created_at, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)", productID, title).Error)
	require.NoError(t, db.Exec("INSERT INTO product_categories (product_id, category_id) VALUES (?, ?)", productID, categoryID).Error)
}
