package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"catalog-service/internal/domain"
)

// Catalog 基于 gorm 的聚合仓储
type Catalog struct {
	db     *gorm.DB
	txOpts *sql.TxOptions
}

type Option func(*Catalog)

// WithIsolation 设置事务隔离级别，空串或 default 表示使用数据库默认值
func WithIsolation(level string) Option {
	return func(c *Catalog) {
		if lvl, ok := isolationLevels[strings.ToLower(strings.TrimSpace(level))]; ok {
			c.txOpts = &sql.TxOptions{Isolation: lvl}
		}
	}
}

var isolationLevels = map[string]sql.IsolationLevel{
	"read_committed":  sql.LevelReadCommitted,
	"repeatable_read": sql.LevelRepeatableRead,
	"serializable":    sql.LevelSerializable,
}

// ParseIsolation 校验配置值
func ParseIsolation(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" || level == "default" {
		return nil
	}
	if _, ok := isolationLevels[level]; !ok {
		return fmt.Errorf("unsupported tx isolation %q", level)
	}
	return nil
}

func NewCatalog(db *gorm.DB, opts ...Option) *Catalog {
	c := &Catalog{db: db}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ domain.Catalog = (*Catalog)(nil)

func (c *Catalog) Categories() domain.CategoryStore { return NewCategoryRepo(c.db) }

func (c *Catalog) Products() domain.ProductCounter { return NewProductRepo(c.db) }

// Transaction fn 返回的错误原样透出；开启/提交失败的错误会被归类
func (c *Catalog) Transaction(ctx context.Context, fn func(tx domain.Catalog) error) error {
	var fnErr error
	run := func(tx *gorm.DB) error {
		fnErr = fn(&Catalog{db: tx, txOpts: c.txOpts})
		return fnErr
	}
	var err error
	if c.txOpts != nil {
		err = c.db.WithContext(ctx).Transaction(run, c.txOpts)
	} else {
		err = c.db.WithContext(ctx).Transaction(run)
	}
	if fnErr != nil {
		return fnErr
	}
	return translate(err)
}
