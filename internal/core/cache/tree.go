package cache

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/domain"
)

const treeKeyPrefix = "catalog:tree:v1"

// TreeCache 按 (rootLevel, includeInactive) 缓存整棵树，任何写入后整体删除
type TreeCache struct {
	c   *Cache
	ttl time.Duration
}

func NewTreeCache(c *Cache, ttl time.Duration) *TreeCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TreeCache{c: c, ttl: ttl}
}

func treeKey(rootLevel int, includeInactive bool) string {
	return fmt.Sprintf("%s:%d:%t", treeKeyPrefix, rootLevel, includeInactive)
}

func treeKeys() []string {
	keys := make([]string, 0, 2*(domain.MaxLevel+1))
	for lvl := domain.LevelBrand; lvl <= domain.MaxLevel; lvl++ {
		keys = append(keys, treeKey(lvl, false), treeKey(lvl, true))
	}
	return keys
}

func (t *TreeCache) Tree(ctx context.Context, rootLevel int, includeInactive bool, load func(context.Context) ([]domain.TreeNode, error)) ([]domain.TreeNode, error) {
	return GetOrLoadJSON(t.c, ctx, treeKey(rootLevel, includeInactive), t.ttl, load)
}

func (t *TreeCache) Invalidate(ctx context.Context) error {
	return t.c.Del(ctx, treeKeys()...)
}
