package service

import (
	"context"

	"catalog-service/internal/domain"
)

// TreeCache 树查询结果缓存，写操作提交后整体失效
type TreeCache interface {
	Tree(ctx context.Context, rootLevel int, includeInactive bool, load func(context.Context) ([]domain.TreeNode, error)) ([]domain.TreeNode, error)
	Invalidate(ctx context.Context) error
}

type noCache struct{}

func (noCache) Tree(ctx context.Context, _ int, _ bool, load func(context.Context) ([]domain.TreeNode, error)) ([]domain.TreeNode, error) {
	return load(ctx)
}

func (noCache) Invalidate(context.Context) error { return nil }
