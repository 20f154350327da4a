package service

import (
	"context"

	"catalog-service/internal/domain"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type ListOptions struct {
	Page     int
	Limit    int
	Level    *int
	ParentID *string
	IsActive *bool
	Search   string
}

// TreeQuery 只读查询：分页列表、树组装、点查
type TreeQuery struct {
	store        domain.CategoryStore
	defaultLimit int
	maxLimit     int
}

func NewTreeQuery(store domain.CategoryStore, defaultLimit, maxLimit int) *TreeQuery {
	if maxLimit <= 0 {
		maxLimit = MaxListLimit
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(DefaultListLimit, maxLimit)
	}
	return &TreeQuery{store: store, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

func (q *TreeQuery) List(ctx context.Context, o ListOptions) (domain.Page[domain.Category], error) {
	page := max(o.Page, 1)
	limit := o.Limit
	switch {
	case limit <= 0:
		limit = q.defaultLimit
	case limit > q.maxLimit:
		limit = q.maxLimit
	}
	cs, total, err := q.store.List(ctx, domain.CategoryFilter{
		Offset:   (page - 1) * limit,
		Limit:    limit,
		Level:    o.Level,
		ParentID: o.ParentID,
		IsActive: o.IsActive,
		Search:   o.Search,
	})
	if err != nil {
		return domain.Page[domain.Category]{}, err
	}
	return domain.Page[domain.Category]{
		Data:       nonNil(cs),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// BuildTree 每层一次查询（parent_id IN 上一层），再按父 id 索引组装。
// 未启用的节点连同其子树一起被过滤，除非 includeInactive。
func (q *TreeQuery) BuildTree(ctx context.Context, rootLevel int, includeInactive bool) ([]domain.TreeNode, error) {
	if rootLevel < domain.LevelBrand || rootLevel > domain.MaxLevel {
		return nil, invalidHierarchy([]string{msgLevelRange})
	}
	roots, err := q.store.FindByLevel(ctx, rootLevel, includeInactive)
	if err != nil {
		return nil, err
	}

	byParent := map[string][]domain.Category{}
	frontier := idsOf(roots)
	for lvl := rootLevel + 1; lvl <= domain.MaxLevel && len(frontier) > 0; lvl++ {
		kids, err := q.store.FindByParents(ctx, frontier, includeInactive)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0:0]
		for _, k := range kids {
			if k.ParentID == nil {
				continue
			}
			byParent[*k.ParentID] = append(byParent[*k.ParentID], k)
			frontier = append(frontier, k.ID)
		}
	}
	return assemble(roots, byParent), nil
}

func (q *TreeQuery) Get(ctx context.Context, id string) (*domain.Category, error) {
	c, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, CategoryNotFound(id)
	}
	return c, nil
}

func (q *TreeQuery) GetByPath(ctx context.Context, path string) (*domain.Category, error) {
	c, err := q.store.FindByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, CategoryPathNotFound(path)
	}
	return c, nil
}

func assemble(nodes []domain.Category, byParent map[string][]domain.Category) []domain.TreeNode {
	out := make([]domain.TreeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, domain.TreeNode{Category: n, Children: assemble(byParent[n.ID], byParent)})
	}
	return out
}

func idsOf(cs []domain.Category) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	return ids
}
