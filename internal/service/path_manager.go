package service

import (
	"context"
	"strings"

	"catalog-service/internal/domain"
	"catalog-service/pkg/utils"
)

// PathManager 维护物化路径与祖先列表
type PathManager struct {
	store domain.CategoryStore
}

func NewPathManager(store domain.CategoryStore) *PathManager {
	return &PathManager{store: store}
}

func (m *PathManager) parent(ctx context.Context, parentID *string) (*domain.Category, error) {
	if parentID == nil {
		return nil, nil
	}
	p, err := m.store.FindByID(ctx, *parentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, parentNotFound(*parentID)
	}
	return p, nil
}

// GenerateAncestors 根节点返回空列表，否则为 parent.ancestors ++ [parent.path]
func (m *PathManager) GenerateAncestors(ctx context.Context, parentID *string) ([]string, error) {
	p, err := m.parent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return []string{}, nil
	}
	return append(append(make([]string, 0, len(p.Ancestors)+1), p.Ancestors...), p.Path), nil
}

func (m *PathManager) GeneratePath(ctx context.Context, name string, parentID *string) (string, error) {
	slug, err := utils.Slugify(name)
	if err != nil {
		return "", slugError(err)
	}
	p, err := m.parent(ctx, parentID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return slug, nil
	}
	return joinPath(p.Path, slug), nil
}

func (m *PathManager) PathExists(ctx context.Context, path, excludeID string) (bool, error) {
	return m.store.ExistsPath(ctx, path, excludeID)
}

// UpdateDescendantPaths 把子树的路径前缀替换为 newPath，祖先列表随路径重算，level 整体平移 levelDelta。
// 必须在写入节点自身新路径之前调用（旧路径从存储里读）。
func (m *PathManager) UpdateDescendantPaths(ctx context.Context, categoryID, newPath string, levelDelta int) (int, error) {
	subject, err := m.store.FindByID(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	if subject == nil {
		return 0, CategoryNotFound(categoryID)
	}
	rows, err := m.store.FindByPathPrefix(ctx, subject.Path)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	for i := range rows {
		rows[i].Path = newPath + strings.TrimPrefix(rows[i].Path, subject.Path)
		rows[i].Ancestors = ancestorsOf(rows[i].Path)
		rows[i].Level += levelDelta
	}
	if err := m.store.SaveBatch(ctx, rows); err != nil {
		return 0, err
	}
	descendantsRewritten.Observe(float64(len(rows)))
	return len(rows), nil
}

// GetAncestors 按 level 从根到直接父级
func (m *PathManager) GetAncestors(ctx context.Context, id string) ([]domain.Category, error) {
	subject, err := m.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, CategoryNotFound(id)
	}
	if len(subject.Ancestors) == 0 {
		return []domain.Category{}, nil
	}
	cs, err := m.store.FindByPaths(ctx, subject.Ancestors)
	if err != nil {
		return nil, err
	}
	return nonNil(cs), nil
}

// GetDescendants 整棵子树，按 (level, sort_order)
func (m *PathManager) GetDescendants(ctx context.Context, id string) ([]domain.Category, error) {
	subject, err := m.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, CategoryNotFound(id)
	}
	cs, err := m.store.FindByPathPrefix(ctx, subject.Path)
	if err != nil {
		return nil, err
	}
	return nonNil(cs), nil
}

// IsDescendant candidateID 是否位于 id 的子树内
func (m *PathManager) IsDescendant(ctx context.Context, id, candidateID string) (bool, error) {
	desc, err := m.GetDescendants(ctx, id)
	if err != nil {
		return false, err
	}
	return containsID(desc, candidateID), nil
}

func joinPath(parentPath, slug string) string {
	if parentPath == "" {
		return slug
	}
	return parentPath + domain.PathSeparator + slug
}

// ancestorsOf slug 不含分隔符，因此祖先列表就是路径按分隔符切出的全部真前缀
func ancestorsOf(path string) []string {
	out := []string{}
	for i := 0; i < len(path); i++ {
		if path[i] == domain.PathSeparator[0] {
			out = append(out, path[:i])
		}
	}
	return out
}

func containsID(cs []domain.Category, id string) bool {
	for _, c := range cs {
		if c.ID == id {
			return true
		}
	}
	return false
}

func nonNil(cs []domain.Category) []domain.Category {
	if cs == nil {
		return []domain.Category{}
	}
	return cs
}
