package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"catalog-service/internal/domain"
	"catalog-service/pkg/utils"
)

type CreateInput struct {
	Name        string
	Description string
	ParentID    *string
	Level       int
	SortOrder   int
}

// Patch 全部字段可选。ParentID 只在 SetParent 为 true 时生效，此时 nil 表示移到根级。
type Patch struct {
	Name        *string
	Description *string
	ParentID    *string
	SetParent   bool
	Level       *int
	SortOrder   *int
	IsActive    *bool
}

// 改名、改父级或改层级都会触发重新校验
func (p Patch) hierarchyAffecting() bool {
	return p.Name != nil || p.SetParent || p.Level != nil
}

// HierarchyInput 组合校验的输入；ID 非空表示针对已有分类（更新场景）
type HierarchyInput struct {
	ID       string
	Name     string
	ParentID *string
	Level    int
}

type Config struct {
	TxMaxRetries     uint64
	TxRetryBase      time.Duration
	ListDefaultLimit int
	ListMaxLimit     int
	Cache            TreeCache
}

// CategoryService 分类层级的写操作编排（事务 + 校验 + 路径维护）与读接口
type CategoryService struct {
	catalog domain.Catalog
	cfg     Config
	cache   TreeCache
	log     *zap.Logger
}

func NewCategoryService(catalog domain.Catalog, cfg Config, log *zap.Logger) *CategoryService {
	if cfg.TxRetryBase <= 0 {
		cfg.TxRetryBase = 50 * time.Millisecond
	}
	cache := cfg.Cache
	if cache == nil {
		cache = noCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryService{catalog: catalog, cfg: cfg, cache: cache, log: log}
}

// scope 绑定到某个 Catalog（根或事务）的一组组件
type scope struct {
	store     domain.CategoryStore
	products  domain.ProductCounter
	validator *HierarchyValidator
	paths     *PathManager
	tree      *TreeQuery
}

func (s *CategoryService) scopeOf(c domain.Catalog) *scope {
	store := c.Categories()
	return &scope{
		store:     store,
		products:  c.Products(),
		validator: NewHierarchyValidator(store),
		paths:     NewPathManager(store),
		tree:      NewTreeQuery(store, s.cfg.ListDefaultLimit, s.cfg.ListMaxLimit),
	}
}

// inTx 在事务内执行 fn；序列化失败/死锁按指数退避重试，业务错误不重试。
// 提交成功后失效树缓存。fn 可能被执行多次，输出变量需在 fn 内整体赋值。
func (s *CategoryService) inTx(ctx context.Context, op string, fn func(sc *scope) error) error {
	b := retry.WithMaxRetries(s.cfg.TxMaxRetries, retry.NewExponential(s.cfg.TxRetryBase))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := s.catalog.Transaction(ctx, func(tx domain.Catalog) error {
			return fn(s.scopeOf(tx))
		})
		if errors.Is(err, domain.ErrTxConflict) {
			s.log.Warn("category tx conflict, retrying", zap.String("op", op), zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	err = wrap(op, err)
	mutationsTotal.WithLabelValues(op, outcome(err)).Inc()
	if err != nil {
		return err
	}
	if ierr := s.cache.Invalidate(ctx); ierr != nil {
		s.log.Warn("tree cache invalidate failed", zap.String("op", op), zap.Error(ierr))
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, in CreateInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	parentID := normalizeID(in.ParentID)

	var created *domain.Category
	err := s.inTx(ctx, "create", func(sc *scope) error {
		res, err := sc.validate(ctx, HierarchyInput{Name: name, ParentID: parentID, Level: in.Level}, false)
		if err != nil {
			return err
		}
		if !res.Valid {
			return invalidHierarchy(res.Errors)
		}
		path, err := sc.paths.GeneratePath(ctx, name, parentID)
		if err != nil {
			return err
		}
		ancestors, err := sc.paths.GenerateAncestors(ctx, parentID)
		if err != nil {
			return err
		}
		c := &domain.Category{
			ID:          utils.NewID(),
			Name:        name,
			Description: in.Description,
			ParentID:    parentID,
			Level:       in.Level,
			Path:        path,
			Ancestors:   ancestors,
			IsActive:    true,
			SortOrder:   in.SortOrder,
		}
		if err := sc.store.Create(ctx, c); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("category created",
		zap.String("id", created.ID),
		zap.String("path", created.Path),
		zap.Int("level", created.Level),
	)
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, p Patch) (*domain.Category, error) {
	var (
		updated   *domain.Category
		oldPath   string
		rewritten int
	)
	err := s.inTx(ctx, "update", func(sc *scope) error {
		rewritten = 0
		cur, err := sc.store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return CategoryNotFound(id)
		}
		oldPath = cur.Path

		name := cur.Name
		if p.Name != nil {
			name = strings.TrimSpace(*p.Name)
		}
		parentID := cur.ParentID
		if p.SetParent {
			parentID = normalizeID(p.ParentID)
		}
		level := cur.Level
		if p.Level != nil {
			level = *p.Level
		}

		if p.hierarchyAffecting() {
			res, err := sc.validate(ctx, HierarchyInput{ID: id, Name: name, ParentID: parentID, Level: level}, true)
			if err != nil {
				return err
			}
			if !res.Valid {
				return invalidHierarchy(res.Errors)
			}
		}

		parentChanged := p.SetParent && !sameID(cur.ParentID, parentID)
		if p.Name != nil || parentChanged {
			newPath, err := sc.paths.GeneratePath(ctx, name, parentID)
			if err != nil {
				return err
			}
			if newPath != cur.Path {
				// 先改子树，再改自身
				n, err := sc.paths.UpdateDescendantPaths(ctx, id, newPath, level-cur.Level)
				if err != nil {
					return err
				}
				rewritten = n
				cur.Path = newPath
			}
		}
		if parentChanged {
			ancestors, err := sc.paths.GenerateAncestors(ctx, parentID)
			if err != nil {
				return err
			}
			cur.Ancestors = ancestors
			cur.ParentID = parentID
		}

		cur.Name = name
		cur.Level = level
		if p.Description != nil {
			cur.Description = *p.Description
		}
		if p.SortOrder != nil {
			cur.SortOrder = *p.SortOrder
		}
		if p.IsActive != nil {
			cur.IsActive = *p.IsActive
		}
		if err := sc.store.Save(ctx, cur); err != nil {
			return err
		}
		updated, err = sc.store.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields := []zap.Field{zap.String("id", id), zap.String("path", updated.Path)}
	if oldPath != updated.Path {
		fields = append(fields, zap.String("old_path", oldPath), zap.Int("descendants", rewritten))
	}
	s.log.Info("category updated", fields...)
	return updated, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	err := s.inTx(ctx, "delete", func(sc *scope) error {
		cur, err := sc.store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return CategoryNotFound(id)
		}
		desc, err := sc.store.FindByPathPrefix(ctx, cur.Path)
		if err != nil {
			return err
		}
		if n := len(desc); n > 0 {
			return refused(fmt.Sprintf("Cannot delete category with %d subcategories. Delete subcategories first.", n))
		}
		n, err := sc.products.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return refused(fmt.Sprintf("Cannot delete category. %d products are using this category.", n))
		}
		return sc.store.SoftDelete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("category deleted", zap.String("id", id))
	return nil
}

// Restore 按当前父级与名称重新校验并重算路径；路径已被占用时拒绝
func (s *CategoryService) Restore(ctx context.Context, id string) (*domain.Category, error) {
	var restored *domain.Category
	err := s.inTx(ctx, "restore", func(sc *scope) error {
		cur, err := sc.store.FindDeletedByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return &Error{Code: CodeCategoryNotFound, Message: fmt.Sprintf(msgNotFoundOrActive, id)}
		}
		res, err := sc.validate(ctx, HierarchyInput{ID: id, Name: cur.Name, ParentID: cur.ParentID, Level: cur.Level}, false)
		if err != nil {
			return err
		}
		if !res.Valid {
			return invalidHierarchy(res.Errors)
		}
		if cur.Path, err = sc.paths.GeneratePath(ctx, cur.Name, cur.ParentID); err != nil {
			return err
		}
		if cur.Ancestors, err = sc.paths.GenerateAncestors(ctx, cur.ParentID); err != nil {
			return err
		}
		if err := sc.store.Restore(ctx, cur); err != nil {
			return err
		}
		restored, err = sc.store.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("category restored", zap.String("id", id), zap.String("path", restored.Path))
	return restored, nil
}

// ValidateHierarchy 只读的组合校验（不写库），ID 非空时包含环检测
func (s *CategoryService) ValidateHierarchy(ctx context.Context, in HierarchyInput) (ValidationResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ParentID = normalizeID(in.ParentID)
	res, err := s.scopeOf(s.catalog).validate(ctx, in, in.ID != "")
	return res, wrap("validate", err)
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.scopeOf(s.catalog).tree.Get(ctx, id)
	return c, wrap("read", err)
}

func (s *CategoryService) GetByPath(ctx context.Context, path string) (*domain.Category, error) {
	c, err := s.scopeOf(s.catalog).tree.GetByPath(ctx, strings.Trim(path, domain.PathSeparator))
	return c, wrap("read", err)
}

func (s *CategoryService) GetAncestors(ctx context.Context, id string) ([]domain.Category, error) {
	cs, err := s.scopeOf(s.catalog).paths.GetAncestors(ctx, id)
	return cs, wrap("read", err)
}

func (s *CategoryService) GetDescendants(ctx context.Context, id string) ([]domain.Category, error) {
	cs, err := s.scopeOf(s.catalog).paths.GetDescendants(ctx, id)
	return cs, wrap("read", err)
}

func (s *CategoryService) List(ctx context.Context, o ListOptions) (domain.Page[domain.Category], error) {
	page, err := s.scopeOf(s.catalog).tree.List(ctx, o)
	return page, wrap("list", err)
}

func (s *CategoryService) BuildTree(ctx context.Context, rootLevel int, includeInactive bool) ([]domain.TreeNode, error) {
	tree := s.scopeOf(s.catalog).tree
	nodes, err := s.cache.Tree(ctx, rootLevel, includeInactive, func(ctx context.Context) ([]domain.TreeNode, error) {
		return tree.BuildTree(ctx, rootLevel, includeInactive)
	})
	return nodes, wrap("read", err)
}

// validate 组合校验：层级范围、根约束、名称、父节点存在与层级、路径唯一；
// checkSubtree 时追加自引用、环与子树深度检查。
func (sc *scope) validate(ctx context.Context, in HierarchyInput, checkSubtree bool) (ValidationResult, error) {
	var ec ErrorCollector
	ec.AddMany(sc.validator.ValidateLevel(in.Level))
	ec.AddMany(sc.validator.ValidateRootConstraints(in.Level, in.ParentID))
	ec.AddIf(utf8.RuneCountInString(in.Name) > maxNameLen, msgNameTooLong)

	slug, slugErr := utils.Slugify(in.Name)
	if slugErr != nil {
		ec.Add(msgInvalidSlug)
	}

	parentPath, parentOK := "", in.ParentID == nil
	if in.ParentID != nil {
		chk, err := sc.validator.ValidateParentExists(ctx, *in.ParentID)
		if err != nil {
			return ValidationResult{}, err
		}
		if chk.Valid {
			ec.AddMany(sc.validator.ValidateParentLevel(chk.Parent.Level, in.Level))
			parentPath, parentOK = chk.Parent.Path, true
		} else {
			ec.Add(chk.Error)
		}
	}

	if slugErr == nil && parentOK {
		path := joinPath(parentPath, slug)
		exists, err := sc.paths.PathExists(ctx, path, in.ID)
		if err != nil {
			return ValidationResult{}, err
		}
		ec.AddIf(exists, fmt.Sprintf("Path %q already exists", path))
	}

	if checkSubtree && in.ID != "" {
		if in.ParentID != nil && *in.ParentID == in.ID {
			ec.Add(msgOwnParent)
		} else if err := sc.checkSubtree(ctx, in, &ec); err != nil {
			return ValidationResult{}, err
		}
	}
	return ec.Result(), nil
}

func (sc *scope) checkSubtree(ctx context.Context, in HierarchyInput, ec *ErrorCollector) error {
	subject, err := sc.store.FindByID(ctx, in.ID)
	if err != nil || subject == nil {
		return err
	}
	desc, err := sc.store.FindByPathPrefix(ctx, subject.Path)
	if err != nil {
		return err
	}
	if in.ParentID != nil {
		ec.AddIf(containsID(desc, *in.ParentID), msgCycle)
	}
	deepest := subject.Level
	for _, d := range desc {
		deepest = max(deepest, d.Level)
	}
	ec.AddIf(deepest-subject.Level+in.Level > domain.MaxLevel, msgSubtreeTooDeep)
	return nil
}

// 空串父级视为无父级
func normalizeID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
