package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catalog-service/internal/domain"
	"catalog-service/internal/repo"
	"catalog-service/internal/repo/repotest"
	"catalog-service/internal/service"
)

// flakyCatalog 前 conflicts 次事务直接返回序列化冲突；stale 为 true 时路径存在性查询总是返回 false，
// 模拟并发写入在校验之后才提交的情形
type flakyCatalog struct {
	domain.Catalog
	conflicts int
	stale     bool
	attempts  int
}

func (f *flakyCatalog) Transaction(ctx context.Context, fn func(tx domain.Catalog) error) error {
	f.attempts++
	if f.conflicts > 0 {
		f.conflicts--
		return fmt.Errorf("%w: could not serialize access due to read/write dependencies", domain.ErrTxConflict)
	}
	return f.Catalog.Transaction(ctx, func(tx domain.Catalog) error {
		if f.stale {
			tx = staleCatalog{tx}
		}
		return fn(tx)
	})
}

type staleCatalog struct{ domain.Catalog }

func (c staleCatalog) Categories() domain.CategoryStore { return staleStore{c.Catalog.Categories()} }

type staleStore struct{ domain.CategoryStore }

func (staleStore) ExistsPath(context.Context, string, string) (bool, error) { return false, nil }

func newFlakyService(t *testing.T, cat *flakyCatalog, retries uint64) (*service.CategoryService, *countingCache) {
	t.Helper()
	cat.Catalog = repo.NewCatalog(repotest.Open(t))
	cache := &countingCache{}
	svc := service.NewCategoryService(cat, service.Config{
		TxMaxRetries: retries,
		TxRetryBase:  time.Millisecond,
		Cache:        cache,
	}, zap.NewNop())
	return svc, cache
}

func TestInTx_RetriesConflictThenCommits(t *testing.T) {
	cat := &flakyCatalog{conflicts: 2}
	svc, cache := newFlakyService(t, cat, 3)

	nike, err := svc.Create(context.Background(), service.CreateInput{Name: "Nike"})
	require.NoError(t, err)
	assert.Equal(t, 3, cat.attempts)
	assert.Equal(t, 1, cache.invalidations)

	got, err := svc.GetByPath(context.Background(), "nike")
	require.NoError(t, err)
	assert.Equal(t, nike.ID, got.ID)
}

func TestInTx_GivesUpAfterMaxRetries(t *testing.T) {
	cat := &flakyCatalog{conflicts: 100}
	svc, cache := newFlakyService(t, cat, 2)

	_, err := svc.Create(context.Background(), service.CreateInput{Name: "Nike"})
	require.Error(t, err)
	assert.Equal(t, 3, cat.attempts, "first attempt plus two retries")
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrTxConflict)

	var se *service.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, service.CodeConflict, se.Code)
	assert.Zero(t, cache.invalidations)

	page, err := svc.List(context.Background(), service.ListOptions{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestInTx_ValidationFailureIsNotRetried(t *testing.T) {
	cat := &flakyCatalog{}
	svc, cache := newFlakyService(t, cat, 3)

	_, err := svc.Create(context.Background(), service.CreateInput{Name: "Orphan", Level: 2})
	require.ErrorIs(t, err, service.ErrInvalidHierarchy)
	assert.Equal(t, 1, cat.attempts)
	assert.Zero(t, cache.invalidations)
}

func TestCreate_UniqueIndexRaceSurfacesConflict(t *testing.T) {
	cat := &flakyCatalog{}
	svc, cache := newFlakyService(t, cat, 3)
	_, err := svc.Create(context.Background(), service.CreateInput{Name: "Nike"})
	require.NoError(t, err)

	// 校验读不到已存在的 nike，插入撞上唯一索引
	cat.stale = true
	cat.attempts = 0
	_, err = svc.Create(context.Background(), service.CreateInput{Name: "NIKE"})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, 1, cat.attempts, "duplicates are not retried")
	assert.Equal(t, 1, cache.invalidations, "only the first create invalidated")
}
