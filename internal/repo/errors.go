package repo

import (
	"fmt"
	"strings"

	"catalog-service/internal/domain"
)

// 不依赖 gorm.ErrDuplicatedKey（需开启 TranslateError 且各驱动表现不一），按消息匹配
func isDupKey(msg string) bool {
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

// 序列化失败 / 死锁 / sqlite 忙，整个事务可重试
func isTxConflict(msg string) bool {
	return strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "lock wait timeout") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy")
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case isDupKey(msg):
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	case isTxConflict(msg):
		return fmt.Errorf("%w: %v", domain.ErrTxConflict, err)
	}
	return err
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike 转义 LIKE 通配符，配合 ESCAPE '!' 使用
func escapeLike(s string) string { return likeEscaper.Replace(s) }
