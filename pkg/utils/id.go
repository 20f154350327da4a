package utils

import "github.com/google/uuid"

// NewID 生成实体主键（uuid v4）
func NewID() string { return uuid.NewString() }

// IsID 校验字符串是否为合法主键格式
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
