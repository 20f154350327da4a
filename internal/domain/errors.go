package domain

import "errors"

// 存储层错误归类，repo 负责把驱动错误包装成这两类
var (
	ErrDuplicate  = errors.New("duplicate key")
	ErrTxConflict = errors.New("transaction conflict")
)
