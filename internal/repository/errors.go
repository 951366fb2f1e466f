package repository

import "errors"

// 通用的存储库错误
var (
	// ErrNotFound 表示请求的记录未找到
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry 表示尝试插入或更新的数据违反了唯一约束
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
	// ErrConditionNotMet 表示条件更新没有影响任何行
	// (例如库存扣减时 available_quantity 已经为 0)
	ErrConditionNotMet = errors.New("repository: conditional update affected no rows")
)

// 特定资源的错误 (基于通用错误创建，便于 errors.Is 判断)
var (
	ErrUserNotFound   = ErrNotFound
	ErrBookNotFound   = ErrNotFound
	ErrBorrowNotFound = ErrNotFound
)
