package repository

import (
	"context"

	"library-backend/internal/domain"
)

// BookRepository 定义了图书目录的存储和检索操作。
type BookRepository interface {
	// FindByID 根据图书 ID 查找图书。不存在时返回 ErrBookNotFound。
	FindByID(ctx context.Context, id uint) (*domain.Book, error)

	// FindAll 返回目录中的全部图书。
	FindAll(ctx context.Context) ([]domain.Book, error)

	// Save 保存图书信息（创建或更新）。
	Save(ctx context.Context, book *domain.Book) error

	// DecrementAvailable 原子地将可借册数减 1，
	// 仅当 available_quantity > 0 时生效；否则返回 ErrConditionNotMet。
	// 这是借阅流程防止可借数被并发扣成负数的关键。
	DecrementAvailable(ctx context.Context, id uint) error

	// IncrementAvailable 原子地将可借册数加 1，
	// 仅当 available_quantity < quantity 时生效。
	// 图书已被删除或可借数已达总数时静默跳过（返回 nil）。
	IncrementAvailable(ctx context.Context, id uint) error

	// UpdateAvailable 将可借册数直接设置为给定值（供对账任务修复漂移）。
	UpdateAvailable(ctx context.Context, id uint, available int) error
}
