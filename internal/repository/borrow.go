package repository

import (
	"context"
	"time"

	"library-backend/internal/domain"
)

// BorrowRepository 定义了借阅台账的存储和检索操作。
type BorrowRepository interface {
	// Create 插入一条新的借阅记录。
	// 同一用户对同一本书已有借出中记录时，
	// 数据库唯一约束会使插入失败并返回 ErrDuplicateEntry。
	Create(ctx context.Context, record *domain.BorrowRecord) error

	// FindActive 查找 (userID, bookID) 当前借出中的记录。
	// 没有时返回 ErrBorrowNotFound。
	FindActive(ctx context.Context, userID, bookID uint) (*domain.BorrowRecord, error)

	// FindByID 根据记录 ID 查找借阅记录，并预加载关联的图书和用户信息。
	FindByID(ctx context.Context, id uint) (*domain.BorrowRecord, error)

	// MarkReturned 将一条借出中的记录原子地置为已归还：
	// status -> RETURNED、returned_at -> returnedAt、active -> NULL，
	// 仅当记录仍处于 BORROWED 状态时生效；否则返回 ErrConditionNotMet。
	MarkReturned(ctx context.Context, id uint, returnedAt time.Time) error

	// CountByUser 统计某用户的借阅记录数，status 为空时不过滤状态。
	CountByUser(ctx context.Context, userID uint, status domain.BorrowStatus) (int64, error)

	// ListByUser 按借出时间倒序分页返回某用户的借阅记录，
	// 预加载图书摘要信息。status 为空时不过滤状态。
	ListByUser(ctx context.Context, userID uint, status domain.BorrowStatus, offset, limit int) ([]domain.BorrowRecord, error)

	// CountActiveByBook 统计某本书当前借出中的记录数（供对账任务使用）。
	CountActiveByBook(ctx context.Context, bookID uint) (int64, error)
}
