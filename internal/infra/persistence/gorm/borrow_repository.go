package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"library-backend/internal/domain"
	"library-backend/internal/repository"
)

// GormBorrowRepository 是 BorrowRepository 接口的 GORM 实现
type GormBorrowRepository struct {
	db *gorm.DB
}

// NewGormBorrowRepository 创建 GormBorrowRepository 实例
func NewGormBorrowRepository(db *gorm.DB) *GormBorrowRepository {
	if db == nil {
		panic("database connection cannot be nil for GormBorrowRepository")
	}
	return &GormBorrowRepository{db: db}
}

// Create 实现插入新的借阅记录。
// (user_id, book_id, active) 上的唯一索引由数据库保证
// 同一用户对同一本书不会出现第二条借出中记录。
func (r *GormBorrowRepository) Create(ctx context.Context, record *domain.BorrowRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create borrow record (user: %d, book: %d): %w", record.UserID, record.BookID, err)
	}
	return nil
}

// FindActive 实现查找当前借出中的记录
func (r *GormBorrowRepository) FindActive(ctx context.Context, userID, bookID uint) (*domain.BorrowRecord, error) {
	var record domain.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, domain.StatusBorrowed).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBorrowNotFound
		}
		return nil, fmt.Errorf("gorm: find active borrow (user: %d, book: %d): %w", userID, bookID, err)
	}
	return &record, nil
}

// FindByID 实现根据 ID 查找借阅记录，预加载图书和用户用于展示
func (r *GormBorrowRepository) FindByID(ctx context.Context, id uint) (*domain.BorrowRecord, error) {
	var record domain.BorrowRecord
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBorrowNotFound
		}
		return nil, fmt.Errorf("gorm: find borrow record by id %d: %w", id, err)
	}
	return &record, nil
}

// MarkReturned 实现归还状态的原子条件更新。
// WHERE status = 'BORROWED' 使并发的重复归还只有一个能生效。
func (r *GormBorrowRepository) MarkReturned(ctx context.Context, id uint, returnedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.BorrowRecord{}).
		Where("id = ? AND status = ?", id, domain.StatusBorrowed).
		Updates(map[string]interface{}{
			"status":      domain.StatusReturned,
			"returned_at": returnedAt,
			"active":      gorm.Expr("NULL"),
		})
	if result.Error != nil {
		return fmt.Errorf("gorm: mark borrow record %d returned: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrConditionNotMet
	}
	return nil
}

// CountByUser 实现统计某用户的借阅记录数
func (r *GormBorrowRepository) CountByUser(ctx context.Context, userID uint, status domain.BorrowStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.BorrowRecord{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("gorm: count borrow records for user %d: %w", userID, err)
	}
	return count, nil
}

// ListByUser 实现按借出时间倒序分页返回某用户的借阅记录
func (r *GormBorrowRepository) ListByUser(ctx context.Context, userID uint, status domain.BorrowStatus, offset, limit int) ([]domain.BorrowRecord, error) {
	var records []domain.BorrowRecord
	query := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.
		Order("borrowed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list borrow records for user %d: %w", userID, err)
	}
	return records, nil
}

// CountActiveByBook 实现统计某本书当前借出中的记录数
func (r *GormBorrowRepository) CountActiveByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.BorrowRecord{}).
		Where("book_id = ? AND status = ?", bookID, domain.StatusBorrowed).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count active borrows for book %d: %w", bookID, err)
	}
	return count, nil
}
