package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"library-backend/internal/domain"
	"library-backend/internal/repository"
)

// GormBookRepository 是 BookRepository 接口的 GORM 实现
type GormBookRepository struct {
	db *gorm.DB
}

// NewGormBookRepository 创建 GormBookRepository 实例
func NewGormBookRepository(db *gorm.DB) *GormBookRepository {
	if db == nil {
		panic("database connection cannot be nil for GormBookRepository")
	}
	return &GormBookRepository{db: db}
}

// FindByID 实现根据图书 ID 查找图书
func (r *GormBookRepository) FindByID(ctx context.Context, id uint) (*domain.Book, error) {
	var book domain.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBookNotFound
		}
		return nil, fmt.Errorf("gorm: find book by id %d: %w", id, err)
	}
	return &book, nil
}

// FindAll 实现返回全部图书
func (r *GormBookRepository) FindAll(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	if err := r.db.WithContext(ctx).Order("id").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("gorm: find all books: %w", err)
	}
	return books, nil
}

// Save 实现保存图书信息（创建或更新）
func (r *GormBookRepository) Save(ctx context.Context, book *domain.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return fmt.Errorf("gorm: save book (id: %d, title: %s): %w", book.ID, book.Title, err)
	}
	return nil
}

// DecrementAvailable 实现可借册数的原子条件扣减。
// 单条 UPDATE 把检查和扣减合并在一起，并发借阅最后一本时
// 只有一个请求能使 available_quantity > 0 的条件成立。
func (r *GormBookRepository) DecrementAvailable(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Book{}).
		Where("id = ? AND available_quantity > 0", id).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity - 1"))
	if result.Error != nil {
		return fmt.Errorf("gorm: decrement available for book %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrConditionNotMet
	}
	return nil
}

// IncrementAvailable 实现可借册数的原子条件回加。
// 条件 available_quantity < quantity 保证可借数永远不会超过总册数；
// 图书已被删除时影响 0 行，按约定静默跳过。
func (r *GormBookRepository) IncrementAvailable(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Book{}).
		Where("id = ? AND available_quantity < quantity", id).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity + 1"))
	if result.Error != nil {
		return fmt.Errorf("gorm: increment available for book %d: %w", id, result.Error)
	}
	return nil
}

// UpdateAvailable 实现将可借册数直接写为给定值
func (r *GormBookRepository) UpdateAvailable(ctx context.Context, id uint, available int) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Book{}).
		Where("id = ?", id).
		UpdateColumn("available_quantity", available)
	if result.Error != nil {
		return fmt.Errorf("gorm: update available for book %d: %w", id, result.Error)
	}
	return nil
}
