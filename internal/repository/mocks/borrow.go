package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"library-backend/internal/domain"
)

// BorrowRepository 是 repository.BorrowRepository 的 Mock 实现
type BorrowRepository struct {
	mock.Mock
}

func (m *BorrowRepository) Create(ctx context.Context, record *domain.BorrowRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *BorrowRepository) FindActive(ctx context.Context, userID, bookID uint) (*domain.BorrowRecord, error) {
	args := m.Called(ctx, userID, bookID)
	if record, ok := args.Get(0).(*domain.BorrowRecord); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BorrowRepository) FindByID(ctx context.Context, id uint) (*domain.BorrowRecord, error) {
	args := m.Called(ctx, id)
	if record, ok := args.Get(0).(*domain.BorrowRecord); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BorrowRepository) MarkReturned(ctx context.Context, id uint, returnedAt time.Time) error {
	args := m.Called(ctx, id, returnedAt)
	return args.Error(0)
}

func (m *BorrowRepository) CountByUser(ctx context.Context, userID uint, status domain.BorrowStatus) (int64, error) {
	args := m.Called(ctx, userID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BorrowRepository) ListByUser(ctx context.Context, userID uint, status domain.BorrowStatus, offset, limit int) ([]domain.BorrowRecord, error) {
	args := m.Called(ctx, userID, status, offset, limit)
	if records, ok := args.Get(0).([]domain.BorrowRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BorrowRepository) CountActiveByBook(ctx context.Context, bookID uint) (int64, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int64), args.Error(1)
}
