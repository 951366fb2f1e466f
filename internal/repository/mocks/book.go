package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"library-backend/internal/domain"
)

// BookRepository 是 repository.BookRepository 的 Mock 实现
type BookRepository struct {
	mock.Mock
}

func (m *BookRepository) FindByID(ctx context.Context, id uint) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if book, ok := args.Get(0).(*domain.Book); ok {
		return book, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BookRepository) FindAll(ctx context.Context) ([]domain.Book, error) {
	args := m.Called(ctx)
	if books, ok := args.Get(0).([]domain.Book); ok {
		return books, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BookRepository) Save(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *BookRepository) DecrementAvailable(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BookRepository) IncrementAvailable(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BookRepository) UpdateAvailable(ctx context.Context, id uint, available int) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}
