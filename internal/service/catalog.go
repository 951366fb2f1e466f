package service

import (
	"context"

	"library-backend/internal/domain"
	"library-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// CatalogService 负责图书目录相关的业务逻辑。
type CatalogService struct {
	bookRepo repository.BookRepository
}

// NewCatalogService 创建 CatalogService 实例。
func NewCatalogService(bookRepo repository.BookRepository) *CatalogService {
	if bookRepo == nil {
		panic("BookRepository cannot be nil for CatalogService")
	}
	return &CatalogService{bookRepo: bookRepo}
}

// CreateBook 在目录中登记一种新图书。
// quantity 小于等于 0 时按 1 处理；可借册数初始等于总册数。
func (s *CatalogService) CreateBook(ctx context.Context, title, author string, quantity int) (*domain.Book, error) {
	logCtx := logrus.WithFields(logrus.Fields{"title": title, "author": author})

	if quantity <= 0 {
		quantity = 1
	}
	book := &domain.Book{
		Title:             title,
		Author:            author,
		Quantity:          quantity,
		AvailableQuantity: quantity,
	}
	if err := s.bookRepo.Save(ctx, book); err != nil {
		logCtx.WithError(err).Error("Failed to save new book to database")
		return nil, ErrInternalServer
	}

	logCtx.WithField("book_id", book.ID).Info("Book created successfully")
	return book, nil
}

// ListBooks 返回目录中的全部图书。
func (s *CatalogService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	books, err := s.bookRepo.FindAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list books")
		return nil, ErrInternalServer
	}
	return books, nil
}
