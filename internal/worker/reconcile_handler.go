package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"library-backend/internal/domain"
	"library-backend/internal/repository"
	"library-backend/internal/tasks"
)

// CatalogReconcileHandler 处理目录可借数对账任务。
// 它根据借阅台账中借出中的记录数重算每本书的可借册数，
// 修复在竞态修复上线前写坏的数据或人工改库造成的漂移。
type CatalogReconcileHandler struct {
	bookRepo   repository.BookRepository
	borrowRepo repository.BorrowRepository
}

// NewCatalogReconcileHandler 创建 Handler 实例
func NewCatalogReconcileHandler(bookRepo repository.BookRepository, borrowRepo repository.BorrowRepository) *CatalogReconcileHandler {
	if bookRepo == nil {
		panic("BookRepository cannot be nil for CatalogReconcileHandler")
	}
	if borrowRepo == nil {
		panic("BorrowRepository cannot be nil for CatalogReconcileHandler")
	}
	return &CatalogReconcileHandler{bookRepo: bookRepo, borrowRepo: borrowRepo}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *CatalogReconcileHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())
	logCtx.Info("Processing catalog reconcile task...")

	var payload tasks.CatalogReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	var books []domain.Book
	if payload.BookID != 0 {
		book, err := h.bookRepo.FindByID(ctx, payload.BookID)
		if err != nil {
			logCtx.WithError(err).Errorf("Failed to load book %d for reconcile", payload.BookID)
			return fmt.Errorf("failed to load book %d: %w", payload.BookID, err)
		}
		books = []domain.Book{*book}
	} else {
		all, err := h.bookRepo.FindAll(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to load catalog for reconcile")
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		books = all
	}

	repaired := 0
	for i := range books {
		book := &books[i]
		if err := h.reconcileBook(ctx, book, logCtx); err != nil {
			// 单本书失败不阻断整轮对账
			logCtx.WithError(err).WithField("book_id", book.ID).Error("Reconcile failed for book")
			continue
		}
		repaired++
	}

	logCtx.Infof("Catalog reconcile task completed (%d/%d books checked)", repaired, len(books))
	return nil
}

// reconcileBook 将单本书的可借册数修正为 总册数 - 借出中记录数，
// 并约束在 [0, quantity] 区间内。
func (h *CatalogReconcileHandler) reconcileBook(ctx context.Context, book *domain.Book, logCtx *logrus.Entry) error {
	active, err := h.borrowRepo.CountActiveByBook(ctx, book.ID)
	if err != nil {
		return err
	}

	expected := book.Quantity - int(active)
	if expected < 0 {
		expected = 0
	}
	if expected > book.Quantity {
		expected = book.Quantity
	}
	if expected == book.AvailableQuantity {
		return nil
	}

	logCtx.WithFields(logrus.Fields{
		"book_id":  book.ID,
		"stored":   book.AvailableQuantity,
		"expected": expected,
	}).Warn("Available quantity drifted, repairing")
	return h.bookRepo.UpdateAvailable(ctx, book.ID, expected)
}
