package service

import (
	"context"
	"errors"
	"time"

	"library-backend/internal/domain"
	"library-backend/internal/dto"
	"library-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// 历史查询的分页参数边界
const (
	defaultHistoryPage  = 1
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// BorrowService 负责借阅/归还状态流转和借阅历史查询。
type BorrowService struct {
	bookRepo   repository.BookRepository
	borrowRepo repository.BorrowRepository
}

// NewBorrowService 创建 BorrowService 实例。
func NewBorrowService(bookRepo repository.BookRepository, borrowRepo repository.BorrowRepository) *BorrowService {
	if bookRepo == nil {
		panic("BookRepository cannot be nil for BorrowService")
	}
	if borrowRepo == nil {
		panic("BorrowRepository cannot be nil for BorrowService")
	}
	return &BorrowService{
		bookRepo:   bookRepo,
		borrowRepo: borrowRepo,
	}
}

// Borrow 为调用者借出一本书：创建 BORROWED 记录并将可借册数减 1。
//
// 前置检查按固定顺序短路：图书存在 -> 仍有可借册数 -> 没有未归还的记录。
// 检查通过后的写入依靠两道数据库保证抵御并发：
//   - 扣减是原子条件更新，available_quantity 为 0 时不生效；
//   - 插入受 (user_id, book_id, active) 唯一索引保护，
//     冲突时回加已扣减的册数再返回 ErrAlreadyBorrowed。
func (s *BorrowService) Borrow(ctx context.Context, userID, bookID uint) (*dto.BorrowRecord, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "book_id": bookID})

	// 1. 图书必须存在
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			logCtx.Warn("Borrow failed: book not found")
			return nil, ErrBookNotFound
		}
		logCtx.WithError(err).Error("Borrow failed: error finding book")
		return nil, ErrInternalServer
	}

	// 2. 快速路径：没有可借册数时直接拒绝
	if book.AvailableQuantity <= 0 {
		logCtx.Warn("Borrow failed: book not available")
		return nil, ErrBookUnavailable
	}

	// 3. 快速路径：该用户已有未归还的记录时直接拒绝
	if _, err := s.borrowRepo.FindActive(ctx, userID, bookID); err == nil {
		logCtx.Warn("Borrow failed: user already borrowed this book")
		return nil, ErrAlreadyBorrowed
	} else if !errors.Is(err, repository.ErrBorrowNotFound) {
		logCtx.WithError(err).Error("Borrow failed: error checking active borrow")
		return nil, ErrInternalServer
	}

	// 4. 原子扣减可借册数；条件不成立说明并发借阅抢走了最后一本
	if err := s.bookRepo.DecrementAvailable(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrConditionNotMet) {
			logCtx.Warn("Borrow failed: book no longer available (lost race)")
			return nil, ErrBookUnavailable
		}
		logCtx.WithError(err).Error("Borrow failed: error decrementing availability")
		return nil, ErrInternalServer
	}

	// 5. 插入借阅记录；唯一索引冲突说明并发借阅已经建档，补偿回加册数
	record := &domain.BorrowRecord{
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: time.Now(),
		Status:     domain.StatusBorrowed,
		Active:     domain.ActiveFlag(),
	}
	if err := s.borrowRepo.Create(ctx, record); err != nil {
		if incErr := s.bookRepo.IncrementAvailable(ctx, bookID); incErr != nil {
			logCtx.WithError(incErr).Error("Borrow failed: could not compensate availability after insert failure")
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("Borrow failed: user already borrowed this book (lost race)")
			return nil, ErrAlreadyBorrowed
		}
		logCtx.WithError(err).Error("Borrow failed: error creating borrow record")
		return nil, ErrInternalServer
	}

	// 6. 重新读取记录，带上图书和用户的展示信息
	enriched, err := s.borrowRepo.FindByID(ctx, record.ID)
	if err != nil {
		logCtx.WithError(err).Error("Borrow succeeded but failed to load enriched record")
		return nil, ErrInternalServer
	}

	logCtx.WithField("record_id", record.ID).Info("Book borrowed successfully")
	out := dto.FromBorrowRecord(enriched, true)
	return &out, nil
}

// Return 关闭调用者对一本书的未归还记录并将可借册数加 1。
//
// 状态翻转是原子条件更新，并发的重复归还只有一个能生效。
// 册数回加在图书已被删除时静默跳过，归还本身仍然成功。
func (s *BorrowService) Return(ctx context.Context, userID, bookID uint) (*dto.BorrowRecord, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "book_id": bookID})

	// 1. 必须存在未归还的记录
	record, err := s.borrowRepo.FindActive(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrBorrowNotFound) {
			logCtx.Warn("Return failed: no active borrow record")
			return nil, ErrNoActiveBorrow
		}
		logCtx.WithError(err).Error("Return failed: error finding active borrow")
		return nil, ErrInternalServer
	}

	// 2. 原子翻转状态；条件不成立说明并发归还已经处理过这条记录
	if err := s.borrowRepo.MarkReturned(ctx, record.ID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrConditionNotMet) {
			logCtx.Warn("Return failed: record already returned (lost race)")
			return nil, ErrNoActiveBorrow
		}
		logCtx.WithError(err).Error("Return failed: error marking record returned")
		return nil, ErrInternalServer
	}

	// 3. 回加可借册数；图书被删除时跳过，不影响归还结果
	if err := s.bookRepo.IncrementAvailable(ctx, bookID); err != nil {
		logCtx.WithError(err).Error("Return: failed to increment availability")
		return nil, ErrInternalServer
	}

	// 4. 重新读取记录，带上图书和用户的展示信息
	enriched, err := s.borrowRepo.FindByID(ctx, record.ID)
	if err != nil {
		logCtx.WithError(err).Error("Return succeeded but failed to load enriched record")
		return nil, ErrInternalServer
	}

	logCtx.WithField("record_id", record.ID).Info("Book returned successfully")
	out := dto.FromBorrowRecord(enriched, true)
	return &out, nil
}

// History 分页返回调用者自己的借阅记录，按借出时间倒序。
// status 不是已定义的状态时被忽略而不是报错；
// page 向下取整到至少 1，limit 默认 10 并被限制在 [1, 100]。
func (s *BorrowService) History(ctx context.Context, userID uint, status string, page, limit int) ([]dto.BorrowRecord, *dto.Pagination, error) {
	logCtx := logrus.WithField("user_id", userID)

	statusFilter := domain.BorrowStatus(status)
	if !statusFilter.IsValid() {
		statusFilter = ""
	}
	if page < 1 {
		page = defaultHistoryPage
	}
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	total, err := s.borrowRepo.CountByUser(ctx, userID, statusFilter)
	if err != nil {
		logCtx.WithError(err).Error("History failed: error counting records")
		return nil, nil, ErrInternalServer
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	records, err := s.borrowRepo.ListByUser(ctx, userID, statusFilter, (page-1)*limit, limit)
	if err != nil {
		logCtx.WithError(err).Error("History failed: error listing records")
		return nil, nil, ErrInternalServer
	}

	history := make([]dto.BorrowRecord, 0, len(records))
	for i := range records {
		history = append(history, dto.FromBorrowRecord(&records[i], false))
	}
	pagination := &dto.Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalRecords: total,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
	}
	return history, pagination, nil
}
