package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"library-backend/internal/domain"
	"library-backend/internal/repository"
	"library-backend/internal/repository/mocks"
	"library-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBorrowService(t *testing.T) (*service.BorrowService, *mocks.BookRepository, *mocks.BorrowRepository) {
	t.Helper()
	mockBookRepo := new(mocks.BookRepository)
	mockBorrowRepo := new(mocks.BorrowRepository)
	return service.NewBorrowService(mockBookRepo, mockBorrowRepo), mockBookRepo, mockBorrowRepo
}

// --- 测试 Borrow 方法 ---

func TestBorrowService_Borrow_Success(t *testing.T) {
	// Arrange
	borrowService, mockBookRepo, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()
	book := &domain.Book{ID: 3, Title: "T", Author: "A", Quantity: 2, AvailableQuantity: 2}

	mockBookRepo.On("FindByID", ctx, uint(3)).Return(book, nil).Once()
	mockBorrowRepo.On("FindActive", ctx, uint(1), uint(3)).Return(nil, repository.ErrBorrowNotFound).Once()
	mockBookRepo.On("DecrementAvailable", ctx, uint(3)).Return(nil).Once()
	mockBorrowRepo.On("Create", ctx, mock.MatchedBy(func(record *domain.BorrowRecord) bool {
		assert.Equal(t, uint(1), record.UserID)
		assert.Equal(t, uint(3), record.BookID)
		assert.Equal(t, domain.StatusBorrowed, record.Status)
		assert.Nil(t, record.ReturnedAt, "新记录不应有归还时间")
		require.NotNil(t, record.Active, "借出中记录的 active 标记必须设置")
		assert.Equal(t, uint8(1), *record.Active)
		assert.WithinDuration(t, time.Now(), record.BorrowedAt, time.Second)
		return true
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.BorrowRecord).ID = 42
		}).
		Return(nil).
		Once()
	enriched := &domain.BorrowRecord{
		ID: 42, UserID: 1, BookID: 3, Status: domain.StatusBorrowed, BorrowedAt: time.Now(),
		Book: domain.Book{ID: 3, Title: "T", Author: "A", Quantity: 2, AvailableQuantity: 1},
		User: domain.User{ID: 1, Username: "alice", Fullname: "Alice A"},
	}
	mockBorrowRepo.On("FindByID", ctx, uint(42)).Return(enriched, nil).Once()

	// Act
	record, err := borrowService.Borrow(ctx, 1, 3)

	// Assert
	require.NoError(t, err, "成功借阅时不应有错误")
	require.NotNil(t, record)
	assert.Equal(t, uint(42), record.ID)
	assert.Equal(t, domain.StatusBorrowed, record.Status)
	assert.Equal(t, "T", record.Book.Title)
	assert.Equal(t, "A", record.Book.Author)
	require.NotNil(t, record.User, "借阅结果应包含用户摘要")
	assert.Equal(t, "alice", record.User.Username)

	mockBookRepo.AssertExpectations(t)
	mockBorrowRepo.AssertExpectations(t)
	// 成功路径不应触发补偿回加
	mockBookRepo.AssertNotCalled(t, "IncrementAvailable", mock.Anything, mock.Anything)
}

func TestBorrowService_Borrow_BookNotFound(t *testing.T) {
	// Arrange
	borrowService, mockBookRepo, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()

	mockBookRepo.On("FindByID", ctx, uint(9)).Return(nil, repository.ErrBookNotFound).Once()

	// Act
	_, err := borrowService.Borrow(ctx, 1, 9)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrBookNotFound))

	mockBookRepo.AssertExpectations(t)
	mockBorrowRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockBookRepo.AssertNotCalled(t, "DecrementAvailable", mock.Anything, mock.Anything)
}

func TestBorrowService_Borrow_BookUnavailable(t *testing.T) {
	// Arrange: 可借册数为 0，不应创建记录也不应扣减
	borrowService, mockBookRepo, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()
	book := &domain.Book{ID: 3, Quantity: 2, AvailableQuantity: 0}

	mockBookRepo.On("FindByID", ctx, uint(3)).Return(book, nil).Once()

	// Act
	_, err := borrowService.Borrow(ctx, 1, 3)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrBookUnavailable))

	mockBookRepo.AssertExpectations(t)
	mockBookRepo.AssertNotCalled(t, "DecrementAvailable", mock.Anything, mock.Anything)
	mockBorrowRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBorrowService_Borrow_AlreadyBorrowed(t *testing.T) {
	// Arrange: 用户已有未归还的记录
	borrowService, mockBookRepo, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()
	book := &domain.Book{ID: 3, Quantity: 2, AvailableQuantity: 1}
	existing := &domain.BorrowRecord{ID: 7, UserID: 1, BookID: 3, Status: domain.StatusBorrowed}

	mockBookRepo.On("FindByID", ctx, uint(3)).Return(book, nil).Once()
	mockBorrowRepo.On("FindActive", ctx, uint(1), uint(3)).Return(existing, nil).Once()

	// Act
	_, err := borrowService.Borrow(ctx, 1, 3)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAlreadyBorrowed))

	mockBookRepo.AssertExpectations(t)
	mockBorrowRepo.AssertExpectations(t)
	mockBookRepo.AssertNotCalled(t, "DecrementAvailable", mock.Anything, mock.Anything)
	mockBorrowRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBorrowService_Borrow_LostAvailabilityRace(t *testing.T) {
	// Arrange: 检查通过后并发借阅抢走了最后一本，条件扣减不生效
	borrowService, mockBookRepo, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()
	book := &domain.Book{ID: 3, Quantity: 1, AvailableQuantity: 1}

	mockBookRepo.On("FindByID", ctx, uint(3)).Return(book, nil).Once()
	mockBorrowRepo.On("FindActive", ctx, uint(1), uint(3)).Return(nil, repository.ErrBorrowNotFound).Once()
	mockBookRepo.On("DecrementAvailable", ctx, uint(3)).Return(repository.ErrConditionNotMet).Once()

	// Act
	_, err := borrowService.Borrow(ctx, 1, 3)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrBookUnavailable))

	mockBookRepo.AssertExpectations(t)
	mockBorrowRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBorrowService_Borrow_LostUniquenessRace_Compensates(t *testing.T) {
	// Arrange: 插入撞上唯一索引，必须把已扣减的册数补回去
	borrowService, mockBookRepo, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()
	book := &domain.Book{ID: 3, Quantity: 2, AvailableQuantity: 1}

	mockBookRepo.On("FindByID", ctx, uint(3)).Return(book, nil).Once()
	mockBorrowRepo.On("FindActive", ctx, uint(1), uint(3)).Return(nil, repository.ErrBorrowNotFound).Once()
	mockBookRepo.On("DecrementAvailable", ctx, uint(3)).Return(nil).Once()
	mockBorrowRepo.On("Create", ctx, mock.AnythingOfType("*domain.BorrowRecord")).Return(repository.ErrDuplicateEntry).Once()
	mockBookRepo.On("IncrementAvailable", ctx, uint(3)).Return(nil).Once()

	// Act
	_, err := borrowService.Borrow(ctx, 1, 3)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAlreadyBorrowed))

	mockBookRepo.AssertExpectations(t)
	mockBorrowRepo.AssertExpectations(t)
}

// --- 测试 Return 方法 ---

func TestBorrowService_Return_Success(t *testing.T) {
	// Arrange
	borrowService, mockBookRepo, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()
	active := &domain.BorrowRecord{ID: 42, UserID: 1, BookID: 3, Status: domain.StatusBorrowed}

	mockBorrowRepo.On("FindActive", ctx, uint(1), uint(3)).Return(active, nil).Once()
	mockBorrowRepo.On("MarkReturned", ctx, uint(42), mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockBookRepo.On("IncrementAvailable", ctx, uint(3)).Return(nil).Once()
	returnedAt := time.Now()
	enriched := &domain.BorrowRecord{
		ID: 42, UserID: 1, BookID: 3, Status: domain.StatusReturned,
		BorrowedAt: time.Now().Add(-time.Hour), ReturnedAt: &returnedAt,
		Book: domain.Book{ID: 3, Title: "T", Author: "A", Quantity: 2, AvailableQuantity: 2},
		User: domain.User{ID: 1, Username: "alice", Fullname: "Alice A"},
	}
	mockBorrowRepo.On("FindByID", ctx, uint(42)).Return(enriched, nil).Once()

	// Act
	record, err := borrowService.Return(ctx, 1, 3)

	// Assert
	require.NoError(t, err, "成功归还时不应有错误")
	require.NotNil(t, record)
	assert.Equal(t, domain.StatusReturned, record.Status)
	require.NotNil(t, record.ReturnedAt, "归还后应有归还时间")

	mockBookRepo.AssertExpectations(t)
	mockBorrowRepo.AssertExpectations(t)
}

func TestBorrowService_Return_NothingToReturn(t *testing.T) {
	// Arrange
	borrowService, mockBookRepo, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()

	mockBorrowRepo.On("FindActive", ctx, uint(1), uint(3)).Return(nil, repository.ErrBorrowNotFound).Once()

	// Act
	_, err := borrowService.Return(ctx, 1, 3)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNoActiveBorrow))

	mockBorrowRepo.AssertExpectations(t)
	mockBorrowRepo.AssertNotCalled(t, "MarkReturned", mock.Anything, mock.Anything, mock.Anything)
	mockBookRepo.AssertNotCalled(t, "IncrementAvailable", mock.Anything, mock.Anything)
}

func TestBorrowService_Return_LostRace(t *testing.T) {
	// Arrange: 查到记录后被并发归还抢先，条件更新不生效
	borrowService, mockBookRepo, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()
	active := &domain.BorrowRecord{ID: 42, UserID: 1, BookID: 3, Status: domain.StatusBorrowed}

	mockBorrowRepo.On("FindActive", ctx, uint(1), uint(3)).Return(active, nil).Once()
	mockBorrowRepo.On("MarkReturned", ctx, uint(42), mock.AnythingOfType("time.Time")).
		Return(repository.ErrConditionNotMet).Once()

	// Act
	_, err := borrowService.Return(ctx, 1, 3)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNoActiveBorrow))

	mockBorrowRepo.AssertExpectations(t)
	// 没有翻转成功就不能回加册数
	mockBookRepo.AssertNotCalled(t, "IncrementAvailable", mock.Anything, mock.Anything)
}

// --- 测试 History 方法 ---

func TestBorrowService_History_Pagination(t *testing.T) {
	// Arrange: 12 条记录，第 2 页每页 5 条 -> 偏移 5，共 3 页，前后都有页
	borrowService, _, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()

	records := make([]domain.BorrowRecord, 5)
	for i := range records {
		records[i] = domain.BorrowRecord{
			ID: uint(i + 6), UserID: 1, BookID: 3, Status: domain.StatusBorrowed,
			BorrowedAt: time.Now().Add(-time.Duration(i) * time.Hour),
			Book:       domain.Book{ID: 3, Title: "T", Author: "A"},
		}
	}
	mockBorrowRepo.On("CountByUser", ctx, uint(1), domain.BorrowStatus("")).Return(int64(12), nil).Once()
	mockBorrowRepo.On("ListByUser", ctx, uint(1), domain.BorrowStatus(""), 5, 5).Return(records, nil).Once()

	// Act
	history, pagination, err := borrowService.History(ctx, 1, "", 2, 5)

	// Assert
	require.NoError(t, err)
	assert.Len(t, history, 5)
	require.NotNil(t, pagination)
	assert.Equal(t, 2, pagination.CurrentPage)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, int64(12), pagination.TotalRecords)
	assert.True(t, pagination.HasNext)
	assert.True(t, pagination.HasPrev)
	// 历史查询不包含用户摘要
	assert.Nil(t, history[0].User)

	mockBorrowRepo.AssertExpectations(t)
}

func TestBorrowService_History_StatusFilter(t *testing.T) {
	// Arrange: 合法状态被传给仓库过滤
	borrowService, _, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()

	mockBorrowRepo.On("CountByUser", ctx, uint(1), domain.StatusReturned).Return(int64(0), nil).Once()
	mockBorrowRepo.On("ListByUser", ctx, uint(1), domain.StatusReturned, 0, 10).
		Return([]domain.BorrowRecord{}, nil).Once()

	// Act
	history, pagination, err := borrowService.History(ctx, 1, "RETURNED", 1, 10)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, 0, pagination.TotalPages)
	assert.False(t, pagination.HasNext)
	assert.False(t, pagination.HasPrev)

	mockBorrowRepo.AssertExpectations(t)
}

func TestBorrowService_History_InvalidStatusIgnored(t *testing.T) {
	// Arrange: 未定义的状态值被忽略而不是报错
	borrowService, _, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()

	mockBorrowRepo.On("CountByUser", ctx, uint(1), domain.BorrowStatus("")).Return(int64(1), nil).Once()
	mockBorrowRepo.On("ListByUser", ctx, uint(1), domain.BorrowStatus(""), 0, 10).
		Return([]domain.BorrowRecord{{ID: 1}}, nil).Once()

	// Act
	history, _, err := borrowService.History(ctx, 1, "OVERDUE", 1, 10)

	// Assert
	require.NoError(t, err)
	assert.Len(t, history, 1)

	mockBorrowRepo.AssertExpectations(t)
}

func TestBorrowService_History_ClampsPageAndLimit(t *testing.T) {
	// Arrange: page<1 取 1，limit>100 被截断到 100
	borrowService, _, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()

	mockBorrowRepo.On("CountByUser", ctx, uint(1), domain.BorrowStatus("")).Return(int64(0), nil).Once()
	mockBorrowRepo.On("ListByUser", ctx, uint(1), domain.BorrowStatus(""), 0, 100).
		Return([]domain.BorrowRecord{}, nil).Once()

	// Act
	_, pagination, err := borrowService.History(ctx, 1, "", -3, 500)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.CurrentPage)

	mockBorrowRepo.AssertExpectations(t)
}

func TestBorrowService_History_DefaultLimit(t *testing.T) {
	// Arrange: limit<1 回落到默认 10
	borrowService, _, mockBorrowRepo := newBorrowService(t)
	ctx := context.Background()

	mockBorrowRepo.On("CountByUser", ctx, uint(1), domain.BorrowStatus("")).Return(int64(0), nil).Once()
	mockBorrowRepo.On("ListByUser", ctx, uint(1), domain.BorrowStatus(""), 0, 10).
		Return([]domain.BorrowRecord{}, nil).Once()

	// Act
	_, _, err := borrowService.History(ctx, 1, "", 1, 0)

	// Assert
	require.NoError(t, err)
	mockBorrowRepo.AssertExpectations(t)
}
