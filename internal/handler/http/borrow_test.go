package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"library-backend/internal/domain"
	httpHandler "library-backend/internal/handler/http"
	"library-backend/internal/repository"
	"library-backend/internal/repository/mocks"
	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newBorrowRouter 搭一个挂好借阅路由的测试路由，
// 身份由测试中间件直接注入，不经过 JWT 验证
func newBorrowRouter(identity domain.Identity) (*gin.Engine, *mocks.BookRepository, *mocks.BorrowRepository) {
	mockBookRepo := new(mocks.BookRepository)
	mockBorrowRepo := new(mocks.BorrowRepository)
	handler := httpHandler.NewBorrowHandler(service.NewBorrowService(mockBookRepo, mockBorrowRepo))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("identity", identity)
		c.Next()
	})
	router.POST("/borrow/:bookId", handler.Borrow)
	router.POST("/return/:bookId", handler.Return)
	router.GET("/borrow/history", handler.History)
	return router, mockBookRepo, mockBorrowRepo
}

func TestBorrowHandler_Borrow_Success(t *testing.T) {
	// Arrange
	identity := domain.Identity{UserID: 1, Username: "alice", Role: domain.RoleUser}
	router, mockBookRepo, mockBorrowRepo := newBorrowRouter(identity)

	book := &domain.Book{ID: 3, Title: "T", Author: "A", Quantity: 2, AvailableQuantity: 2}
	mockBookRepo.On("FindByID", mock.Anything, uint(3)).Return(book, nil).Once()
	mockBorrowRepo.On("FindActive", mock.Anything, uint(1), uint(3)).Return(nil, repository.ErrBorrowNotFound).Once()
	mockBookRepo.On("DecrementAvailable", mock.Anything, uint(3)).Return(nil).Once()
	mockBorrowRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.BorrowRecord")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.BorrowRecord).ID = 42
		}).
		Return(nil).Once()
	enriched := &domain.BorrowRecord{
		ID: 42, UserID: 1, BookID: 3, Status: domain.StatusBorrowed, BorrowedAt: time.Now(),
		Book: domain.Book{ID: 3, Title: "T", Author: "A"},
		User: domain.User{ID: 1, Username: "alice", Fullname: "Alice A"},
	}
	mockBorrowRepo.On("FindByID", mock.Anything, uint(42)).Return(enriched, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/borrow/3", nil)
	recorder := httptest.NewRecorder()

	// Act
	router.ServeHTTP(recorder, req)

	// Assert
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Book borrowed successfully")
	assert.Contains(t, recorder.Body.String(), `"status":"BORROWED"`)

	mockBookRepo.AssertExpectations(t)
	mockBorrowRepo.AssertExpectations(t)
}

func TestBorrowHandler_Borrow_InvalidBookID(t *testing.T) {
	// Arrange
	identity := domain.Identity{UserID: 1, Username: "alice", Role: domain.RoleUser}
	router, mockBookRepo, _ := newBorrowRouter(identity)

	req := httptest.NewRequest(http.MethodPost, "/borrow/abc", nil)
	recorder := httptest.NewRecorder()

	// Act
	router.ServeHTTP(recorder, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Invalid book ID")
	mockBookRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestBorrowHandler_Borrow_BookNotFound(t *testing.T) {
	// Arrange
	identity := domain.Identity{UserID: 1, Username: "alice", Role: domain.RoleUser}
	router, mockBookRepo, _ := newBorrowRouter(identity)

	mockBookRepo.On("FindByID", mock.Anything, uint(9)).Return(nil, repository.ErrBookNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/borrow/9", nil)
	recorder := httptest.NewRecorder()

	// Act
	router.ServeHTTP(recorder, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	mockBookRepo.AssertExpectations(t)
}

func TestBorrowHandler_Borrow_Unavailable(t *testing.T) {
	// Arrange: 业务冲突映射为 400
	identity := domain.Identity{UserID: 1, Username: "alice", Role: domain.RoleUser}
	router, mockBookRepo, _ := newBorrowRouter(identity)

	book := &domain.Book{ID: 3, Quantity: 1, AvailableQuantity: 0}
	mockBookRepo.On("FindByID", mock.Anything, uint(3)).Return(book, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/borrow/3", nil)
	recorder := httptest.NewRecorder()

	// Act
	router.ServeHTTP(recorder, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	mockBookRepo.AssertExpectations(t)
}

func TestBorrowHandler_Return_NoActiveBorrow(t *testing.T) {
	// Arrange
	identity := domain.Identity{UserID: 1, Username: "alice", Role: domain.RoleUser}
	router, _, mockBorrowRepo := newBorrowRouter(identity)

	mockBorrowRepo.On("FindActive", mock.Anything, uint(1), uint(3)).
		Return(nil, repository.ErrBorrowNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/return/3", nil)
	recorder := httptest.NewRecorder()

	// Act
	router.ServeHTTP(recorder, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	mockBorrowRepo.AssertExpectations(t)
}

func TestBorrowHandler_History_ParsesQueryParams(t *testing.T) {
	// Arrange: 查询参数原样传入 Service，响应带分页元数据
	identity := domain.Identity{UserID: 1, Username: "alice", Role: domain.RoleUser}
	router, _, mockBorrowRepo := newBorrowRouter(identity)

	mockBorrowRepo.On("CountByUser", mock.Anything, uint(1), domain.StatusBorrowed).Return(int64(7), nil).Once()
	mockBorrowRepo.On("ListByUser", mock.Anything, uint(1), domain.StatusBorrowed, 5, 5).
		Return([]domain.BorrowRecord{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/borrow/history?status=BORROWED&page=2&limit=5", nil)
	recorder := httptest.NewRecorder()

	// Act
	router.ServeHTTP(recorder, req)

	// Assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"current_page":2`)
	assert.Contains(t, recorder.Body.String(), `"total_pages":2`)
	assert.Contains(t, recorder.Body.String(), `"has_prev":true`)
	assert.Contains(t, recorder.Body.String(), `"has_next":false`)

	mockBorrowRepo.AssertExpectations(t)
}
