package http

import (
	"net/http"
	"strconv"

	"library-backend/internal/middleware"
	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BorrowHandler 封装了借阅/归还/历史查询的 HTTP 处理逻辑
type BorrowHandler struct {
	borrowService *service.BorrowService
}

// NewBorrowHandler 创建 BorrowHandler 实例
func NewBorrowHandler(borrowService *service.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrowService: borrowService}
}

// parseBookID 解析路径参数中的图书 ID，非法时返回 0 和 false
func parseBookID(c *gin.Context) (uint, bool) {
	raw := c.Param("bookId")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		logrus.WithField("book_id", raw).Warn("Invalid book ID in path")
		ErrorResponse(c, http.StatusBadRequest, "Invalid book ID")
		return 0, false
	}
	return uint(id), true
}

// Borrow 处理借书请求
func (h *BorrowHandler) Borrow(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	record, err := h.borrowService.Borrow(c.Request.Context(), identity.UserID, bookID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, gin.H{
		"message":       "Book borrowed successfully",
		"borrow_record": record,
	})
}

// Return 处理还书请求
func (h *BorrowHandler) Return(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	record, err := h.borrowService.Return(c.Request.Context(), identity.UserID, bookID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"message":       "Book returned successfully",
		"borrow_record": record,
	})
}

// History 处理借阅历史查询请求。
// status 不合法时被忽略；page/limit 的边界修正在 Service 层完成。
func (h *BorrowHandler) History(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	history, pagination, err := h.borrowService.History(c.Request.Context(), identity.UserID, status, page, limit)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"history":    history,
		"pagination": pagination,
	})
}
