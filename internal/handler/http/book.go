package http

import (
	"net/http"

	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BookHandler 封装了图书目录相关的 HTTP 处理逻辑
type BookHandler struct {
	catalogService *service.CatalogService
}

// NewBookHandler 创建 BookHandler 实例
func NewBookHandler(catalogService *service.CatalogService) *BookHandler {
	return &BookHandler{catalogService: catalogService}
}

// CreateBookRequest 定义创建图书请求的结构体
type CreateBookRequest struct {
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author" binding:"required"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1"`
}

// CreateBook 处理管理员登记新图书的请求。
// 管理员角色由路由上的 RequireAdmin 中间件保证。
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateBook: invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Title and author are required")
		return
	}

	book, err := h.catalogService.CreateBook(c.Request.Context(), req.Title, req.Author, req.Quantity)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithField("book_id", book.ID).Info("Handler.CreateBook: book created successfully")
	SuccessResponse(c, http.StatusCreated, gin.H{
		"message": "Book created successfully",
		"book":    book,
	})
}

// ListBooks 返回目录中的全部图书
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.catalogService.ListBooks(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"books": books})
}
