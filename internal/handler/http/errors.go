package http

import (
	"errors"
	"net/http"

	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HandleServiceError 是业务错误到 HTTP 状态码的唯一映射点。
// 业务规则冲突（无可借册数、重复借阅、无可归还记录、用户名重复）统一按 400 返回；
// 未识别的错误记录日志后返回不带内部细节的 500。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBookNotFound) || errors.Is(err, service.ErrUserNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrBookUnavailable) ||
		errors.Is(err, service.ErrAlreadyBorrowed) ||
		errors.Is(err, service.ErrNoActiveBorrow) ||
		errors.Is(err, service.ErrRegistrationFailed) ||
		errors.Is(err, service.ErrAuthenticationFailed):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
