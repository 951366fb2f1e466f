package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"library-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

// identityKey 是调用者身份在 Gin 上下文中的键。
// 身份只通过这里显式传递，不使用任何全局状态。
const identityKey = "identity"

// ErrMissingAuthHeader 表示请求缺少 Authorization 头
var ErrMissingAuthHeader = errors.New("missing Authorization header")

// Auth 返回一个 Gin 中间件，用于验证 JWT token 并还原调用者身份。
// jwtSecret: 用于验证签名的密钥，必须提供。
func Auth(jwtSecret string) gin.HandlerFunc {
	// 在创建中间件时就进行检查，避免运行时 panic
	if jwtSecret == "" {
		panic("JWT secret cannot be empty for Auth middleware")
	}

	return func(c *gin.Context) {
		// 1. 从请求头提取 Token
		tokenStr, err := extractToken(c)
		if err != nil {
			if errors.Is(err, ErrMissingAuthHeader) {
				logrus.Warn("Auth middleware: missing Authorization header")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			} else {
				logrus.WithError(err).Warn("Auth middleware: malformed token format")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			}
			c.Abort()
			return
		}

		// 2. 验证 Token
		claims, err := validateToken(tokenStr, jwtSecret)
		if err != nil {
			logCtx := logrus.WithError(err)
			logCtx.Warn("Auth middleware: invalid token")
			var validationError *jwt.ValidationError
			if errors.As(err, &validationError) {
				if validationError.Errors&jwt.ValidationErrorExpired != 0 {
					logCtx.Warn("Reason: token is expired")
				}
				if validationError.Errors&jwt.ValidationErrorSignatureInvalid != 0 {
					logCtx.Warn("Reason: token signature is invalid")
				}
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 3. 从 Claims 中还原身份并设置到 Context
		identity, err := identityFromClaims(claims)
		if err != nil {
			logrus.WithError(err).Error("Auth middleware: malformed identity claims")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		logrus.WithFields(logrus.Fields{"user_id": identity.UserID, "role": identity.Role}).
			Debug("Auth middleware: user authenticated via JWT")

		c.Next()
	}
}

// RequireAdmin 返回一个 Gin 中间件，要求调用者具有管理员角色。
// 必须挂在 Auth 之后使用。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			logrus.Error("RequireAdmin middleware: identity missing, Auth middleware not applied?")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}
		if !identity.IsAdmin() {
			logrus.WithField("user_id", identity.UserID).Warn("RequireAdmin middleware: access denied")
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied. Admin role required."})
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFromContext 从 Gin 上下文中取出调用者身份。
func IdentityFromContext(c *gin.Context) (domain.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok
}

// extractToken 从 Gin 上下文中提取 Bearer Token
func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	// Authorization header 格式应为 "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", jwt.ErrTokenMalformed
	}
	return parts[1], nil
}

// validateToken 解析并验证 JWT token 字符串
func validateToken(tokenStr string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法是否为 HMAC (HS256)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token or claims type")
}

// identityFromClaims 将 token claims 转换为调用者身份。
// 角色是 claims 中唯一的权限字段，布尔视图由 Identity 本地派生。
func identityFromClaims(claims jwt.MapClaims) (domain.Identity, error) {
	// JWT 数字默认为 float64，需要安全转换为 uint
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 || userIDFloat != float64(uint(userIDFloat)) {
		return domain.Identity{}, fmt.Errorf("'user_id' claim is not a valid positive integer: %v", claims["user_id"])
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return domain.Identity{}, errors.New("'username' claim missing or not a string")
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return domain.Identity{}, errors.New("'role' claim missing or not a string")
	}
	role := domain.Role(roleStr)
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return domain.Identity{}, fmt.Errorf("'role' claim has unknown value: %q", roleStr)
	}
	return domain.Identity{
		UserID:   uint(userIDFloat),
		Username: username,
		Role:     role,
	}, nil
}
