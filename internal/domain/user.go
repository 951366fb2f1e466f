// Package domain 定义了应用程序的核心数据结构 (数据库模型)。
package domain

import "time"

// Role 表示用户在系统中的角色。
type Role string

const (
	RoleAdmin Role = "admin" // 管理员：可以维护图书目录
	RoleUser  Role = "user"  // 普通用户：可以借阅和归还图书
)

// User 表示应用程序中的用户。注册后不可修改（没有资料编辑路径）。
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null" json:"username"`
	Password  string    `gorm:"type:text;not null" json:"-"` // 存储的是 bcrypt 哈希，绝不返回给客户端
	Fullname  string    `gorm:"type:varchar(191);not null" json:"fullname"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Identity 表示从已验证的 Bearer Token 中还原出来的调用者身份。
// 角色是唯一的权威字段，布尔视图在本地派生，不会被持久化。
type Identity struct {
	UserID   uint
	Username string
	Role     Role
}

// IsAdmin 返回该身份是否具有管理员权限。
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
