package domain

import "time"

// Book 表示图书目录中的一种图书。
// 不变量：0 <= AvailableQuantity <= Quantity，任何写路径都不得破坏。
type Book struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"type:varchar(191);not null;index:idx_title" json:"title"`
	Author            string    `gorm:"type:varchar(191);not null" json:"author"`
	Quantity          int       `gorm:"not null;default:1" json:"quantity"`                    // 馆藏总册数
	AvailableQuantity int       `gorm:"not null;default:1" json:"available_quantity"`          // 当前可借册数，仅由借还流程和管理员维护
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
