package domain

import "time"

// BorrowStatus 表示一条借阅记录的状态。
type BorrowStatus string

const (
	StatusBorrowed BorrowStatus = "BORROWED" // 借出中
	StatusReturned BorrowStatus = "RETURNED" // 已归还
)

// IsValid 报告 s 是否是一个已定义的借阅状态。
func (s BorrowStatus) IsValid() bool {
	return s == StatusBorrowed || s == StatusReturned
}

// ActiveFlag 返回借出中记录在 active 列上使用的标记值。
func ActiveFlag() *uint8 {
	one := uint8(1)
	return &one
}

// BorrowRecord 表示借阅台账中的一条记录，每次借阅生命周期对应一行。
// 记录只在借出时创建、归还时修改一次，永不删除。
//
// Active 列是唯一性约束的载体：借出中为 1，归还后置为 NULL。
// (user_id, book_id, active) 上的联合唯一索引由数据库保证
// 同一用户对同一本书最多只有一条 BORROWED 记录——NULL 之间不冲突，
// 因此任意数量的 RETURNED 记录可以共存。
type BorrowRecord struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	UserID     uint         `gorm:"not null;index:idx_borrow_user;uniqueIndex:idx_active_loan" json:"user_id"`
	BookID     uint         `gorm:"not null;index:idx_borrow_book;uniqueIndex:idx_active_loan" json:"book_id"`
	BorrowedAt time.Time    `gorm:"not null;index:idx_borrowed_at" json:"borrowed_at"`
	ReturnedAt *time.Time   `json:"returned_at"`
	Status     BorrowStatus `gorm:"type:varchar(20);not null;default:'BORROWED'" json:"status"`
	Active     *uint8       `gorm:"uniqueIndex:idx_active_loan" json:"-"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联对象，仅在需要展示信息时 Preload
	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`
}
