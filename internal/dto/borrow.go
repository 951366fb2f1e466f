// Package dto 定义了返回给客户端的数据结构。
package dto

import (
	"time"

	"library-backend/internal/domain"
)

// BookSummary 表示借阅记录中嵌入的图书摘要信息
type BookSummary struct {
	ID                uint   `json:"id"`
	Title             string `json:"title"`
	Author            string `json:"author"`
	Quantity          int    `json:"quantity,omitempty"`
	AvailableQuantity int    `json:"available_quantity,omitempty"`
}

// UserSummary 表示借阅记录中嵌入的用户摘要信息
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
}

// BorrowRecord 表示带有图书和用户摘要的借阅记录视图
type BorrowRecord struct {
	ID         uint                `json:"id"`
	Status     domain.BorrowStatus `json:"status"`
	BorrowedAt time.Time           `json:"borrowed_at"`
	ReturnedAt *time.Time          `json:"returned_at"`
	Book       BookSummary         `json:"book"`
	User       *UserSummary        `json:"user,omitempty"`
}

// Pagination 表示分页查询的元数据
type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalRecords int64 `json:"total_records"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

// FromBorrowRecord 将领域模型转换为展示视图。
// withUser 控制是否包含用户摘要（历史查询只需要图书摘要）。
func FromBorrowRecord(record *domain.BorrowRecord, withUser bool) BorrowRecord {
	out := BorrowRecord{
		ID:         record.ID,
		Status:     record.Status,
		BorrowedAt: record.BorrowedAt,
		ReturnedAt: record.ReturnedAt,
		Book: BookSummary{
			ID:                record.Book.ID,
			Title:             record.Book.Title,
			Author:            record.Book.Author,
			Quantity:          record.Book.Quantity,
			AvailableQuantity: record.Book.AvailableQuantity,
		},
	}
	if withUser {
		out.User = &UserSummary{
			ID:       record.User.ID,
			Username: record.User.Username,
			Fullname: record.User.Fullname,
		}
	}
	return out
}
