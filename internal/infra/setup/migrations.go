package setup

import (
	"fmt"

	"gorm.io/gorm"

	"library-backend/internal/domain"
)

// MigrateDB 迁移全部数据库模式。
// 字符串列都声明了 varchar 长度，AutoMigrate 在 MySQL 上可以直接建出
// 所需的唯一索引，包括 borrow_records 上承载业务唯一性的
// (user_id, book_id, active) 联合索引。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Book{},
		&domain.BorrowRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	return nil
}
