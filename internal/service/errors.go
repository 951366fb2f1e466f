package service

import "errors"

// 业务层错误。Handler 只依赖这些标记值决定 HTTP 状态码。
var (
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrRegistrationFailed   = errors.New("username already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrBookNotFound         = errors.New("book not found")
	ErrBookUnavailable      = errors.New("book is not available for borrowing")
	ErrAlreadyBorrowed      = errors.New("you have already borrowed this book")
	ErrNoActiveBorrow       = errors.New("no active borrow record found for this book")
	ErrInternalServer       = errors.New("internal server error")
)
