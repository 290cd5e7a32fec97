package errs

import (
	"errors"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	// ErrOutOfStock: no copies left to lend.
	ErrOutOfStock = errors.New("no copies available")
	// ErrLoanExists: the user already holds an unreturned copy of the book.
	ErrLoanExists = errors.New("active loan already exists")
	// ErrInsufficientStock: a stock adjustment would drive stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrBusy: lock contention on the book row; safe to retry.
	ErrBusy        = errors.New("resource busy, retry")
	ErrEmailExists = errors.New("email already registered")
)
