package model

import (
	"database/sql"
	"time"

	"github.com/lucas-podkowa/library-service/pkg/auth"
)

type Book struct {
	ID        int    `json:"id" db:"id"`
	Title     string `json:"title" db:"title"`
	Author    string `json:"author" db:"author"`
	Publisher string `json:"publisher" db:"publisher"`
	Year      int    `json:"year" db:"year"`
	Genre     string `json:"genre" db:"genre"`
	Cover     string `json:"cover,omitempty" db:"cover"`
	Stock     int    `json:"stock" db:"stock"`
}

type CreateBookRequest struct {
	Title     string `json:"title" validate:"required"`
	Author    string `json:"author" validate:"required"`
	Publisher string `json:"publisher"`
	Year      int    `json:"year"`
	Genre     string `json:"genre"`
	Cover     string `json:"cover"`
	Stock     int    `json:"stock" validate:"gte=0"`
}

// UpdateStockRequest patches a book's stock either relatively (delta)
// or absolutely (stock). Exactly one of the two must be set.
type UpdateStockRequest struct {
	Delta *int `json:"delta"`
	Stock *int `json:"stock" validate:"omitempty,gte=0"`
}

type LoanStatus string

const (
	StatusActive   LoanStatus = "ACTIVE"
	StatusReturned LoanStatus = "RETURNED"
)

// Loan keeps its status explicit; the nullable return date is derived
// at the storage boundary only.
type Loan struct {
	ID         int        `json:"id"`
	LoanUID    string     `json:"loanUid"`
	UserID     int        `json:"userId"`
	BookID     int        `json:"bookId"`
	Status     LoanStatus `json:"status"`
	BorrowedAt time.Time  `json:"borrowedAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
}

func (l Loan) Active() bool { return l.Status == StatusActive }

// LoanRow is the persisted shape of a Loan.
type LoanRow struct {
	ID         int          `db:"id"`
	LoanUID    string       `db:"loan_uid"`
	UserID     int          `db:"user_id"`
	BookID     int          `db:"book_id"`
	BorrowedAt time.Time    `db:"borrowed_at"`
	ReturnedAt sql.NullTime `db:"returned_at"`
}

func (r LoanRow) ToLoan() Loan {
	l := Loan{
		ID:         r.ID,
		LoanUID:    r.LoanUID,
		UserID:     r.UserID,
		BookID:     r.BookID,
		Status:     StatusActive,
		BorrowedAt: r.BorrowedAt,
	}
	if r.ReturnedAt.Valid {
		t := r.ReturnedAt.Time
		l.Status = StatusReturned
		l.ReturnedAt = &t
	}
	return l
}

// LoanDetail is a loan joined with its book title and borrower name,
// used by the privileged list endpoint.
type LoanDetail struct {
	Loan
	BookTitle string `json:"bookTitle"`
	UserName  string `json:"userName"`
}

type LoanDetailRow struct {
	LoanRow
	BookTitle string `db:"book_title"`
	UserName  string `db:"user_name"`
}

func (r LoanDetailRow) ToLoanDetail() LoanDetail {
	return LoanDetail{
		Loan:      r.ToLoan(),
		BookTitle: r.BookTitle,
		UserName:  r.UserName,
	}
}

type CreateLoanRequest struct {
	UserID int `json:"userId" validate:"required,gt=0"`
	BookID int `json:"bookId" validate:"required,gt=0"`
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         auth.Role `json:"role" db:"role"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	LastName string `json:"lastName"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	ExpiresIn   int    `json:"expiresIn"`
	AccessToken string `json:"accessToken"`
}
