package handler

import (
	"context"

	"github.com/lucas-podkowa/library-service/internal/model"
	"github.com/lucas-podkowa/library-service/internal/service"
	"github.com/lucas-podkowa/library-service/pkg/auth"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	// loans
	RequestLoan(ctx context.Context, p auth.Principal, req model.CreateLoanRequest) (model.Loan, error)
	ReturnLoan(ctx context.Context, p auth.Principal, loanID int) (model.Loan, error)
	CancelLoan(ctx context.Context, p auth.Principal, loanID int) error
	GetLoan(ctx context.Context, p auth.Principal, loanID int) (model.Loan, error)
	ListLoans(ctx context.Context, p auth.Principal) ([]model.LoanDetail, error)
	ListLoansByUser(ctx context.Context, p auth.Principal, userID int) ([]model.Loan, error)
	ListLoansByBook(ctx context.Context, p auth.Principal, bookID int, onlyActive bool) ([]model.Loan, error)

	// books
	GetBook(ctx context.Context, bookID int) (model.Book, error)
	ListBooks(ctx context.Context, onlyAvailable bool) ([]model.Book, error)
	CreateBook(ctx context.Context, p auth.Principal, req model.CreateBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, p auth.Principal, bookID int, req model.CreateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, p auth.Principal, bookID int) error
	UpdateStock(ctx context.Context, p auth.Principal, bookID int, req model.UpdateStockRequest) (model.Book, error)

	// users
	RegisterUser(ctx context.Context, req model.RegisterRequest) (model.User, error)
	Authenticate(ctx context.Context, req model.AuthRequest) (model.User, error)
}

var _ LibraryService = (*service.Service)(nil)
