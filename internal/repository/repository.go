package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lucas-podkowa/library-service/internal/errs"
	"github.com/lucas-podkowa/library-service/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	// books
	GetBook(ctx context.Context, bookID int) (model.Book, error)
	ListBooks(ctx context.Context, onlyAvailable bool) ([]model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, bookID int, req model.CreateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, bookID int) error
	AdjustStock(ctx context.Context, bookID, delta int) (model.Book, error)
	SetStock(ctx context.Context, bookID, stock int) (model.Book, error)

	// loans
	Borrow(ctx context.Context, userID, bookID int, at time.Time) (model.Loan, error)
	Return(ctx context.Context, loanID int, at time.Time) (model.Loan, error)
	Cancel(ctx context.Context, loanID int) (model.Loan, error)
	GetLoan(ctx context.Context, loanID int) (model.Loan, error)
	ListLoans(ctx context.Context) ([]model.LoanDetail, error)
	ListLoansByUser(ctx context.Context, userID int) ([]model.Loan, error)
	ListLoansByBook(ctx context.Context, bookID int) ([]model.Loan, error)
	ListActiveLoansByBook(ctx context.Context, bookID int) ([]model.Loan, error)

	// users
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	bookTableName = `book`
	loanTableName = `loan`
	userTableName = `users`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// classify translates postgres constraint and locking failures into the
// domain error taxonomy; everything else is wrapped as a storage failure.
func classify(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.LockNotAvailable:
			return errs.ErrBusy
		case pgerrcode.CheckViolation:
			if pgErr.ConstraintName == "book_stock_non_negative" {
				return errs.ErrInsufficientStock
			}
		case pgerrcode.UniqueViolation:
			switch pgErr.ConstraintName {
			case "loan_active_user_book_uq":
				return errs.ErrLoanExists
			case "users_email_key":
				return errs.ErrEmailExists
			}
		}
	}
	return errors.Wrap(err, op)
}
