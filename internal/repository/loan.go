package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lucas-podkowa/library-service/internal/errs"
	"github.com/lucas-podkowa/library-service/internal/model"
)

var loanColumns = []string{"id", "loan_uid", "user_id", "book_id", "borrowed_at", "returned_at"}

// beginLoanTx opens a transaction with a bounded lock_timeout so that
// contention on a book row surfaces as ErrBusy instead of blocking.
func (r *repository) beginLoanTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	if _, err := tx.ExecContext(ctx, `set local lock_timeout = '500ms'`); err != nil {
		_ = tx.Rollback()
		return nil, errors.Wrap(err, "set lock_timeout")
	}
	return tx, nil
}

// Borrow creates an active loan and decrements the book's stock as one
// transaction. The book row is locked first, so two requests for the
// last copy serialize and the loser sees stock == 0.
func (r *repository) Borrow(ctx context.Context, userID, bookID int, at time.Time) (model.Loan, error) {
	tx, err := r.beginLoanTx(ctx)
	if err != nil {
		return model.Loan{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var stock int
	err = tx.QueryRowContext(ctx, `select stock from book where id = $1 for update`, bookID).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNotFound
		}
		return model.Loan{}, classify(err, "Borrow: lock book")
	}
	if stock <= 0 {
		return model.Loan{}, errs.ErrOutOfStock
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`select exists(select 1 from loan where user_id = $1 and book_id = $2 and returned_at is null)`,
		userID, bookID).Scan(&exists)
	if err != nil {
		return model.Loan{}, classify(err, "Borrow: check active loan")
	}
	if exists {
		return model.Loan{}, errs.ErrLoanExists
	}

	q := fmt.Sprintf(`insert into %s (loan_uid, user_id, book_id, borrowed_at)
values ($1, $2, $3, $4)
returning *`, loanTableName)

	var row model.LoanRow
	if err := tx.GetContext(ctx, &row, q, uuid.New(), userID, bookID, at); err != nil {
		return model.Loan{}, classify(err, "Borrow: insert loan")
	}

	if _, err := tx.ExecContext(ctx, `update book set stock = stock - 1 where id = $1`, bookID); err != nil {
		return model.Loan{}, classify(err, "Borrow: decrement stock")
	}

	if err := tx.Commit(); err != nil {
		return model.Loan{}, errors.Wrap(err, "Borrow: commit")
	}
	return row.ToLoan(), nil
}

// Return marks a loan returned and restores the book's stock. Already
// returned loans are a no-op: the current record comes back unchanged.
func (r *repository) Return(ctx context.Context, loanID int, at time.Time) (model.Loan, error) {
	tx, err := r.beginLoanTx(ctx)
	if err != nil {
		return model.Loan{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var row model.LoanRow
	err = tx.GetContext(ctx, &row, `select * from loan where id = $1 for update`, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNotFound
		}
		return model.Loan{}, classify(err, "Return: lock loan")
	}

	if row.ReturnedAt.Valid {
		return row.ToLoan(), tx.Commit()
	}

	q := `update loan set returned_at = $2 where id = $1 returning *`
	if err := tx.GetContext(ctx, &row, q, loanID, at); err != nil {
		return model.Loan{}, classify(err, "Return: mark returned")
	}

	if _, err := tx.ExecContext(ctx, `update book set stock = stock + 1 where id = $1`, row.BookID); err != nil {
		return model.Loan{}, classify(err, "Return: increment stock")
	}

	if err := tx.Commit(); err != nil {
		return model.Loan{}, errors.Wrap(err, "Return: commit")
	}
	return row.ToLoan(), nil
}

// Cancel deletes a loan record; an active loan releases its copy back
// to stock in the same transaction.
func (r *repository) Cancel(ctx context.Context, loanID int) (model.Loan, error) {
	tx, err := r.beginLoanTx(ctx)
	if err != nil {
		return model.Loan{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var row model.LoanRow
	err = tx.GetContext(ctx, &row, `select * from loan where id = $1 for update`, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNotFound
		}
		return model.Loan{}, classify(err, "Cancel: lock loan")
	}

	if !row.ReturnedAt.Valid {
		if _, err := tx.ExecContext(ctx, `update book set stock = stock + 1 where id = $1`, row.BookID); err != nil {
			return model.Loan{}, classify(err, "Cancel: release stock")
		}
	}

	if _, err := tx.ExecContext(ctx, `delete from loan where id = $1`, loanID); err != nil {
		return model.Loan{}, classify(err, "Cancel: delete loan")
	}

	if err := tx.Commit(); err != nil {
		return model.Loan{}, errors.Wrap(err, "Cancel: commit")
	}
	return row.ToLoan(), nil
}

func (r *repository) GetLoan(ctx context.Context, loanID int) (model.Loan, error) {
	query, args, err := qb.Select(loanColumns...).
		From(loanTableName).
		Where(sq.Eq{"id": loanID}).
		ToSql()
	if err != nil {
		return model.Loan{}, err
	}

	var row model.LoanRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNotFound
		}
		return model.Loan{}, classify(err, "GetLoan")
	}
	return row.ToLoan(), nil
}

func (r *repository) ListLoans(ctx context.Context) ([]model.LoanDetail, error) {
	q := `
select l.id, l.loan_uid, l.user_id, l.book_id, l.borrowed_at, l.returned_at,
       b.title as book_title,
       concat_ws(' ', u.name, u.last_name) as user_name
from loan l
    join book b on b.id = l.book_id
    join users u on u.id = l.user_id
order by l.borrowed_at desc, l.id desc`

	var rows []model.LoanDetailRow
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, classify(err, "ListLoans")
	}
	items := make([]model.LoanDetail, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.ToLoanDetail())
	}
	return items, nil
}

func (r *repository) ListLoansByUser(ctx context.Context, userID int) ([]model.Loan, error) {
	query, args, err := qb.Select(loanColumns...).
		From(loanTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("borrowed_at desc", "id desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.selectLoans(ctx, query, args...)
}

func (r *repository) ListLoansByBook(ctx context.Context, bookID int) ([]model.Loan, error) {
	query, args, err := qb.Select(loanColumns...).
		From(loanTableName).
		Where(sq.Eq{"book_id": bookID}).
		OrderBy("borrowed_at desc", "id desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.selectLoans(ctx, query, args...)
}

func (r *repository) ListActiveLoansByBook(ctx context.Context, bookID int) ([]model.Loan, error) {
	query, args, err := qb.Select(loanColumns...).
		From(loanTableName).
		Where(sq.Eq{"book_id": bookID}).
		Where("returned_at is null").
		OrderBy("borrowed_at desc", "id desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.selectLoans(ctx, query, args...)
}

func (r *repository) selectLoans(ctx context.Context, query string, args ...interface{}) ([]model.Loan, error) {
	var rows []model.LoanRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.Error("selectLoans", zap.String("q", query), zap.Any("args", args))
		return nil, classify(err, "selectLoans")
	}
	loans := make([]model.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, row.ToLoan())
	}
	return loans, nil
}
