package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lucas-podkowa/library-service/internal/errs"
	"github.com/lucas-podkowa/library-service/internal/model"
)

var bookColumns = []string{"id", "title", "author", "publisher", "year", "genre", "cover", "stock"}

func (r *repository) GetBook(ctx context.Context, bookID int) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(bookTableName).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, classify(err, "GetBook")
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context, onlyAvailable bool) ([]model.Book, error) {
	q := qb.Select(bookColumns...).
		From(bookTableName).
		OrderBy("title")
	if onlyAvailable {
		q = q.Where(sq.Gt{"stock": 0})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, classify(err, "ListBooks")
	}
	return books, nil
}

func (r *repository) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	query, args, err := qb.Insert(bookTableName).
		Columns("title", "author", "publisher", "year", "genre", "cover", "stock").
		Values(req.Title, req.Author, req.Publisher, req.Year, req.Genre, req.Cover, req.Stock).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, classify(err, "CreateBook")
	}
	return book, nil
}

func (r *repository) UpdateBook(ctx context.Context, bookID int, req model.CreateBookRequest) (model.Book, error) {
	query, args, err := qb.Update(bookTableName).
		Set("title", req.Title).
		Set("author", req.Author).
		Set("publisher", req.Publisher).
		Set("year", req.Year).
		Set("genre", req.Genre).
		Set("cover", req.Cover).
		Where(sq.Eq{"id": bookID}).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, classify(err, "UpdateBook")
	}
	return book, nil
}

func (r *repository) DeleteBook(ctx context.Context, bookID int) error {
	query, args, err := qb.Delete(bookTableName).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err, "DeleteBook")
	}
	if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck
		return errs.ErrNotFound
	}
	return nil
}

// AdjustStock applies stock += delta as a single statement; the
// check constraint rejects any result below zero.
func (r *repository) AdjustStock(ctx context.Context, bookID, delta int) (model.Book, error) {
	q := `
update book
    set stock = stock + $2
where id = $1
returning *`

	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, bookID, delta); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, classify(err, "AdjustStock")
	}
	return book, nil
}

func (r *repository) SetStock(ctx context.Context, bookID, stock int) (model.Book, error) {
	q := `
update book
    set stock = $2
where id = $1
returning *`

	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, bookID, stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, classify(err, "SetStock")
	}
	return book, nil
}
