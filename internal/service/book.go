package service

import (
	"context"

	"github.com/lucas-podkowa/library-service/internal/errs"
	"github.com/lucas-podkowa/library-service/internal/model"
	"github.com/lucas-podkowa/library-service/pkg/auth"
)

func (s *Service) GetBook(ctx context.Context, bookID int) (model.Book, error) {
	return s.repo.GetBook(ctx, bookID)
}

func (s *Service) ListBooks(ctx context.Context, onlyAvailable bool) ([]model.Book, error) {
	return s.repo.ListBooks(ctx, onlyAvailable)
}

func (s *Service) CreateBook(ctx context.Context, p auth.Principal, req model.CreateBookRequest) (model.Book, error) {
	if !Allow(p, ActionBookManage, 0) {
		return model.Book{}, errs.ErrForbidden
	}
	return s.repo.CreateBook(ctx, req)
}

func (s *Service) UpdateBook(ctx context.Context, p auth.Principal, bookID int, req model.CreateBookRequest) (model.Book, error) {
	if !Allow(p, ActionBookManage, 0) {
		return model.Book{}, errs.ErrForbidden
	}
	return s.repo.UpdateBook(ctx, bookID, req)
}

func (s *Service) DeleteBook(ctx context.Context, p auth.Principal, bookID int) error {
	if !Allow(p, ActionBookManage, 0) {
		return errs.ErrForbidden
	}
	return s.repo.DeleteBook(ctx, bookID)
}

// UpdateStock is the direct stock correction used for catalog fixes; it
// bypasses the loan flow but still refuses to drive stock negative.
func (s *Service) UpdateStock(ctx context.Context, p auth.Principal, bookID int, req model.UpdateStockRequest) (model.Book, error) {
	if !Allow(p, ActionStockAdjust, 0) {
		return model.Book{}, errs.ErrForbidden
	}
	if req.Delta != nil {
		return s.repo.AdjustStock(ctx, bookID, *req.Delta)
	}
	return s.repo.SetStock(ctx, bookID, *req.Stock)
}
