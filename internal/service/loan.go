package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lucas-podkowa/library-service/internal/errs"
	"github.com/lucas-podkowa/library-service/internal/model"
	"github.com/lucas-podkowa/library-service/pkg/auth"
	"github.com/lucas-podkowa/library-service/pkg/kafka"
)

// RequestLoan lends one copy of a book to a user. Readers may only
// borrow for themselves. The stock decrement and the loan insert happen
// in one transaction inside the repository, so a failed request leaves
// both untouched.
func (s *Service) RequestLoan(ctx context.Context, p auth.Principal, req model.CreateLoanRequest) (model.Loan, error) {
	if !Allow(p, ActionLoanRequest, req.UserID) {
		return model.Loan{}, errs.ErrForbidden
	}
	loan, err := s.repo.Borrow(ctx, req.UserID, req.BookID, time.Now().UTC())
	if err != nil {
		return model.Loan{}, err
	}
	s.publish(kafka.EventLoanCreated, loan)
	return loan, nil
}

// ReturnLoan marks a loan returned and restores stock. Idempotent:
// returning an already returned loan hands back the current record.
func (s *Service) ReturnLoan(ctx context.Context, p auth.Principal, loanID int) (model.Loan, error) {
	loan, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return model.Loan{}, err
	}
	if !Allow(p, ActionLoanReturn, loan.UserID) {
		return model.Loan{}, errs.ErrForbidden
	}
	wasActive := loan.Active()
	returned, err := s.repo.Return(ctx, loanID, time.Now().UTC())
	if err != nil {
		return model.Loan{}, err
	}
	if wasActive {
		s.publish(kafka.EventLoanReturned, returned)
	}
	return returned, nil
}

// CancelLoan deletes a loan record outright; an active loan's copy goes
// back into circulation. Privileged roles only.
func (s *Service) CancelLoan(ctx context.Context, p auth.Principal, loanID int) error {
	if !Allow(p, ActionLoanCancel, 0) {
		return errs.ErrForbidden
	}
	loan, err := s.repo.Cancel(ctx, loanID)
	if err != nil {
		return err
	}
	s.publish(kafka.EventLoanCancelled, loan)
	return nil
}

func (s *Service) GetLoan(ctx context.Context, p auth.Principal, loanID int) (model.Loan, error) {
	loan, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return model.Loan{}, err
	}
	if !Allow(p, ActionLoanRead, loan.UserID) {
		return model.Loan{}, errs.ErrForbidden
	}
	return loan, nil
}

func (s *Service) ListLoans(ctx context.Context, p auth.Principal) ([]model.LoanDetail, error) {
	if !Allow(p, ActionLoanReadAll, 0) {
		return nil, errs.ErrForbidden
	}
	return s.repo.ListLoans(ctx)
}

func (s *Service) ListLoansByUser(ctx context.Context, p auth.Principal, userID int) ([]model.Loan, error) {
	if !Allow(p, ActionLoanRead, userID) {
		return nil, errs.ErrForbidden
	}
	return s.repo.ListLoansByUser(ctx, userID)
}

func (s *Service) ListLoansByBook(ctx context.Context, p auth.Principal, bookID int, onlyActive bool) ([]model.Loan, error) {
	if !Allow(p, ActionLoanReadAll, 0) {
		return nil, errs.ErrForbidden
	}
	if onlyActive {
		return s.repo.ListActiveLoansByBook(ctx, bookID)
	}
	return s.repo.ListLoansByBook(ctx, bookID)
}

func (s *Service) publish(eventType kafka.EventType, loan model.Loan) {
	at := loan.BorrowedAt
	if loan.ReturnedAt != nil {
		at = *loan.ReturnedAt
	}
	s.events.PublishLoanEvent(kafka.LoanEvent{
		Type:    eventType,
		LoanUID: loan.LoanUID,
		UserID:  loan.UserID,
		BookID:  loan.BookID,
		At:      at,
	})
	s.log.Debug("loan event",
		zap.String("type", string(eventType)),
		zap.String("loanUid", loan.LoanUID))
}
