package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lucas-podkowa/library-service/internal/errs"
	"github.com/lucas-podkowa/library-service/internal/model"
	"github.com/lucas-podkowa/library-service/internal/service"
	"github.com/lucas-podkowa/library-service/pkg/auth"
	"github.com/lucas-podkowa/library-service/pkg/kafka"

	repo_mocks "github.com/lucas-podkowa/library-service/internal/repository/mocks"
)

type capturePublisher struct {
	events []kafka.LoanEvent
}

func (c *capturePublisher) PublishLoanEvent(event kafka.LoanEvent) {
	c.events = append(c.events, event)
}

var (
	reader    = auth.Principal{UserID: 7, Name: "Ana", Role: auth.RoleReader}
	librarian = auth.Principal{UserID: 2, Name: "Luis", Role: auth.RoleLibrarian}
)

func TestService_RequestLoan(t *testing.T) {
	t.Parallel()
	activeLoan := model.Loan{
		ID:         1,
		LoanUID:    "0c4e9e02-6d64-4a0c-8efd-2a3bd1c5f1b0",
		UserID:     7,
		BookID:     3,
		Status:     model.StatusActive,
		BorrowedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	type mockBehavior func(r *repo_mocks.MockRepository)

	tests := []struct {
		name         string
		principal    auth.Principal
		req          model.CreateLoanRequest
		mockBehavior mockBehavior
		want         model.Loan
		wantErr      error
		wantEvents   int
	}{
		{
			name:      "reader borrows for self",
			principal: reader,
			req:       model.CreateLoanRequest{UserID: 7, BookID: 3},
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().
					Borrow(gomock.Any(), 7, 3, gomock.Any()).
					Return(activeLoan, nil)
			},
			want:       activeLoan,
			wantEvents: 1,
		},
		{
			name:         "reader cannot borrow for another user",
			principal:    reader,
			req:          model.CreateLoanRequest{UserID: 8, BookID: 3},
			mockBehavior: func(r *repo_mocks.MockRepository) {},
			wantErr:      errs.ErrForbidden,
		},
		{
			name:      "librarian borrows for any user",
			principal: librarian,
			req:       model.CreateLoanRequest{UserID: 7, BookID: 3},
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().
					Borrow(gomock.Any(), 7, 3, gomock.Any()).
					Return(activeLoan, nil)
			},
			want:       activeLoan,
			wantEvents: 1,
		},
		{
			name:      "out of stock",
			principal: reader,
			req:       model.CreateLoanRequest{UserID: 7, BookID: 3},
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().
					Borrow(gomock.Any(), 7, 3, gomock.Any()).
					Return(model.Loan{}, errs.ErrOutOfStock)
			},
			wantErr: errs.ErrOutOfStock,
		},
		{
			name:      "duplicate active loan",
			principal: reader,
			req:       model.CreateLoanRequest{UserID: 7, BookID: 3},
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().
					Borrow(gomock.Any(), 7, 3, gomock.Any()).
					Return(model.Loan{}, errs.ErrLoanExists)
			},
			wantErr: errs.ErrLoanExists,
		},
		{
			name:      "busy is surfaced for retry",
			principal: reader,
			req:       model.CreateLoanRequest{UserID: 7, BookID: 3},
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().
					Borrow(gomock.Any(), 7, 3, gomock.Any()).
					Return(model.Loan{}, errs.ErrBusy)
			},
			wantErr: errs.ErrBusy,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			repo := repo_mocks.NewMockRepository(c)
			tt.mockBehavior(repo)
			pub := &capturePublisher{}
			svc := service.NewService(repo, pub, zap.NewNop())

			loan, err := svc.RequestLoan(context.Background(), tt.principal, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.want, loan)
			}
			require.Len(t, pub.events, tt.wantEvents)
			if tt.wantEvents > 0 {
				require.Equal(t, kafka.EventLoanCreated, pub.events[0].Type)
				require.Equal(t, tt.want.LoanUID, pub.events[0].LoanUID)
			}
		})
	}
}

func TestService_ReturnLoan(t *testing.T) {
	t.Parallel()
	borrowedAt := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	returnedAt := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	activeLoan := model.Loan{
		ID: 1, LoanUID: "uid-1", UserID: 7, BookID: 3,
		Status: model.StatusActive, BorrowedAt: borrowedAt,
	}
	returnedLoan := model.Loan{
		ID: 1, LoanUID: "uid-1", UserID: 7, BookID: 3,
		Status: model.StatusReturned, BorrowedAt: borrowedAt, ReturnedAt: &returnedAt,
	}

	t.Run("owner self-return", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		repo := repo_mocks.NewMockRepository(c)
		repo.EXPECT().GetLoan(gomock.Any(), 1).Return(activeLoan, nil)
		repo.EXPECT().Return(gomock.Any(), 1, gomock.Any()).Return(returnedLoan, nil)
		pub := &capturePublisher{}
		svc := service.NewService(repo, pub, zap.NewNop())

		loan, err := svc.ReturnLoan(context.Background(), reader, 1)
		require.NoError(t, err)
		require.Equal(t, returnedLoan, loan)
		require.Len(t, pub.events, 1)
		require.Equal(t, kafka.EventLoanReturned, pub.events[0].Type)
	})

	t.Run("reader cannot return someone else's loan", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		repo := repo_mocks.NewMockRepository(c)
		other := activeLoan
		other.UserID = 8
		repo.EXPECT().GetLoan(gomock.Any(), 1).Return(other, nil)
		svc := service.NewService(repo, &capturePublisher{}, zap.NewNop())

		_, err := svc.ReturnLoan(context.Background(), reader, 1)
		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("already returned is idempotent and publishes nothing", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		repo := repo_mocks.NewMockRepository(c)
		repo.EXPECT().GetLoan(gomock.Any(), 1).Return(returnedLoan, nil)
		repo.EXPECT().Return(gomock.Any(), 1, gomock.Any()).Return(returnedLoan, nil)
		pub := &capturePublisher{}
		svc := service.NewService(repo, pub, zap.NewNop())

		loan, err := svc.ReturnLoan(context.Background(), librarian, 1)
		require.NoError(t, err)
		require.Equal(t, returnedLoan, loan)
		require.Empty(t, pub.events)
	})

	t.Run("loan not found", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		repo := repo_mocks.NewMockRepository(c)
		repo.EXPECT().GetLoan(gomock.Any(), 99).Return(model.Loan{}, errs.ErrNotFound)
		svc := service.NewService(repo, &capturePublisher{}, zap.NewNop())

		_, err := svc.ReturnLoan(context.Background(), librarian, 99)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestService_CancelLoan(t *testing.T) {
	t.Parallel()
	activeLoan := model.Loan{
		ID: 1, LoanUID: "uid-1", UserID: 7, BookID: 3,
		Status: model.StatusActive, BorrowedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	t.Run("readers may not cancel, not even their own", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		repo := repo_mocks.NewMockRepository(c)
		svc := service.NewService(repo, &capturePublisher{}, zap.NewNop())

		err := svc.CancelLoan(context.Background(), reader, 1)
		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("librarian cancels an active loan", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		repo := repo_mocks.NewMockRepository(c)
		repo.EXPECT().Cancel(gomock.Any(), 1).Return(activeLoan, nil)
		pub := &capturePublisher{}
		svc := service.NewService(repo, pub, zap.NewNop())

		require.NoError(t, svc.CancelLoan(context.Background(), librarian, 1))
		require.Len(t, pub.events, 1)
		require.Equal(t, kafka.EventLoanCancelled, pub.events[0].Type)
	})
}
