package service

import (
	"go.uber.org/zap"

	"github.com/lucas-podkowa/library-service/internal/repository"
	"github.com/lucas-podkowa/library-service/pkg/kafka"
)

// EventPublisher emits loan lifecycle events after a transition has
// committed. Implementations must not fail the calling operation.
type EventPublisher interface {
	PublishLoanEvent(event kafka.LoanEvent)
}

type nopPublisher struct{}

func (nopPublisher) PublishLoanEvent(kafka.LoanEvent) {}

// NopPublisher is used when no broker is configured.
func NopPublisher() EventPublisher { return nopPublisher{} }

type Service struct {
	log    *zap.Logger
	repo   repository.Repository
	events EventPublisher
}

func NewService(repo repository.Repository, events EventPublisher, log *zap.Logger) *Service {
	if events == nil {
		events = NopPublisher()
	}
	return &Service{
		log:    log,
		repo:   repo,
		events: events,
	}
}
