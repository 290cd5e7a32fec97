package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

const LoanEventsTopic = "loan-events"

type Config struct {
	Addrs []string `yaml:"addrs" envconfig:"KAFKA_ADDRS"`
}

type EventType string

const (
	EventLoanCreated   EventType = "CREATED"
	EventLoanReturned  EventType = "RETURNED"
	EventLoanCancelled EventType = "CANCELLED"
)

// LoanEvent is the audit record published for every completed
// loan lifecycle transition.
type LoanEvent struct {
	Type    EventType `json:"type"`
	LoanUID string    `json:"loanUid"`
	UserID  int       `json:"userId"`
	BookID  int       `json:"bookId"`
	At      time.Time `json:"at"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
