package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lucas-podkowa/library-service/config"
	"github.com/lucas-podkowa/library-service/internal/events"
	"github.com/lucas-podkowa/library-service/internal/handler"
	"github.com/lucas-podkowa/library-service/internal/repository"
	"github.com/lucas-podkowa/library-service/internal/server"
	"github.com/lucas-podkowa/library-service/internal/service"
	"github.com/lucas-podkowa/library-service/migrations"
	"github.com/lucas-podkowa/library-service/pkg/kafka"
	"github.com/lucas-podkowa/library-service/pkg/logger"
	"github.com/lucas-podkowa/library-service/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %w", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo init %w", err)
	}

	var producer sarama.SyncProducer
	pub := service.NopPublisher()
	if len(cfg.Kafka.Addrs) > 0 {
		producer, err = kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka producer %w", err)
		}
		pub = events.NewPublisher(producer, log)
	}

	svc := service.NewService(repo, pub, log)
	h := handler.New(svc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	g, gCtx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case termSig := <-sig:
			log.Debug("Graceful shutdown", zap.Any("signal", termSig))
		case <-gCtx.Done():
		}

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err = g.Wait(); err != nil {
		log.Error("run", zap.Error(err))
	}
	if producer != nil {
		if cerr := producer.Close(); cerr != nil {
			log.Error("producer.Close", zap.Error(cerr))
		}
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return err
}
