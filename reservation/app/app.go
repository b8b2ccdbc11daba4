package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/booking-service/pkg/auth"
	"github.com/Astemirdum/booking-service/pkg/circuit_breaker"
	"github.com/Astemirdum/booking-service/pkg/database"
	"github.com/Astemirdum/booking-service/pkg/kafka"
	"github.com/Astemirdum/booking-service/pkg/logger"
	"github.com/Astemirdum/booking-service/pkg/rabbitmq"
	"github.com/Astemirdum/booking-service/reservation/config"
	"github.com/Astemirdum/booking-service/reservation/internal/events"
	"github.com/Astemirdum/booking-service/reservation/internal/handler"
	"github.com/Astemirdum/booking-service/reservation/internal/repository"
	"github.com/Astemirdum/booking-service/reservation/internal/server"
	"github.com/Astemirdum/booking-service/reservation/internal/service"
	"github.com/Astemirdum/booking-service/reservation/migrations"
)

func Run(cfg *config.Config) error {
	log, err := logger.NewLogger(cfg.Log, "reservation")
	if err != nil {
		return fmt.Errorf("logger %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("time zone %w", err)
	}
	creds, err := auth.NewCredentials(cfg.Auth)
	if err != nil {
		return fmt.Errorf("credentials %w", err)
	}

	db, err := database.NewDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %w", err)
	}
	defer db.Close()

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo reservations %w", err)
	}

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return fmt.Errorf("events publisher %w", err)
	}
	defer publisher.Close()

	sessions, closeSessions, err := newSessionStore(ctx, cfg.Session)
	if err != nil {
		return fmt.Errorf("session store %w", err)
	}
	defer closeSessions() //nolint:errcheck

	clock := service.RealClock{}
	svc := service.NewService(repo, log,
		service.WithClock(clock),
		service.WithValidator(service.NewValidator(loc, clock)),
		service.WithPublisher(publisher),
	)
	tokens := auth.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	h := handler.New(svc, creds, sessions, tokens, cfg.Session.TTL, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(srv.Run)
	gg.Go(func() error {
		<-ctx.Done()
		log.Debug("Graceful shutdown", zap.Error(context.Cause(ctx)))

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})
	if err = gg.Wait(); err != nil {
		log.Error("server", zap.Error(err))
		return err
	}
	log.Info("Graceful shutdown finished")
	return nil
}

func newPublisher(cfg *config.Config, log *zap.Logger) (events.Publisher, error) {
	var next events.Publisher
	switch cfg.Events.Broker {
	case events.BrokerNone, "":
		return events.NewNop(), nil
	case events.BrokerKafka:
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, fmt.Errorf("kafka.NewProducer %w", err)
		}
		next = events.NewKafka(producer, cfg.Kafka.TopicOrDefault())
	case events.BrokerAMQP:
		pub, err := rabbitmq.NewPublisher(cfg.AMQP)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq.NewPublisher %w", err)
		}
		next = events.NewAMQP(pub)
	default:
		return nil, fmt.Errorf("unknown events broker %q", cfg.Events.Broker)
	}
	return events.WithBreaker(next, circuit_breaker.New(cfg.Events.Breaker), log), nil
}

// newSessionStore uses Redis when an address is configured and process memory otherwise.
func newSessionStore(ctx context.Context, cfg config.Session) (auth.SessionStore, func() error, error) {
	if cfg.Redis.Addr == "" {
		return auth.NewMemorySessionStore(cfg.TTL), func() error { return nil }, nil
	}
	return auth.NewRedisSessionStore(ctx, cfg.Redis, cfg.TTL)
}
