package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"baryo/internal/audit"
	"baryo/internal/document"
	documenthandler "baryo/internal/document/handler"
	jwttoken "baryo/internal/jwt_token"
	"baryo/internal/notify"
	"baryo/internal/platform/config"
	"baryo/internal/platform/httpserver"
	"baryo/internal/platform/logger"
	"baryo/internal/platform/metrics"
	platformredis "baryo/internal/platform/redis"
	"baryo/internal/registration"
	registrationhandler "baryo/internal/registration/handler"
	"baryo/internal/registration/wizard"
	"baryo/internal/submission"
	httptransport "baryo/internal/transport/http"
	"baryo/pkg/platform/seal"
)

const auditBuffer = 256

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	notifier := notify.NewSink(log, m)
	forwarder := submission.NewClient(cfg.UpstreamAPI.BaseURL, cfg.UpstreamAPI.Timeout, m)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "baryo", "baryo-clients")
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	// Session stores: sealed Redis when configured, in-memory otherwise.
	var wizardStore wizard.Store = wizard.NewInMemoryStore()
	var documentStore document.Store = document.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		sealer, err := seal.New(cfg.SessionSealKey)
		if err != nil {
			return err
		}
		wizardStore = wizard.NewRedisStore(redisClient.Client, sealer, cfg.SessionTTL)
		documentStore = document.NewRedisStore(redisClient.Client, sealer, cfg.SessionTTL)
		log.Info("session stores backed by redis")
	} else {
		log.Warn("redis not configured, sessions are in-memory and lost on restart")
	}

	// Audit outbox: postgres when configured, in-memory otherwise.
	var auditStore audit.Store = audit.NewInMemoryStore()
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		pgStore := audit.NewPostgresStore(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return err
		}
		auditStore = pgStore
		log.Info("audit outbox backed by postgres")
	} else {
		log.Warn("postgres not configured, audit events are in-memory only")
	}

	publisher := audit.NewPublisher(auditBuffer, log, m)
	worker := audit.NewWorker(auditStore, publisher.Inbox(), log)

	var relay *audit.Relay
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := kgo.NewClient(kgo.SeedBrokers(cfg.Kafka.Brokers...))
		if err != nil {
			return err
		}
		defer kafkaClient.Close()
		relay = audit.NewRelay(auditStore, kafkaClient, cfg.Kafka.Topic, log, m)
		if err := relay.EnsureTopic(ctx, 1, 1); err != nil {
			return err
		}
		log.Info("audit relay enabled", slog.String("topic", cfg.Kafka.Topic))
	}

	registrationService := registration.NewService(
		wizardStore, forwarder, notifier, publisher, m, log, cfg.Locality)
	documentService := document.NewService(
		documentStore, forwarder, notifier, publisher, m, log)

	router := httptransport.NewRouter(
		registrationhandler.New(registrationService, log, m, jwtValidator),
		documenthandler.New(documentService, forwarder, log, m, jwtValidator),
	)
	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting baryo gateway", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := worker.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if relay != nil {
		group.Go(func() error {
			err := relay.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
