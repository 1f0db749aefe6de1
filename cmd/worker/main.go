package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/optica-admin/internal/email"
	"github.com/jwalitptl/optica-admin/internal/repository/postgres"
	"github.com/jwalitptl/optica-admin/pkg/logger"
	"github.com/jwalitptl/optica-admin/pkg/messaging"
	"github.com/jwalitptl/optica-admin/pkg/messaging/redis"
	"github.com/jwalitptl/optica-admin/pkg/metrics"
	"github.com/jwalitptl/optica-admin/pkg/worker"
)

type WorkerConfig struct {
	HealthAddr string `envconfig:"WORKER_HEALTH_ADDR" default:":8081"`
	// Notify turns discount decision e-mails on.
	Notify bool `envconfig:"WORKER_NOTIFY" default:"true"`
}

type Config struct {
	Worker   WorkerConfig
	Database postgres.Config
	Redis    redis.Config
	Outbox   worker.OutboxProcessorConfig
	Cleanup  worker.CleanupConfig
	SMTP     email.Config
	Log      logger.Config
}

// loadConfig reads every section from the environment. Database settings use
// the DB_ prefix; the other sections carry full variable names in their tags.
func loadConfig() (*Config, error) {
	var cfg Config
	sections := []struct {
		prefix string
		target interface{}
	}{
		{"", &cfg.Worker},
		{"DB", &cfg.Database},
		{"", &cfg.Redis},
		{"", &cfg.Outbox},
		{"", &cfg.Cleanup},
		{"", &cfg.SMTP},
		{"", &cfg.Log},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.target); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "Failed to load config")
	}
	log := logger.NewLogger(&cfg.Log).With("worker")

	if err := run(cfg, log); err != nil {
		log.Error(err, "Worker stopped")
		os.Exit(1)
	}
}

func run(cfg *Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.NewMetrics(nil, "optica", "worker")

	broker, err := redis.NewRedisBroker(cfg.Redis, log.Zerolog(), redis.WithMetrics(m))
	if err != nil {
		return err
	}
	feed := messaging.NewChangeFeed(broker, log.Zerolog())
	defer feed.Close()

	outboxRepo := postgres.NewOutboxRepository(postgres.NewBaseRepository(db))

	var opts []worker.Option
	if cfg.Worker.Notify {
		mailer := email.NewService(email.NewDialer(cfg.SMTP), cfg.SMTP.From, log.With("email").Zerolog())
		opts = append(opts, worker.WithNotifier(mailer))
	}
	processor, err := worker.NewOutboxProcessor(worker.NewOutboxStore(outboxRepo), feed, cfg.Outbox, log, m, opts...)
	if err != nil {
		return err
	}
	cleanup := worker.NewOutboxCleanupWorker(outboxRepo, cfg.Cleanup, log)

	srv := &http.Server{Addr: cfg.Worker.HealthAddr, Handler: healthMux(db)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		processor.Start(gctx)
		return nil
	})
	g.Go(func() error {
		cleanup.Start(gctx)
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func healthMux(db *sqlx.DB) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
