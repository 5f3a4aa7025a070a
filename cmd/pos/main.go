package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/dp_pos/internal/events"
	"github.com/Skotchmaster/dp_pos/internal/httpserver"
	"github.com/Skotchmaster/dp_pos/internal/idempotency"
	"github.com/Skotchmaster/dp_pos/internal/notify"
	"github.com/Skotchmaster/dp_pos/internal/repo"
	"github.com/Skotchmaster/dp_pos/internal/scheduler"
	"github.com/Skotchmaster/dp_pos/internal/search"
	"github.com/Skotchmaster/dp_pos/internal/service"
	"github.com/Skotchmaster/dp_pos/pkg/config"
	pkgdb "github.com/Skotchmaster/dp_pos/pkg/db"
	"github.com/Skotchmaster/dp_pos/pkg/logging"
	"github.com/Skotchmaster/dp_pos/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/dp_pos/pkg/middleware/logging"
	"github.com/Skotchmaster/dp_pos/pkg/middleware/metrics"
	"github.com/Skotchmaster/dp_pos/pkg/validation"
)

const smsTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	logger := logging.NewFile(cfg.LogLevel, cfg.LogFile).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("load timezone %q: %v", cfg.Timezone, err)
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	store := &repo.GormRepo{DB: db}
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var sender notify.Sender = notify.LogSender{Log: logger}
	if cfg.SMSGatewayURL != "" {
		sender = notify.NewHTTPGateway(cfg.SMSGatewayURL, cfg.SMSGatewayToken, cfg.SMSSenderID, smsTimeout)
	} else {
		logger.Warn("sms_gateway_disabled", "reason", "SMS_GATEWAY_URL is empty")
	}
	notifier := notify.NewDispatcher(sender, smsTimeout)

	var publisher service.EventPublisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
		publisher = producer
	}

	var idem service.IdempotencyStore
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		idem = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
	} else {
		idem = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
	}

	var index service.Indexer
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = search.NewIndex(es)
	}

	orders := &service.OrderService{
		Customers:   store,
		Items:       store,
		Orders:      store,
		Notifier:    notifier,
		Events:      publisher,
		Idem:        idem,
		Topic:       cfg.EventsTopic,
		StepTimeout: cfg.StepTimeout,
		Location:    loc,
	}
	customers := &service.CustomerService{Customers: store, Index: index, Notifier: notifier, StepTimeout: cfg.StepTimeout}
	items := &service.ItemService{Items: store, Index: index, StepTimeout: cfg.StepTimeout}
	invoices := &service.InvoiceService{Customers: store, Orders: store, StepTimeout: cfg.StepTimeout}
	reports := &service.ReportService{Customers: store, Items: store, Orders: store, StepTimeout: cfg.StepTimeout, Location: loc}
	auth := &service.AuthService{
		Users:           store,
		Notifier:        notifier,
		JWTSecret:       cfg.JWTAccessSecret,
		AccessTTL:       cfg.AccessTTL,
		AdminAlertPhone: cfg.AdminAlertPhone,
	}

	if cfg.AdminEmail != "" {
		if err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminBranch); err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
	}

	sched, err := scheduler.New(loc, cfg.ReminderAt, customers, logger)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	sched.Start()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.Echo{}
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORS())
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.SkipPaths = []string{"/health/live", "/health/ready", "/metrics", "/auth/login", "/auth/register"}
		e.Use(csrf.Middleware(csrfCfg))
	}

	ready := []httpserver.Pinger{store}
	if rdb != nil {
		ready = append(ready, redisPinger{rdb})
	}
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:     &httpserver.AuthHTTP{Svc: auth},
		CustomerHandler: &httpserver.CustomerHTTP{Svc: customers},
		ItemHandler:     &httpserver.ItemHTTP{Svc: items},
		OrderHandler:    &httpserver.OrderHTTP{Svc: orders, Invoices: invoices},
		ReportHandler:   &httpserver.ReportHTTP{Svc: reports, Invoices: invoices},
		JWTSecret:       cfg.JWTAccessSecret,
		Sessions:        store,
		Ready:           ready,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("pos listening", "addr", srv.Addr, "next_reminder", sched.NextReminder())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	sched.Stop()

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka_close_failed", "error", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("pos stopped")
}

type redisPinger struct {
	rdb *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}
