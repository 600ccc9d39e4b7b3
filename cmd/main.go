package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/crisis_connect/internal/config"
	v1 "github.com/shenikar/crisis_connect/internal/handler/http/v1"
	"github.com/shenikar/crisis_connect/internal/metrics"
	"github.com/shenikar/crisis_connect/internal/notify"
	"github.com/shenikar/crisis_connect/internal/realtime"
	"github.com/shenikar/crisis_connect/internal/repository"
	"github.com/shenikar/crisis_connect/internal/repository/memory"
	"github.com/shenikar/crisis_connect/internal/service"
	"github.com/shenikar/crisis_connect/pkg/logger"
	"github.com/shenikar/crisis_connect/pkg/postgres"
	redisclient "github.com/shenikar/crisis_connect/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/crisis_connect/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// storage - набор репозиториев выбранного драйвера
type storage struct {
	users      service.UserRepository
	incidents  service.IncidentRepository
	cache      service.IncidentCache
	requests   service.HelpRequestRepository
	volunteers service.VolunteerRepository
	tasks      service.TaskRepository
	alerts     service.AlertRepository
	resources  service.ResourceRepository
	close      func()
}

// @title Crisis Connect API
// @version 1.0
// @description Disaster response coordination: incidents, help requests, volunteer tasks and realtime updates.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(cfg.MigrationsPath, migrationURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, redisClient *goredis.Client, log *logrus.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		store := memory.New()
		if cfg.MemorySeedPath != "" {
			n, err := store.LoadSeed(cfg.MemorySeedPath)
			if err != nil {
				return nil, err
			}
			log.WithField("records", n).Info("Memory store seeded")
		}
		return &storage{
			users:      store.Users(),
			incidents:  store.Incidents(),
			cache:      memory.NewIncidentCache(),
			requests:   store.HelpRequests(),
			volunteers: store.Volunteers(),
			tasks:      store.Tasks(),
			alerts:     store.Alerts(),
			resources:  store.Resources(),
			close:      func() {},
		}, nil
	}

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		return nil, err
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Successfully connected to PostgreSQL")

	return &storage{
		users:      repository.NewUserRepository(dbpool),
		incidents:  repository.NewIncidentRepository(dbpool),
		cache:      repository.NewIncidentCache(redisClient, cfg.IncidentCacheTTL),
		requests:   repository.NewHelpRequestRepository(dbpool),
		volunteers: repository.NewVolunteerRepository(dbpool),
		tasks:      repository.NewTaskRepository(dbpool),
		alerts:     repository.NewAlertRepository(dbpool),
		resources:  repository.NewResourceRepository(dbpool),
		close:      dbpool.Close,
	}, nil
}

// notificationSenders подключает только настроенные каналы
func notificationSenders(cfg *config.Config, log *logrus.Logger) (map[notify.Channel]notify.Sender, error) {
	senders := make(map[notify.Channel]notify.Sender)
	if cfg.SMTPHost != "" {
		email, err := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			return nil, err
		}
		senders[notify.ChannelEmail] = email
	} else {
		log.Warn("SMTP_HOST is not set, email notifications are disabled")
	}
	if cfg.TwilioAccountSID != "" {
		senders[notify.ChannelSMS] = notify.NewTwilioSender(notify.TwilioConfig{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioFromNumber,
			APIURL:     cfg.TwilioAPIURL,
		}, cfg.WebhookTimeout)
	} else {
		log.Warn("TWILIO_ACCOUNT_SID is not set, SMS notifications are disabled")
	}
	if cfg.WebhookURL != "" {
		senders[notify.ChannelWebhook] = notify.NewWebhookSender(cfg.WebhookURL, cfg.WebhookSecret, cfg.WebhookTimeout)
	}
	return senders, nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	store, err := openStorage(ctx, cfg, redisClient, log)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.close()

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	g, gctx := errgroup.WithContext(ctx)

	// Realtime: хаб локальных сессий и транспорт событий
	hub := realtime.NewHub(cfg.RealtimeSendBuffer, m, log)
	var transport realtime.Transport
	if cfg.RealtimeBridge == config.RealtimeBridgeRedis {
		bridge := realtime.NewRedisBridge(redisClient, cfg.RealtimeChannel, hub, log)
		g.Go(func() error { return bridge.Run(gctx) })
		transport = bridge
	} else {
		transport = realtime.NewLocalTransport(hub)
	}
	dispatcher := realtime.NewDispatcher(transport, m, log)

	// Очередь уведомлений и ее воркер
	notifier := notify.NewQueueNotifier(redisClient, cfg.NotifyEnqueueTimeout, cfg.WebhookURL != "")
	senders, err := notificationSenders(cfg, log)
	if err != nil {
		log.Fatalf("Failed to configure notification senders: %v", err)
	}
	worker := notify.NewWorker(redisClient, senders, notify.WorkerConfig{
		MaxAttempts: cfg.NotifyMaxAttempts,
		BaseDelay:   cfg.NotifyBaseDelay,
		PerSecond:   cfg.NotifyRatePerSecond,
	}, m, log)
	worker.Start(gctx)

	smsReporter := uuid.Nil
	if cfg.SMSReporterID != "" {
		if smsReporter, err = uuid.Parse(cfg.SMSReporterID); err != nil {
			log.Fatalf("Invalid SMS_REPORTER_ID: %v", err)
		}
	}

	// Инициализация сервисов
	incidentService := service.NewIncidentService(service.IncidentDeps{
		Repo:          store.incidents,
		Cache:         store.cache,
		Volunteers:    store.volunteers,
		Users:         store.users,
		Dispatcher:    dispatcher,
		Notifier:      notifier,
		Metrics:       m,
		Logger:        log,
		NotifyTimeout: cfg.NotifyEnqueueTimeout,
	})
	requestService := service.NewHelpRequestService(service.HelpRequestDeps{
		Repo:            store.requests,
		Users:           store.users,
		Dispatcher:      dispatcher,
		Notifier:        notifier,
		Metrics:         m,
		Logger:          log,
		NotifyTimeout:   cfg.NotifyEnqueueTimeout,
		DefaultRadiusKm: cfg.NearbyDefaultRadius,
	})
	taskService := service.NewTaskService(service.TaskDeps{
		Repo:       store.tasks,
		Incidents:  store.incidents,
		Volunteers: store.volunteers,
		Users:      store.users,
		Dispatcher: dispatcher,
		Metrics:    m,
		Logger:     log,
	})
	volunteerService := service.NewVolunteerService(store.volunteers, store.users, m, log)
	alertService := service.NewAlertService(store.alerts, store.users, dispatcher, log)
	resourceService := service.NewResourceService(store.resources, store.users, dispatcher, log)
	smsService := service.NewSMSService(service.SMSDeps{
		Repo:          store.incidents,
		Dispatcher:    dispatcher,
		Notifier:      notifier,
		Metrics:       m,
		Logger:        log,
		ReporterID:    smsReporter,
		AdminPhones:   cfg.AdminPhoneNumbers,
		NotifyTimeout: cfg.NotifyEnqueueTimeout,
	})

	// Сверка статуса волонтеров с их последней задачей
	reconciler := service.NewReconciler(store.tasks, store.volunteers, cfg.ReconcileInterval, m, log)
	g.Go(func() error { return reconciler.Run(gctx) })

	var guard realtime.RoomGuard = realtime.OpenRooms{}
	if cfg.RealtimeRoomChecks {
		guard = volunteerService
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(v1.HandlerDeps{
		Incidents:  incidentService,
		Requests:   requestService,
		Tasks:      taskService,
		Volunteers: volunteerService,
		Alerts:     alertService,
		Resources:  resourceService,
		SMS:        smsService,
		Realtime:   realtime.NewServer(hub, guard, log),
		Sessions:   hub,
		Logger:     log,
		Config:     cfg,
	})

	// Настройка Gin роутера
	router := gin.Default()
	router.Use(m.GinMiddleware())
	handler.RegisterRoutes(router.Group("/api/v1"))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Infof("HTTP server started on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Received shutdown signal, shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
	log.Info("Server gracefully stopped")
}
