// cmd/lead-router/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"advisor-routing/internal/api"
	"advisor-routing/internal/common/auth"
	awsclient "advisor-routing/internal/common/aws"
	"advisor-routing/internal/common/camunda"
	"advisor-routing/internal/common/config"
	"advisor-routing/internal/common/database"
	"advisor-routing/internal/common/logger"
	"advisor-routing/internal/common/observability"
	"advisor-routing/internal/common/zoho"
	"advisor-routing/internal/geo"
	"advisor-routing/internal/models"
	"advisor-routing/internal/notify"
	"advisor-routing/internal/pipeline"
	"advisor-routing/internal/routing"
	"advisor-routing/internal/search"
	"advisor-routing/internal/store"

	ala "advisor-routing/internal/workers/leads/assign-lead-advisor"
	clr "advisor-routing/internal/workers/leads/create-lead-record"
	sln "advisor-routing/internal/workers/leads/send-lead-notification"
	scl "advisor-routing/internal/workers/leads/sync-crm-lead"
	vls "advisor-routing/internal/workers/leads/validate-lead-submission"
)

// retryWithBackoff attempts to execute a function with exponential backoff.
// A nil retryable treats every error as transient.
func retryWithBackoff(operation func() error, retryable func(error) bool, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return fmt.Errorf("%s failed: %w", operationName, err)
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting lead router...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	if cfg.Observability.TracingEnabled {
		if err := obs.EnableTracing(cfg.Observability.JaegerEndpoint); err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		}
	}

	ctx := context.Background()
	readiness := make(map[string]api.ReadinessCheck)

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, nil, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	readiness["postgres"] = pg.Ping
	zapLog.Info("PostgreSQL connected successfully")

	if cfg.Database.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, pg.DB); err != nil {
			zapLog.Fatal("migrations failed", zap.Error(err))
		}
	}

	// --- Redis (cursor backend and ZIP cache) ---
	var rdb *database.RedisClient
	if cfg.Routing.CursorBackend == config.CursorBackendRedis || cfg.Integrations.ZipLookup.Enabled {
		rdb = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, nil, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		readiness["redis"] = rdb.Ping
		zapLog.Info("Redis connected successfully")
	}

	// --- Stores ---
	advisors := store.NewAdvisorStore(pg.DB)
	submissions := store.NewSubmissionStore(pg.DB)
	settings := store.NewSettingsStore(pg.DB, models.PolicyConfig{
		Method:           models.AssignmentMethod(cfg.Routing.AssignmentMethod),
		DefaultAdvisorID: cfg.Routing.DefaultAdvisorID,
	})

	var cursor routing.ResettableCursor
	switch cfg.Routing.CursorBackend {
	case config.CursorBackendRedis:
		cursor = store.NewRedisCursor(rdb.Client, cfg.Routing.CursorKey)
	case config.CursorBackendMemory:
		zapLog.Warn("in-memory assignment cursor; rotation is not shared between instances")
		cursor = routing.NewMemoryCursor(0)
	default:
		cursor = settings.Cursor()
	}

	// --- Search ---
	var index *search.SubmissionIndex
	if cfg.Search.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, nil, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		index = search.NewSubmissionIndex(esClient.Client, cfg.Search.Index)
		readiness["elasticsearch"] = esClient.Ping
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Notifications ---
	var (
		mailer notify.Mailer
		sms    notify.SMSSender
	)
	email := cfg.Notifications.Email
	if email.Provider == config.EmailProviderSES || cfg.Notifications.SMS.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if email.Provider == config.EmailProviderSES {
			mailer = awsclient.NewSESMailerFromConfig(awsCfg, email.FromEmail, email.FromName)
		}
		if cfg.Notifications.SMS.Enabled {
			sms = awsclient.NewSMSPublisherFromConfig(awsCfg)
		}
	}
	if email.Provider == config.EmailProviderSMTP {
		smtp := cfg.Integrations.SMTP
		mailer = notify.NewSMTPMailer(smtp.Host, smtp.Port, smtp.Username, smtp.Password, email.FromEmail, email.FromName)
	}
	if mailer == nil {
		zapLog.Warn("email delivery disabled")
	}

	renderer := notify.NewRenderer(notify.Templates{
		AdvisorSubject:   cfg.Notifications.Advisor.Subject,
		AdvisorBody:      cfg.Notifications.Advisor.Template,
		SubmitterSubject: cfg.Notifications.Submitter.Subject,
		SubmitterBody:    cfg.Notifications.Submitter.Template,
	}, cfg.Notifications.SiteName, cfg.Notifications.AdminSubmissionURL)
	notifier := notify.NewNotifier(mailer, sms, settings, renderer, log)

	// --- External Service Clients ---
	var states geo.StateResolver
	if cfg.Integrations.ZipLookup.Enabled {
		zl := cfg.Integrations.ZipLookup
		states = geo.NewZipLookup(zl.BaseURL, config.GetDuration(zl.Timeout), rdb.Client,
			time.Duration(zl.CacheTTL)*time.Second, log)
	}

	crmConfig := scl.LoadConfig(cfg)
	var crm scl.LeadCreator
	if crmConfig.Enabled {
		crm = zoho.NewCRMClient(cfg.Integrations.Zoho.BaseURL, cfg.Integrations.Zoho.AuthToken, crmConfig.Timeout)
	}

	var introspector api.TokenIntrospector
	if !cfg.Auth.Disabled {
		introspector = auth.NewKeycloakClient(
			cfg.Auth.Keycloak.URL,
			cfg.Auth.Keycloak.Realm,
			cfg.Auth.Keycloak.ClientID,
			cfg.Auth.Keycloak.ClientSecret,
		)
	}

	zapLog.Info("All external service clients initialized")

	// --- Lead steps ---
	validateHandler := vls.NewHandler(vls.LoadConfig(cfg), log)
	createHandler := clr.NewHandler(clr.LoadConfig(cfg), submissions, states, log)
	assignHandler := ala.NewHandler(ala.LoadConfig(cfg), advisors, settings, cursor, submissions, log)
	notifyHandler := sln.NewHandler(sln.LoadConfig(cfg), submissions, advisors, notifier, log)
	crmHandler := scl.NewHandler(crmConfig, crm, submissions, advisors, log)

	steps := pipeline.Steps{
		Validate: validateHandler,
		Create:   createHandler,
		Assign:   assignHandler,
		Notify:   notifyHandler,
		CRM:      crmHandler,
	}
	deps := api.Deps{
		Advisors:     advisors,
		Submissions:  submissions,
		Settings:     settings,
		Cursor:       cursor,
		Introspector: introspector,
		AdminRole:    cfg.Auth.Keycloak.AdminRole,
		AuthDisabled: cfg.Auth.Disabled,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Readiness:    readiness,
		Logger:       log,
	}
	if index != nil {
		steps.Index = index
		deps.Search = index
	}
	deps.Submitter = pipeline.New(steps, obs, log)

	// --- Zeebe workers ---
	var jobWorkers []worker.JobWorker
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, camunda.IsRetryable, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		readiness["zeebe"] = zeebe.HealthCheck
		zapLog.Info("Zeebe client connected successfully")

		handlers := map[string]worker.JobHandler{
			vls.TaskType: validateHandler.Handle,
			clr.TaskType: createHandler.Handle,
			ala.TaskType: assignHandler.Handle,
			sln.TaskType: notifyHandler.Handle,
			scl.TaskType: crmHandler.Handle,
		}
		for taskType, handler := range handlers {
			wcfg := config.GetWorkerConfig(cfg, taskType)
			if !wcfg.Enabled {
				continue
			}
			jobWorkers = append(jobWorkers, camunda.StartWorker(zeebe.GetClient(), taskType, camunda.WorkerOptions{
				MaxJobsActive: wcfg.MaxJobsActive,
				Timeout:       config.GetDuration(wcfg.Timeout),
			}, handler, zapLog))
		}
		zapLog.Info("Zeebe workers registered", zap.Int("count", len(jobWorkers)))
	}

	// --- HTTP server ---
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewServer(deps).Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLog.Info("Shutting down lead router...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}
	for _, w := range jobWorkers {
		w.Close()
		w.AwaitClose()
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("Lead router stopped")
}
