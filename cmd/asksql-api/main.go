package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/asksql/asksql/internal/api"
	"github.com/asksql/asksql/internal/archive"
	"github.com/asksql/asksql/internal/assistant"
	"github.com/asksql/asksql/internal/config"
	"github.com/asksql/asksql/internal/datastore/sqlstore"
	"github.com/asksql/asksql/internal/nl2sql"
	"github.com/asksql/asksql/internal/observability"
	"github.com/asksql/asksql/internal/schema"
	s3store "github.com/asksql/asksql/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("asksql-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	db, err := sqlstore.Open(context.Background(), sqlstore.DBConfig{
		Driver:          cfg.Datastore.Driver,
		DSN:             cfg.Datastore.DSN,
		MaxOpenConns:    cfg.Datastore.MaxOpenConns,
		MaxIdleConns:    cfg.Datastore.MaxIdleConns,
		ConnMaxIdleTime: cfg.Datastore.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Datastore.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open datastore", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	storeDialect, err := sqlstore.DialectFor(cfg.Datastore.Driver)
	if err != nil {
		logger.Error("unsupported datastore driver", slog.Any("error", err))
		os.Exit(1)
	}
	promptDialect, err := nl2sql.DialectFor(cfg.Datastore.Driver)
	if err != nil {
		logger.Error("unsupported prompt dialect", slog.Any("error", err))
		os.Exit(1)
	}
	store := sqlstore.New(db, storeDialect)
	schemaSource := schema.NewCachedSource(schema.NewIntrospector(store, logger), cfg.Schema.CacheTTL, nil)

	if !nl2sql.IsKnownModel(cfg.AI.Model) {
		logger.Warn("unknown completion model", slog.String("model", cfg.AI.Model))
	}
	var asker api.Asker
	readiness := []api.ReadinessCheck{api.CheckDatastore(store), api.CheckAIConfig(cfg)}
	chatClient, err := nl2sql.NewOpenAIClient(nl2sql.OpenAIConfig{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Timeout: cfg.AI.Timeout,
	})
	if err != nil {
		logger.Warn("ask endpoint disabled", slog.Any("error", err))
	} else {
		generator, err := nl2sql.NewGenerator(nl2sql.GeneratorConfig{
			Client:      chatClient,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			TopP:        cfg.AI.TopP,
			Dialect:     promptDialect,
		})
		if err != nil {
			logger.Error("failed to initialize sql generator", slog.Any("error", err))
			os.Exit(1)
		}

		var archiver assistant.Archiver
		if cfg.Archive.Enabled {
			objectStore, err := s3store.New(context.Background(), s3store.Config{
				Endpoint:         cfg.ObjectStore.Endpoint,
				Region:           cfg.ObjectStore.Region,
				Bucket:           cfg.ObjectStore.Bucket,
				AccessKeyID:      cfg.ObjectStore.AccessKeyID,
				SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
				UseSSL:           cfg.ObjectStore.UseSSL,
				Prefix:           cfg.ObjectStore.Prefix,
				AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
			})
			if err != nil {
				logger.Error("failed to initialize object store", slog.Any("error", err))
				os.Exit(1)
			}
			askArchive, err := archive.New(objectStore, "", logger)
			if err != nil {
				logger.Error("failed to initialize archive", slog.Any("error", err))
				os.Exit(1)
			}
			archiver = askArchive
			readiness = append(readiness, api.CheckArchive(askArchive))
		}

		service, err := assistant.New(assistant.Config{
			Schema:    schemaSource,
			Generator: generator,
			Executor:  store,
			Archiver:  archiver,
			ReadOnly:  cfg.Assistant.ReadOnly,
			Logger:    logger,
		})
		if err != nil {
			logger.Error("failed to initialize assistant", slog.Any("error", err))
			os.Exit(1)
		}
		asker = service
	}

	handler := api.NewHandler(cfg, api.Dependencies{
		Logger:            logger,
		Asker:             asker,
		Readiness:         api.CombineReadinessChecks(readiness...),
		DependencyTimeout: time.Second,
	})
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("driver", cfg.Datastore.Driver),
			slog.String("model", cfg.AI.Model),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
