package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/bloomlane/visual-search/internal/cfg"
	v1Http "github.com/bloomlane/visual-search/internal/delivery/v1/http"
	"github.com/bloomlane/visual-search/internal/infrastructure/catalog"
	"github.com/bloomlane/visual-search/internal/infrastructure/embedder"
	"github.com/bloomlane/visual-search/internal/infrastructure/imageloader"
	"github.com/bloomlane/visual-search/internal/infrastructure/kafka"
	s3Repo "github.com/bloomlane/visual-search/internal/repository/minio"
	"github.com/bloomlane/visual-search/internal/repository/pgdb"
	pgdbConv "github.com/bloomlane/visual-search/internal/repository/pgdb/converter"
	qdrantRepo "github.com/bloomlane/visual-search/internal/repository/qdrant"
	"github.com/bloomlane/visual-search/internal/repository/redis"
	"github.com/bloomlane/visual-search/internal/usecase"
	"github.com/bloomlane/visual-search/pkg/clients"
	"github.com/bloomlane/visual-search/pkg/closer"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/bloomlane/visual-search/pkg/logger"
	"github.com/bloomlane/visual-search/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

func Run() {
	logger := logger.NewSlogLogger()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	appCloser := closer.NewCloser(2 * time.Second)

	db, err := initPGDB(logger, cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize database")
		os.Exit(1)
	}
	appCloser.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	conv := pgdbConv.NewProductImageConverter()
	metadataRepo := pgdb.NewMetadataRepo(db.Pool, conv)

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		logger.Errorf(err, "failed to initialize minio client")
		os.Exit(1)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		logger.Errorf(err, "failed to initialize MinIO bucket")
		os.Exit(1)
	}
	minioCancel()

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		logger.Errorf(err, "failed to initialize qdrant")
		os.Exit(1)
	}
	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
		qdrantCancel()
		logger.Errorf(err, "failed to initialize qdrant collection")
		os.Exit(1)
	}
	qdrantCancel()
	appCloser.Add(func(ctx context.Context) error {
		return qdrantClient.Client.Close()
	})

	vectorRepo := qdrantRepo.NewVectorRepo(qdrantClient.Client, cfg.Qdrant)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(redisCtx); err != nil {
		redisCancel()
		logger.Errorf(err, "failed to connect to redis")
		os.Exit(1)
	}
	redisCancel()
	appCloser.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})

	cacheRepo := redis.NewCacheRepo(redisClient, cfg.Redis, logger)

	embedService := embedder.NewEmbedService(cfg.Embedder, cfg.Qdrant.VectorSize, logger)
	catalogService := catalog.NewService(cfg.Catalog)
	imageLoader := imageloader.NewLoader(imageRepo, cfg.Minio)

	var producer usecase.EventProducer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.Kafka, logger)
		appCloser.Add(func(ctx context.Context) error {
			return kafkaProducer.Close()
		})
		producer = kafkaProducer
	} else {
		logger.Warnf("kafka brokers are not configured, indexing events are disabled")
		producer = kafka.NewNopProducer()
	}

	indexUC := usecase.NewIndexUC(
		vectorRepo,
		metadataRepo,
		imageLoader,
		embedService,
		catalogService,
		producer,
		logger,
		cfg.Batch.MaxConcurrent,
		cfg.Batch.DefaultLimit,
		cfg.Batch.MaxLimit,
		cfg.Batch.JoinGrace,
	)

	searchUC := usecase.NewSearchUC(
		vectorRepo,
		metadataRepo,
		imageLoader,
		embedService,
		imageRepo,
		cacheRepo,
		logger,
		cfg.Search.ExactThreshold,
		cfg.Search.SimilarThreshold,
		cfg.Search.DefaultTopK,
		cfg.Search.MaxTopK,
	)

	statsUC := usecase.NewStatsUC(vectorRepo, metadataRepo, logger)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, logger)
	router.Init(indexUC, searchUC, statsUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)
	appCloser.Add(func(ctx context.Context) error {
		return httpSrv.Stop(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown: ресурсы закрываются в порядке LIFO ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := appCloser.Close(shutdownCtx); err != nil {
		logger.Warnf("shutdown finished with errors: %v", err)
	}

	logger.Infof("Application shutdown complete")
	if appErr != nil {
		os.Exit(1)
	}
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
