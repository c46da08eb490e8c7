package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/bloomlane/visual-search/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Http     *HTTPConfig
	Minio    *MinIOCfg
	Db       *PGDBCfg
	Qdrant   *QdrantCfg
	Redis    *RedisCfg
	Kafka    *KafkaCfg
	Embedder *EmbedderCfg
	Catalog  *CatalogCfg
	Search   *SearchCfg
	Batch    *BatchCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки MinIO
	PublicEndpoint    string // Внешний адрес, по которому каталог отдаёт ссылки на изображения
	BucketName        string // Бакет с изображениями товаров
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	PresignTTL        time.Duration // Время жизни presigned-ссылок в выдаче поиска
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantCfg struct {
	Host                 string
	Port                 int
	ApiKey               string
	QdrantCollectionName string // имя коллекции в Qdrant
	UseTLS               bool
	VectorSize           uint64 // должен совпадать с размерностью модели эмбеддингов
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ImageURLTTL time.Duration // TTL кэша presigned-ссылок, должен быть меньше PresignTTL
}

type KafkaCfg struct {
	Brokers     []string // пустой список отключает публикацию событий
	Topic       string
	NetworkMode string
}

// EmbedderCfg описывает подключение к сервису векторизации изображений.
type EmbedderCfg struct {
	BaseURL    string
	ApiKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// CatalogCfg описывает подключение к сервису каталога товаров.
type CatalogCfg struct {
	BaseURL string
	ApiKey  string
	Timeout time.Duration
}

// SearchCfg — пороги похожести и размер выдачи.
type SearchCfg struct {
	ExactThreshold   float32 // score >= ExactThreshold — точное совпадение
	SimilarThreshold float32 // score >= SimilarThreshold — похожий букет
	DefaultTopK      uint64
	MaxTopK          uint64
}

// BatchCfg — параметры батчевой индексации.
type BatchCfg struct {
	MaxConcurrent int // ограничение параллельных load+embed, под rate limit эмбеддера
	DefaultLimit  int
	MaxLimit      int
	JoinGrace     time.Duration // время на финальную запись уже готовых элементов при отмене контекста
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	search, err := loadSearchCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	batch, err := loadBatchCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	embedder, err := loadEmbedderCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	catalog, err := loadCatalogCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:     http,
		Minio:    minio,
		Db:       db,
		Qdrant:   qdrant,
		Redis:    redis,
		Kafka:    loadKafkaCfg(),
		Embedder: embedder,
		Catalog:  catalog,
		Search:   search,
		Batch:    batch,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 30 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL     = false
		defaultEndpoint   = "minio:9000"
		defaultPresignTTL = 1 * time.Hour
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	presignTTL, err := parseDurationEnv("MINIO_PRESIGN_TTL", defaultPresignTTL)
	if err != nil {
		log.Errorf(err, "invalid MINIO_PRESIGN_TTL")
		return nil, err
	}

	endpoint := getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint)

	return &MinIOCfg{
		MinioEndpoint:     endpoint,
		PublicEndpoint:    getEnvOrDefault("MINIO_PUBLIC_ENDPOINT", endpoint),
		BucketName:        getEnv("BUCKET_NAME"),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		PresignTTL:        presignTTL,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadQdrantCfg(log logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultVectorSize     = "768"
		defaultCollection     = "bouquet_images"
	)

	strPort := getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	port, err := strconv.Atoi(strPort)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		log.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	strVectorSize := getEnvOrDefault("VECTOR_SIZE", defaultVectorSize)
	vectorSize, err := strconv.ParseUint(strVectorSize, 10, 64)
	if err != nil {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	return &QdrantCfg{
		Host:                 getEnv("QDRANT_HOST"),
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:               useTLS,
		VectorSize:           vectorSize,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr        = "localhost:6379"
		defaultDB          = 0
		defaultMaxRetries  = 3
		defaultDialTimeout = 5 * time.Second
		defaultTimeout     = 3 * time.Second
		defaultImageURLTTL = 30 * time.Minute
	)

	dbStr := getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB))
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	timeout, err := parseDurationEnv("REDIS_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_TIMEOUT")
		return nil, err
	}

	imageURLTTL, err := parseDurationEnv("IMAGE_URL_TTL", defaultImageURLTTL)
	if err != nil {
		log.Errorf(err, "invalid IMAGE_URL_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		ImageURLTTL: imageURLTTL,
	}, nil
}

// loadKafkaCfg не требует брокеров: без KAFKA_BROKERS события индексации просто не публикуются.
func loadKafkaCfg() *KafkaCfg {
	const (
		defaultNetworkMode = "tcp"
		defaultTopic       = "visual-search.indexing"
	)

	var brokers []string
	if brokerStr := getEnv("KAFKA_BROKERS"); brokerStr != "" {
		brokers = strings.Split(brokerStr, ",")
	}

	return &KafkaCfg{
		Brokers:     brokers,
		Topic:       getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		NetworkMode: getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadEmbedderCfg(log logger.Logger) (*EmbedderCfg, error) {
	const (
		defaultModel      = "clip-vit-base-patch32"
		defaultTimeout    = 30 * time.Second
		defaultMaxRetries = 3
	)

	baseURL := getEnv("EMBEDDER_URL")
	if baseURL == "" {
		err := fmt.Errorf("EMBEDDER_URL is required")
		log.Errorf(err, "missing EMBEDDER_URL")
		return nil, err
	}

	timeout, err := parseDurationEnv("EMBEDDER_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDER_TIMEOUT")
		return nil, err
	}

	maxRetries, err := parseIntEnv("EMBEDDER_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDER_MAX_RETRIES")
		return nil, err
	}

	return &EmbedderCfg{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ApiKey:     getEnv("EMBEDDER_API_KEY"),
		Model:      getEnvOrDefault("EMBEDDER_MODEL", defaultModel),
		Timeout:    timeout,
		MaxRetries: maxRetries,
	}, nil
}

func loadCatalogCfg(log logger.Logger) (*CatalogCfg, error) {
	const defaultTimeout = 10 * time.Second

	baseURL := getEnv("CATALOG_URL")
	if baseURL == "" {
		err := fmt.Errorf("CATALOG_URL is required")
		log.Errorf(err, "missing CATALOG_URL")
		return nil, err
	}

	timeout, err := parseDurationEnv("CATALOG_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid CATALOG_TIMEOUT")
		return nil, err
	}

	return &CatalogCfg{
		BaseURL: strings.TrimRight(baseURL, "/"),
		ApiKey:  getEnv("CATALOG_API_KEY"),
		Timeout: timeout,
	}, nil
}

func loadSearchCfg(log logger.Logger) (*SearchCfg, error) {
	const (
		defaultExactThreshold   = "0.85"
		defaultSimilarThreshold = "0.70"
		defaultTopK             = 20
		defaultMaxTopK          = 100
	)

	exact, err := parseFloatEnv("SEARCH_EXACT_THRESHOLD", defaultExactThreshold)
	if err != nil {
		log.Errorf(err, "invalid SEARCH_EXACT_THRESHOLD")
		return nil, err
	}

	similar, err := parseFloatEnv("SEARCH_SIMILAR_THRESHOLD", defaultSimilarThreshold)
	if err != nil {
		log.Errorf(err, "invalid SEARCH_SIMILAR_THRESHOLD")
		return nil, err
	}

	if similar > exact {
		err := fmt.Errorf("SEARCH_SIMILAR_THRESHOLD (%f) must not exceed SEARCH_EXACT_THRESHOLD (%f)", similar, exact)
		log.Errorf(err, "invalid similarity thresholds")
		return nil, err
	}

	return &SearchCfg{
		ExactThreshold:   exact,
		SimilarThreshold: similar,
		DefaultTopK:      defaultTopK,
		MaxTopK:          defaultMaxTopK,
	}, nil
}

func loadBatchCfg(log logger.Logger) (*BatchCfg, error) {
	const (
		defaultMaxConcurrent = 8
		defaultLimit         = 50
		defaultMaxLimit      = 200
		defaultJoinGrace     = 5 * time.Second
	)

	maxConcurrent, err := parseIntEnv("BATCH_MAX_CONCURRENT", defaultMaxConcurrent)
	if err != nil {
		log.Errorf(err, "invalid BATCH_MAX_CONCURRENT")
		return nil, err
	}

	joinGrace, err := parseDurationEnv("BATCH_JOIN_GRACE", defaultJoinGrace)
	if err != nil {
		log.Errorf(err, "invalid BATCH_JOIN_GRACE")
		return nil, err
	}

	return &BatchCfg{
		MaxConcurrent: maxConcurrent,
		DefaultLimit:  defaultLimit,
		MaxLimit:      defaultMaxLimit,
		JoinGrace:     joinGrace,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	return strconv.Atoi(v)
}

func parseFloatEnv(key string, defaultValue string) (float32, error) {
	v := getEnvOrDefault(key, defaultValue)
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, err
	}

	return float32(f), nil
}
