package cfg

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/joho/godotenv"
)

type Config struct {
	Minio *MinIOCfg
	Http  *HTTPConfig
	Grpc  *GRPCConfig
	Db    *PGDBCfg
	Redis *RedisCfg
	Kafka *KafkaCfg
	Store *StoreCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
	OutboxBatchSize   int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет для изображений товаров
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	UploadImagesLimit int // Лимит на одновременные загрузки в S3
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsURL string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

// StoreCfg — настройки магазина, влияющие на расчёт цен.
type StoreCfg struct {
	// Location — часовой пояс, в котором определяется «сегодня» для окон акций.
	Location *time.Location
}

// Load читает конфигурацию из окружения. Если рядом лежит .env, его значения подхватываются первыми.
// Ошибки по всем переменным собираются вместе, чтобы не чинить их по одной.
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("failed to read .env: %v", err)
	}

	env := &envReader{}
	c := &Config{
		Db:    loadPGDBCfg(env),
		Http:  loadHTTPConfig(env),
		Grpc:  loadGRPCConfig(env),
		Redis: loadRedisCfg(env),
		Minio: loadMinIOCfg(env),
		Kafka: loadKafkaCfg(env),
		Store: loadStoreCfg(env),
	}

	if err := env.Err(); err != nil {
		log.Errorf(err, "invalid configuration")
		return nil, err
	}

	return c, nil
}

func loadKafkaCfg(env *envReader) *KafkaCfg {
	return &KafkaCfg{
		Brokers:           env.List("KAFKA_BROKERS"),
		Topic:             env.String("KAFKA_TOPIC", "storefront.orders"),
		Partitions:        env.PositiveInt("KAFKA_PARTITIONS", 3),
		ReplicationFactor: env.PositiveInt("REPLICATION_FACTOR", 1),
		NetworkMode:       env.String("KAFKA_NETWORK_MODE", "tcp"),
		OutboxBatchSize:   env.PositiveInt("OUTBOX_BATCH_SIZE", 10),
	}
}

func loadMinIOCfg(env *envReader) *MinIOCfg {
	return &MinIOCfg{
		MinioEndpoint:     env.String("MINIO_ENDPOINT", "minio:9000"),
		BucketName:        env.String("BUCKET_NAME", "product-images"),
		MinioRootUser:     env.String("MINIO_ROOT_USER", ""),
		MinioRootPassword: env.String("MINIO_ROOT_PASSWORD", ""),
		MinioUseSSL:       env.Bool("MINIO_USE_SSL", false),
		UploadImagesLimit: env.PositiveInt("UPLOAD_IMAGES_LIMIT", 4),
	}
}

func loadHTTPConfig(env *envReader) *HTTPConfig {
	return &HTTPConfig{
		Port:         env.String("HTTP_PORT", "8080"),
		ReadTimeout:  env.Duration("HTTP_READ_TIMEOUT", 5*time.Second),
		WriteTimeout: env.Duration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:  env.Duration("KEEP_ALIVE", 60*time.Second),
	}
}

func loadGRPCConfig(env *envReader) *GRPCConfig {
	return &GRPCConfig{
		Port:        env.String("GRPC_PORT", "8091"),
		NetworkMode: env.String("GRPC_NETWORK_MODE", "tcp"),
	}
}

func loadPGDBCfg(env *envReader) *PGDBCfg {
	return &PGDBCfg{
		Host:          env.String("POSTGRES_HOST", "localhost"),
		Port:          env.String("POSTGRES_PORT", "5432"),
		User:          env.Required("POSTGRES_USER"),
		Password:      env.Required("POSTGRES_PASSWORD"),
		DBName:        env.Required("POSTGRES_DB"),
		SSLMode:       env.String("SSL_MODE", "disable"),
		MigrationsURL: env.String("MIGRATIONS_URL", "file://db/migrations"),
	}
}

func loadRedisCfg(env *envReader) *RedisCfg {
	readTimeout := env.Duration("READ_TIMEOUT", 3*time.Second)
	writeTimeout := env.Duration("WRITE_TIMEOUT", 3*time.Second)

	return &RedisCfg{
		Addr:        env.String("REDIS_ADDR", "localhost:6379"),
		Password:    env.String("REDIS_PASSWORD", ""),
		User:        env.String("REDIS_USER", ""),
		DB:          env.Int("REDIS_DB_ID", 0),
		MaxRetries:  env.Int("MAX_RETRIES", 3),
		DialTimeout: env.Duration("DIAL_TIMEOUT", 5*time.Second),
		Timeout:     max(readTimeout, writeTimeout),
		ProductTTL:  env.Duration("PRODUCT_TTL", 3*time.Minute),
	}
}

func loadStoreCfg(env *envReader) *StoreCfg {
	return &StoreCfg{Location: env.Location("STORE_TIMEZONE", "UTC")}
}

// envReader читает переменные окружения и копит ошибки разбора.
// При ошибке возвращается значение по умолчанию, а причина доступна через Err.
type envReader struct {
	errs []error
}

func (r *envReader) fail(key string, err error) {
	r.errs = append(r.errs, e.Wrap(key, err))
}

func (r *envReader) Err() error {
	return errors.Join(r.errs...)
}

func (r *envReader) String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (r *envReader) Required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		r.fail(key, e.ErrMissingEnvVariable)
	}
	return v
}

// List разбирает обязательный список через запятую, пустые элементы отбрасываются.
func (r *envReader) List(key string) []string {
	var out []string
	for _, part := range strings.Split(r.Required(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *envReader) Int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, e.ErrIncorrectEnvVariable)
		return def
	}
	return n
}

func (r *envReader) PositiveInt(key string, def int) int {
	n := r.Int(key, def)
	if n <= 0 {
		r.fail(key, e.ErrIncorrectEnvVariable)
		return def
	}
	return n
}

func (r *envReader) Bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, e.ErrIncorrectEnvVariable)
		return def
	}
	return b
}

func (r *envReader) Duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, e.ErrIncorrectEnvVariable)
		return def
	}
	return d
}

func (r *envReader) Location(key, def string) *time.Location {
	loc, err := time.LoadLocation(r.String(key, def))
	if err != nil {
		r.fail(key, err)
		return time.UTC
	}
	return loc
}
