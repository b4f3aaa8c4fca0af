package cfg

import (
	"testing"
	"time"

	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "shop")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "storefront")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	c, err := Load(logger.Nop{})
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Http.Port)
	assert.Equal(t, 5*time.Second, c.Http.ReadTimeout)
	assert.Equal(t, "localhost", c.Db.Host)
	assert.Equal(t, "file://db/migrations", c.Db.MigrationsURL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "storefront.orders", c.Kafka.Topic)
	assert.Equal(t, 3*time.Second, c.Redis.Timeout)
	assert.Equal(t, "product-images", c.Minio.BucketName)
	assert.Equal(t, time.UTC, c.Store.Location)
}

func TestLoad_MissingPostgresUser(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_USER", "")

	_, err := Load(logger.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_USER")
}

func TestLoad_MissingKafkaBrokers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAFKA_BROKERS", "")

	_, err := Load(logger.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_READ_TIMEOUT", "five seconds")

	_, err := Load(logger.Nop{})
	require.Error(t, err)
}

func TestLoad_StoreTimezone(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORE_TIMEZONE", "America/Mexico_City")

	c, err := Load(logger.Nop{})
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", c.Store.Location.String())

	t.Setenv("STORE_TIMEZONE", "Mars/Olympus")
	_, err = Load(logger.Nop{})
	require.Error(t, err)
}

func TestRedisTimeoutTakesLargest(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("READ_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "4s")

	c, err := Load(logger.Nop{})
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, c.Redis.Timeout)
}

func TestLoad_ReportsAllProblems(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_DB", "")
	t.Setenv("UPLOAD_IMAGES_LIMIT", "0")
	t.Setenv("MINIO_USE_SSL", "maybe")

	_, err := Load(logger.Nop{})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrMissingEnvVariable)
	assert.ErrorIs(t, err, e.ErrIncorrectEnvVariable)
	assert.Contains(t, err.Error(), "POSTGRES_DB")
	assert.Contains(t, err.Error(), "UPLOAD_IMAGES_LIMIT")
	assert.Contains(t, err.Error(), "MINIO_USE_SSL")
}

func TestEnvReader_Int(t *testing.T) {
	env := &envReader{}

	t.Setenv("SOME_INT", "")
	assert.Equal(t, 7, env.Int("SOME_INT", 7))

	t.Setenv("SOME_INT", "12")
	assert.Equal(t, 12, env.Int("SOME_INT", 7))
	require.NoError(t, env.Err())

	t.Setenv("SOME_INT", "twelve")
	assert.Equal(t, 7, env.Int("SOME_INT", 7))
	require.ErrorIs(t, env.Err(), e.ErrIncorrectEnvVariable)
}

func TestEnvReader_ListTrimsEmpty(t *testing.T) {
	env := &envReader{}
	t.Setenv("BROKERS", " a:1, ,b:2,")

	assert.Equal(t, []string{"a:1", "b:2"}, env.List("BROKERS"))
	require.NoError(t, env.Err())
}
