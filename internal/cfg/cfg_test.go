package cfg

import (
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-admin/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredDB(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "catalog")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "shop")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredDB(t)

	c, err := Load(logger.NewSlogLogger())
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, c.App.Env)
	assert.False(t, c.App.IsDev())
	assert.Equal(t, "3000", c.Http.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, c.Http.CORSOrigins)
	assert.Equal(t, int64(10<<20), c.Http.MaxImageSize)
	assert.Equal(t, "localhost", c.Db.Host)
	assert.Equal(t, "file://db/migrations", c.Db.MigrationsSource)
	assert.False(t, c.Kafka.Enabled())
	assert.Equal(t, 4, c.Minio.UploadImagesLimit)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredDB(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "8088")
	t.Setenv("HTTP_READ_TIMEOUT", "2s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := Load(logger.NewSlogLogger())
	require.NoError(t, err)

	assert.True(t, c.App.IsDev())
	assert.Equal(t, "8088", c.Http.Port)
	assert.Equal(t, 2*time.Second, c.Http.ReadTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.Http.CORSOrigins)
	assert.True(t, c.Kafka.Enabled())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestLoad_MissingDBUser(t *testing.T) {
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "shop")

	_, err := Load(logger.NewSlogLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_USER")
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"APP_ENV":                  "staging",
		"HTTP_WRITE_TIMEOUT":       "soon",
		"MINIO_USE_SSL":            "maybe",
		"MINIO_UPLOAD_CONCURRENCY": "0",
		"KAFKA_PARTITIONS":         "three",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequiredDB(t)
			t.Setenv(key, value)

			_, err := Load(logger.NewSlogLogger())
			assert.Error(t, err)
		})
	}
}
