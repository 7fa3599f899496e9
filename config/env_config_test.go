package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "PHOTO_BUCKET", "PUBLIC_BASE_URL", "PHOTO_CACHE_MAX_AGE",
		"MAX_UPLOAD_SIZE", "RECONCILE_INTERVAL", "RECONCILE_GRACE_PERIOD",
		"MINIO_ENDPOINT", "MINIO_USE_SSL", "SERVICE_NAME", "DEPLOY_ENV",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadEnvConfig()

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "photos", cfg.Storage.Bucket)
	require.Equal(t, 3600, cfg.Storage.CacheMaxAge)
	require.Equal(t, int64(10485760), cfg.Storage.MaxUploadSize)
	require.Equal(t, 15*time.Minute, cfg.Reconcile.Interval)
	require.Equal(t, time.Hour, cfg.Reconcile.GracePeriod)
	require.Equal(t, "gau-photobooth", cfg.Grafana.ServiceName)
	require.Equal(t, "development", cfg.Environment.Mode)
}

func TestLoadEnvConfig_PublicBaseURLFallsBackToMinioEndpoint(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("MINIO_ENDPOINT", "minio.internal:9000")

	t.Setenv("MINIO_USE_SSL", "false")
	require.Equal(t, "http://minio.internal:9000", LoadEnvConfig().Storage.PublicBaseURL)

	t.Setenv("MINIO_USE_SSL", "true")
	require.Equal(t, "https://minio.internal:9000", LoadEnvConfig().Storage.PublicBaseURL)
}

func TestLoadEnvConfig_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PHOTO_BUCKET", "booth-images")
	t.Setenv("PUBLIC_BASE_URL", "https://cdn.example.com/")
	t.Setenv("MAX_UPLOAD_SIZE", "5242880")
	t.Setenv("RECONCILE_INTERVAL", "5m")
	t.Setenv("RECONCILE_GRACE_PERIOD", "30m")

	cfg := LoadEnvConfig()

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "booth-images", cfg.Storage.Bucket)
	require.Equal(t, "https://cdn.example.com", cfg.Storage.PublicBaseURL)
	require.Equal(t, int64(5242880), cfg.Storage.MaxUploadSize)
	require.Equal(t, 5*time.Minute, cfg.Reconcile.Interval)
	require.Equal(t, 30*time.Minute, cfg.Reconcile.GracePeriod)
}

func TestLoadEnvConfig_OTLPEndpointProtocolStripped(t *testing.T) {
	t.Setenv("GRAFANA_OTLP_ENDPOINT", "https://otlp.grafana.net/otlp")
	require.Equal(t, "otlp.grafana.net/otlp", LoadEnvConfig().Grafana.OTLPEndpoint)

	t.Setenv("GRAFANA_OTLP_ENDPOINT", "http://localhost:4318")
	require.Equal(t, "localhost:4318", LoadEnvConfig().Grafana.OTLPEndpoint)
}
