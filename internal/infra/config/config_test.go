package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GCS_BUCKET_NAME", "frames-bucket")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 2, cfg.FrameIntervalSeconds)
	assert.Equal(t, "jpg", cfg.FrameFormat)
	assert.Equal(t, BlobBackendGCS, cfg.BlobBackend)
	assert.Equal(t, ModelProviderGemini, cfg.ModelProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, int64(512<<20), cfg.MaxUploadBytes())
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Empty(t, cfg.SMTPHost)
}

func TestLoadMinIOWithOpenAI(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BLOB_BACKEND", "minio")
	t.Setenv("MODEL_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FRAME_INTERVAL_SECONDS", "5")
	t.Setenv("NOTIFICATION_TO", "a@example.com,b@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "frames", cfg.MinIOBucket)
	assert.Equal(t, 5, cfg.FrameIntervalSeconds)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.NotificationTo)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "missing gcs bucket",
			mutate:  func(c *Config) { c.GCSBucketName = "" },
			wantErr: "GCS_BUCKET_NAME",
		},
		{
			name:    "missing gemini key",
			mutate:  func(c *Config) { c.GeminiAPIKey = "" },
			wantErr: "GEMINI_API_KEY",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.BlobBackend = "ftp" },
			wantErr: "unknown BLOB_BACKEND",
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.FrameIntervalSeconds = 0 },
			wantErr: "FRAME_INTERVAL_SECONDS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				BlobBackend:          BlobBackendGCS,
				GCSBucketName:        "b",
				ModelProvider:        ModelProviderGemini,
				GeminiAPIKey:         "k",
				FrameIntervalSeconds: 2,
				MaxUploadMB:          1,
			}
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
