package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BlobBackendGCS   = "gcs"
	BlobBackendMinIO = "minio"

	ModelProviderGemini = "gemini"
	ModelProviderOpenAI = "openai"
)

type Config struct {
	Port        int    `env:"PORT"          envDefault:"8080"`
	StaticDir   string `env:"STATIC_DIR"    envDefault:"web"`
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"512"`
	TempDir     string `env:"TEMP_DIR"      envDefault:"/tmp/safewatch"`

	FrameIntervalSeconds int    `env:"FRAME_INTERVAL_SECONDS" envDefault:"2"`
	FrameFormat          string `env:"FRAME_FORMAT"           envDefault:"jpg"`

	BlobBackend   string `env:"BLOB_BACKEND"            envDefault:"gcs"`
	GCPProjectID  string `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GCSBucketName string `env:"GCS_BUCKET_NAME"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT"   envDefault:"minio:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL"    envDefault:"false"`
	MinIOBucket    string `env:"MINIO_BUCKET"     envDefault:"frames"`

	ModelProvider string `env:"MODEL_PROVIDER"  envDefault:"gemini"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL"    envDefault:"gemini-2.5-flash"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL"    envDefault:"gpt-4o-mini"`

	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"safewatch.risk"`

	SMTPHost       string   `env:"SMTP_HOST"`
	SMTPPort       int      `env:"SMTP_PORT"       envDefault:"1025"`
	SMTPFrom       string   `env:"SMTP_FROM"       envDefault:"noreply@safewatch.local"`
	NotificationTo []string `env:"NOTIFICATION_TO" envDefault:"oncall@safewatch.local" envSeparator:","`

	MetricsPort    int    `env:"METRICS_PORT"    envDefault:"9090"`
	JaegerEndpoint string `env:"JAEGER_ENDPOINT"`
	LogLevel       string `env:"LOG_LEVEL"       envDefault:"info"`
}

// Load reads an optional .env file from the working directory and then
// parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.BlobBackend {
	case BlobBackendGCS:
		if c.GCSBucketName == "" {
			errs = append(errs, errors.New("GCS_BUCKET_NAME is required when BLOB_BACKEND=gcs"))
		}
	case BlobBackendMinIO:
		if c.MinIOBucket == "" {
			errs = append(errs, errors.New("MINIO_BUCKET is required when BLOB_BACKEND=minio"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown BLOB_BACKEND %q", c.BlobBackend))
	}

	switch c.ModelProvider {
	case ModelProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when MODEL_PROVIDER=gemini"))
		}
	case ModelProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when MODEL_PROVIDER=openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MODEL_PROVIDER %q", c.ModelProvider))
	}

	if c.FrameIntervalSeconds <= 0 {
		errs = append(errs, errors.New("FRAME_INTERVAL_SECONDS must be positive"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
