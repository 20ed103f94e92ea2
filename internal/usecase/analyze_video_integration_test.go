package usecase

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
	tcrabbitmq "github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
	"github.com/safewatch/safewatch-analysis-service/internal/domain/port"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/ffmpeg"
	miniostorage "github.com/safewatch/safewatch-analysis-service/internal/infra/minio"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/rabbitmq"
	"github.com/safewatch/safewatch-analysis-service/pkg/logger"
)

func TestAnalyzeVideoEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not on PATH")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Start RabbitMQ container
	rmqContainer, err := tcrabbitmq.Run(ctx, "rabbitmq:3.12-management-alpine")
	testcontainers.CleanupContainer(t, rmqContainer)
	require.NoError(t, err)

	rmqURL, err := rmqContainer.AmqpURL(ctx)
	require.NoError(t, err)

	// Start MinIO container
	minioContainer, err := tcminio.Run(ctx,
		"minio/minio:latest",
		tcminio.WithUsername("minioadmin"),
		tcminio.WithPassword("minioadmin"),
	)
	testcontainers.CleanupContainer(t, minioContainer)
	require.NoError(t, err)

	minioEndpoint, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err)

	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:  minioEndpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "frames",
	})
	require.NoError(t, err)
	require.NoError(t, storage.EnsureBucket(ctx))

	// Render a 4s clip at 5 fps: 20 frames, stride 10, so 2 samples.
	videoPath := filepath.Join(t.TempDir(), "test.mp4")
	out, err := exec.Command("ffmpeg", "-f", "lavfi", "-i", "testsrc=duration=4:size=160x120:rate=5",
		"-c:v", "mpeg4", "-pix_fmt", "yuv420p", "-y", videoPath).CombinedOutput()
	require.NoError(t, err, string(out))

	rmqConn, err := amqp.Dial(rmqURL)
	require.NoError(t, err)
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, "safewatch.risk")
	require.NoError(t, err)
	defer pub.Close()

	alertCh, err := rmqConn.Channel()
	require.NoError(t, err)
	defer alertCh.Close()
	q, err := alertCh.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, alertCh.QueueBind(q.Name, rabbitmq.RiskRoutingKey, "safewatch.risk", false, nil))
	deliveries, err := alertCh.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	log, _ := logger.New("debug")
	model := newFakeModel("DETECTED: COLLAPSE near the stairs")
	tempDir := t.TempDir()

	uc := NewAnalyzeVideoUseCase(
		ffmpeg.NewSampler(2, "jpg", log), storage, model,
		[]port.RiskNotifier{rabbitmq.NewRiskPublisher(pub)},
		log,
		AnalyzeVideoConfig{TempDir: tempDir},
	)

	video, err := os.Open(videoPath)
	require.NoError(t, err)
	defer video.Close()

	result, err := uc.Execute(ctx, entity.VideoUpload{Filename: "stairs.mp4", Body: video})
	require.NoError(t, err)
	assert.Equal(t, entity.RiskHigh, result.PotentialRisk)
	assert.Equal(t, "fall or collapse detected", result.Details)
	assert.Equal(t, 2, model.images)

	select {
	case d := <-deliveries:
		var event entity.RiskEvent
		require.NoError(t, json.Unmarshal(d.Body, &event))
		assert.Equal(t, "stairs.mp4", event.Filename)
		assert.Equal(t, 2, event.FrameCount)
	case <-time.After(30 * time.Second):
		t.Fatal("no risk event published")
	}

	// Nothing is left behind in the bucket, on disk or with the model.
	client, err := miniogo.New(minioEndpoint, &miniogo.Options{
		Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
	})
	require.NoError(t, err)
	for obj := range client.ListObjects(ctx, "frames", miniogo.ListObjectsOptions{Recursive: true}) {
		require.NoError(t, obj.Err)
		t.Errorf("object left in bucket: %s", obj.Key)
	}

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, model.live())
}
