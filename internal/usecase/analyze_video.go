package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
	"github.com/safewatch/safewatch-analysis-service/internal/domain/port"
	"github.com/safewatch/safewatch-analysis-service/internal/domain/risk"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/metrics"
	"github.com/safewatch/safewatch-analysis-service/internal/session"
)

const notifyTimeout = 10 * time.Second

type AnalyzeVideoUseCase struct {
	extractor port.FrameExtractor
	blobs     port.BlobStore
	model     port.VisionModel
	notifiers []port.RiskNotifier
	logger    *zap.Logger
	tempDir   string
}

type AnalyzeVideoConfig struct {
	TempDir string
}

func NewAnalyzeVideoUseCase(
	extractor port.FrameExtractor,
	blobs port.BlobStore,
	model port.VisionModel,
	notifiers []port.RiskNotifier,
	logger *zap.Logger,
	cfg AnalyzeVideoConfig,
) *AnalyzeVideoUseCase {
	return &AnalyzeVideoUseCase{
		extractor: extractor,
		blobs:     blobs,
		model:     model,
		notifiers: notifiers,
		logger:    logger,
		tempDir:   cfg.TempDir,
	}
}

// Execute runs one upload through the whole pipeline. Every artifact created
// along the way is released before Execute returns, whatever the outcome.
func (uc *AnalyzeVideoUseCase) Execute(ctx context.Context, upload entity.VideoUpload) (*entity.AnalysisResult, error) {
	if upload.Body == nil {
		metrics.AnalysesTotal.WithLabelValues("input_error").Inc()
		return nil, entity.ErrNoVideoFile
	}
	if upload.Filename == "" {
		metrics.AnalysesTotal.WithLabelValues("input_error").Inc()
		return nil, entity.ErrEmptyFilename
	}

	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "AnalyzeVideoUseCase.Execute")
	defer span.End()

	sess := session.New(uc.tempDir)
	log := uc.logger.With(zap.String("session_id", sess.ID), zap.String("filename", upload.Filename))
	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("video.filename", upload.Filename),
	)

	scope := session.NewScope(log)
	scope.OnFailure = func(kind string) {
		metrics.CleanupFailuresTotal.WithLabelValues(kind).Inc()
	}
	defer func() {
		log.Debug("releasing session resources", zap.Int("count", scope.Len()))
		// Cleanup must outlive a cancelled request.
		scope.Release(context.WithoutCancel(ctx))
	}()

	metrics.ActiveAnalyses.Inc()
	defer metrics.ActiveAnalyses.Dec()

	totalTimer := time.Now()
	result, frameCount, err := uc.run(ctx, sess, scope, upload, log)
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, entity.ErrNoFrames) {
			metrics.AnalysesTotal.WithLabelValues("no_frames").Inc()
			log.Warn("no frames extracted")
		} else {
			metrics.AnalysesTotal.WithLabelValues("failed").Inc()
			log.Error("analysis failed", zap.Error(err))
		}
		return nil, err
	}

	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	metrics.RiskClassificationsTotal.WithLabelValues(string(result.PotentialRisk)).Inc()
	span.SetAttributes(attribute.String("risk.level", string(result.PotentialRisk)))
	log.Info("analysis completed",
		zap.String("potential_risk", string(result.PotentialRisk)),
		zap.String("details", result.Details),
		zap.Int("frames", frameCount),
	)

	if result.PotentialRisk == entity.RiskHigh {
		uc.notify(ctx, entity.RiskEvent{
			SessionID:     sess.ID,
			Filename:      upload.Filename,
			PotentialRisk: result.PotentialRisk,
			Details:       result.Details,
			FrameCount:    frameCount,
			DetectedAt:    time.Now().UTC(),
		}, log)
	}

	return result, nil
}

func (uc *AnalyzeVideoUseCase) run(
	ctx context.Context,
	sess *session.Session,
	scope *session.Scope,
	upload entity.VideoUpload,
	log *zap.Logger,
) (*entity.AnalysisResult, int, error) {
	var videoPath string
	err := uc.stage(ctx, entity.StageStageLocal, func(ctx context.Context) error {
		var err error
		videoPath, err = uc.saveUpload(sess, scope, upload)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	var res *port.FrameExtractionResult
	err = uc.stage(ctx, entity.StageExtractFrames, func(ctx context.Context) error {
		var err error
		res, err = uc.extractor.ExtractFrames(ctx, videoPath, sess.FramesDir())
		if err != nil {
			return err
		}
		for _, p := range res.FramePaths {
			scope.RegisterFile(p)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	frames := res.FramePaths
	log.Info("frames sampled",
		zap.Int("count", res.FrameCount),
		zap.Float64("fps", res.FPS),
		zap.Int("stride", res.Stride),
	)
	if res.FrameCount == 0 || len(frames) == 0 {
		return nil, 0, entity.ErrNoFrames
	}
	metrics.FramesExtractedTotal.Add(float64(res.FrameCount))

	blobNames := make([]string, 0, len(frames))
	err = uc.stage(ctx, entity.StageUploadFrames, func(ctx context.Context) error {
		for _, p := range frames {
			name := sess.BlobName(p)
			// Registered first so a partial upload is still removed.
			scope.Register(session.KindBlob, name, func(ctx context.Context) error {
				return uc.blobs.Delete(ctx, name)
			})
			if err := uc.blobs.Put(ctx, p, name); err != nil {
				return err
			}
			blobNames = append(blobNames, name)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	files := make([]*port.ModelFile, 0, len(blobNames))
	err = uc.stage(ctx, entity.StageStageModelFiles, func(ctx context.Context) error {
		for _, name := range blobNames {
			staged := filepath.Join(sess.StagedDir(), filepath.Base(name))
			scope.RegisterFile(staged)
			if err := uc.blobs.Get(ctx, name, staged); err != nil {
				return err
			}

			f, err := uc.model.UploadImage(ctx, staged)
			if err != nil {
				return err
			}
			scope.Register(session.KindModelFile, f.Name, func(ctx context.Context) error {
				return uc.model.DeleteFile(ctx, f)
			})
			files = append(files, f)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	var text string
	err = uc.stage(ctx, entity.StageGenerate, func(ctx context.Context) error {
		var err error
		text, err = uc.model.GenerateContent(ctx, risk.Prompt, files)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	result := risk.Classify(text)
	return &result, res.FrameCount, nil
}

// saveUpload stages the uploaded body as a local file inside the session
// upload dir.
func (uc *AnalyzeVideoUseCase) saveUpload(sess *session.Session, scope *session.Scope, upload entity.VideoUpload) (string, error) {
	if err := os.MkdirAll(sess.WorkDir, 0755); err != nil {
		return "", fmt.Errorf("create workdir: %w", err)
	}
	// Registered first so the directory is released last.
	scope.RegisterDir(sess.WorkDir)
	if err := os.MkdirAll(sess.UploadDir(), 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	videoPath := filepath.Join(sess.UploadDir(), session.SafeFilename(upload.Filename))
	f, err := os.Create(videoPath)
	if err != nil {
		return "", fmt.Errorf("create video file: %w", err)
	}
	scope.RegisterFile(videoPath)

	n, err := io.Copy(f, upload.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write video file: %w", err)
	}

	uc.logger.Debug("upload staged",
		zap.String("session_id", sess.ID),
		zap.String("path", videoPath),
		zap.Int64("bytes", n),
	)
	return videoPath, nil
}

// stage runs fn inside a span, records its duration and tags any error with
// the stage name.
func (uc *AnalyzeVideoUseCase) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := otel.Tracer("usecase").Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return entity.NewStageError(name, err)
	}
	return nil
}

func (uc *AnalyzeVideoUseCase) notify(ctx context.Context, event entity.RiskEvent, log *zap.Logger) {
	if len(uc.notifiers) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	for _, n := range uc.notifiers {
		if err := n.NotifyRisk(ctx, event); err != nil {
			log.Warn("risk notification failed", zap.Error(err))
		}
	}
}
