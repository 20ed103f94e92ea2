//go:build gocv

// Package gocv decodes video frame by frame through OpenCV.
package gocv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/port"
	"github.com/safewatch/safewatch-analysis-service/internal/domain/sampling"
)

type Sampler struct {
	interval int
	format   string
	logger   *zap.Logger
}

func NewSampler(intervalSeconds int, format string, logger *zap.Logger) *Sampler {
	return &Sampler{interval: intervalSeconds, format: format, logger: logger}
}

func (s *Sampler) ExtractFrames(ctx context.Context, videoPath string, outputDir string) (*port.FrameExtractionResult, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}

	vc, err := gocv.VideoCaptureFile(videoPath)
	if err != nil || !vc.IsOpened() {
		s.logger.Warn("opencv could not open video, no frames extracted",
			zap.String("video", filepath.Base(videoPath)),
			zap.Error(err),
		)
		if vc != nil {
			vc.Close()
		}
		return &port.FrameExtractionResult{}, nil
	}
	defer vc.Close()

	fps := vc.Get(gocv.VideoCaptureFPS)
	stride := sampling.Stride(fps, s.interval)

	img := gocv.NewMat()
	defer img.Close()

	var frames []string
	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ok := vc.Read(&img); !ok || img.Empty() {
			break
		}
		if !sampling.Keep(index, stride) {
			continue
		}

		path := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.%s", len(frames)+1, s.format))
		if !gocv.IMWrite(path, img) {
			return nil, fmt.Errorf("write frame %s", filepath.Base(path))
		}
		frames = append(frames, path)
	}

	s.logger.Info("frames extracted",
		zap.Int("count", len(frames)),
		zap.Float64("fps", fps),
		zap.Int("stride", stride),
	)

	return &port.FrameExtractionResult{
		FramePaths: frames,
		FrameCount: len(frames),
		FPS:        fps,
		Stride:     stride,
	}, nil
}
