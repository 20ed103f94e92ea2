//go:build !gocv

package main

import (
	"go.uber.org/zap"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/port"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/config"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/ffmpeg"
)

func newFrameExtractor(cfg *config.Config, log *zap.Logger) port.FrameExtractor {
	return ffmpeg.NewSampler(cfg.FrameIntervalSeconds, cfg.FrameFormat, log)
}
