//go:build gocv

package main

import (
	"go.uber.org/zap"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/port"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/config"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/gocv"
)

func newFrameExtractor(cfg *config.Config, log *zap.Logger) port.FrameExtractor {
	return gocv.NewSampler(cfg.FrameIntervalSeconds, cfg.FrameFormat, log)
}
