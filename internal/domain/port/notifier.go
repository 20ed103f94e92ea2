package port

import (
	"context"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
)

type RiskNotifier interface {
	NotifyRisk(ctx context.Context, event entity.RiskEvent) error
}
