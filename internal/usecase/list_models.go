package usecase

import (
	"context"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
	"github.com/safewatch/safewatch-analysis-service/internal/domain/port"
)

type ListModelsUseCase struct {
	model port.VisionModel
}

func NewListModelsUseCase(model port.VisionModel) *ListModelsUseCase {
	return &ListModelsUseCase{model: model}
}

// Execute returns the models visible to the configured credentials. An empty
// listing is returned as an empty slice.
func (uc *ListModelsUseCase) Execute(ctx context.Context) ([]entity.ModelInfo, error) {
	models, err := uc.model.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = []entity.ModelInfo{}
	}
	return models, nil
}
