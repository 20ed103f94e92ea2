package port

import (
	"context"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
)

// ModelFile is an image staged with the model service.
type ModelFile struct {
	Name     string
	URI      string
	MIMEType string
}

type VisionModel interface {
	UploadImage(ctx context.Context, localPath string) (*ModelFile, error)
	DeleteFile(ctx context.Context, file *ModelFile) error
	GenerateContent(ctx context.Context, prompt string, images []*ModelFile) (string, error)
	ListModels(ctx context.Context) ([]entity.ModelInfo, error)
}
