package gemini

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
	"github.com/safewatch/safewatch-analysis-service/internal/domain/port"
)

// Client talks to the Gemini API through the Files and Models services.
type Client struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

type ClientConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint. Empty means the public service.
	BaseURL string
}

func NewClient(ctx context.Context, cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: cfg.Model, logger: logger}, nil
}

func (c *Client) UploadImage(ctx context.Context, localPath string) (*port.ModelFile, error) {
	f, err := c.client.Files.UploadFromPath(ctx, localPath, &genai.UploadFileConfig{
		MIMEType:    imageMIMEType(localPath),
		DisplayName: filepath.Base(localPath),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filepath.Base(localPath), err)
	}
	return &port.ModelFile{Name: f.Name, URI: f.URI, MIMEType: f.MIMEType}, nil
}

func (c *Client) DeleteFile(ctx context.Context, file *port.ModelFile) error {
	if _, err := c.client.Files.Delete(ctx, file.Name, nil); err != nil {
		return fmt.Errorf("delete %s: %w", file.Name, err)
	}
	return nil
}

// GenerateContent sends the prompt followed by every image reference in a
// single user turn and returns the concatenated text of the first candidate.
func (c *Client) GenerateContent(ctx context.Context, prompt string, images []*port.ModelFile) (string, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, img := range images {
		parts = append(parts, genai.NewPartFromURI(img.URI, img.MIMEType))
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return "", fmt.Errorf("generate content with %s: %w", c.model, err)
	}

	text := resp.Text()
	c.logger.Debug("model responded",
		zap.String("model", c.model),
		zap.Int("images", len(images)),
		zap.Int("response_len", len(text)),
	)
	return text, nil
}

// ListModels returns every base model visible to the API key, whatever
// actions it supports.
func (c *Client) ListModels(ctx context.Context) ([]entity.ModelInfo, error) {
	var models []entity.ModelInfo
	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		if m == nil {
			continue
		}
		methods := m.SupportedActions
		if methods == nil {
			methods = []string{}
		}
		models = append(models, entity.ModelInfo{
			Name:                       m.Name,
			SupportedGenerationMethods: methods,
		})
	}
	return models, nil
}

func imageMIMEType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "image/jpeg"
}
