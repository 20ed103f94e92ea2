package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
	"github.com/safewatch/safewatch-analysis-service/internal/domain/port"
)

// chatCompletionMethod labels every listed model, since the models endpoint
// does not report capabilities.
const chatCompletionMethod = "generateContent"

// Client drives any OpenAI-compatible chat completions endpoint. Images are
// sent inline as data URLs, so nothing is staged remotely.
type Client struct {
	client *goopenai.Client
	model  string
	logger *zap.Logger
}

type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	oc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &Client{
		client: goopenai.NewClientWithConfig(oc),
		model:  cfg.Model,
		logger: logger,
	}
}

func (c *Client) UploadImage(_ context.Context, localPath string) (*port.ModelFile, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(localPath), err)
	}
	mimeType := imageMIMEType(localPath)
	return &port.ModelFile{
		Name:     filepath.Base(localPath),
		URI:      "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	}, nil
}

// DeleteFile is a no-op: inline images leave nothing on the server.
func (c *Client) DeleteFile(context.Context, *port.ModelFile) error {
	return nil
}

func (c *Client) GenerateContent(ctx context.Context, prompt string, images []*port.ModelFile) (string, error) {
	parts := make([]goopenai.ChatMessagePart, 0, len(images)+1)
	parts = append(parts, goopenai.ChatMessagePart{
		Type: goopenai.ChatMessagePartTypeText,
		Text: prompt,
	})
	for _, img := range images {
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    img.URI,
				Detail: goopenai.ImageURLDetailAuto,
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{{
			Role:         goopenai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion with %s: %w", c.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	c.logger.Debug("model responded",
		zap.String("model", c.model),
		zap.Int("images", len(images)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) ListModels(ctx context.Context) ([]entity.ModelInfo, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	models := make([]entity.ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, entity.ModelInfo{
			Name:                       m.ID,
			SupportedGenerationMethods: []string{chatCompletionMethod},
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
