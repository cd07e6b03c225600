package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// ImageClient wraps the image-generation endpoint. It returns decoded
// image bytes plus the detected content type; an empty payload with a
// nil error means the backend produced no image.
type ImageClient struct {
	client *openai.Client
	model  string
	size   string
}

// NewImageClient creates an ImageClient.
func NewImageClient(apiKey, baseURL, model, size string) *ImageClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &ImageClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		size:   size,
	}
}

// GenerateImage requests one image for the prompt.
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           c.size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, "", fmt.Errorf("create image: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		// Valid "no image produced" outcome, distinct from an error.
		return nil, "", nil
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, "", fmt.Errorf("decode image payload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", nil
	}

	return data, http.DetectContentType(data), nil
}
