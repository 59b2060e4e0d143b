// Package gemini implements the edit service on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"google.golang.org/genai"

	"github.com/ironsheep/image-edit-mcp/internal/editor"
)

// DefaultModel is the image-capable model used when none is configured.
const DefaultModel = "gemini-2.5-flash-image-preview"

// ErrMissingAPIKey is returned by New without an API key.
var ErrMissingAPIKey = errors.New("gemini: API key is required")

// generator is the part of genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config holds client settings.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL string
}

// Client adapts the Gemini API to editor.Service.
type Client struct {
	models generator
	model  string
	logger *slog.Logger
}

var _ editor.Service = (*Client)(nil)

// New creates a client for the Gemini API backend.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, err
	}

	return newClient(gc.Models, cfg.Model, logger), nil
}

func newClient(models generator, model string, logger *slog.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		models: models,
		model:  model,
		logger: logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends the image and the rendered prompt as one user turn.
// Errors from the API are returned as *editor.TransportError; everything
// the model answered is returned in the Response for classification.
func (c *Client) Generate(ctx context.Context, req *editor.ServiceRequest) (*editor.Response, error) {
	if req == nil || req.Image == nil {
		return nil, editor.ErrNoImage
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}

	c.logger.Debug("calling gemini",
		"model", c.model,
		"kind", req.Kind,
		"image_bytes", len(req.Image.Data),
		"mime_type", req.Image.MIMEType,
	)

	resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, &editor.TransportError{Err: err}
	}

	out := mapResponse(resp)
	c.logger.Debug("gemini responded",
		"model_version", resp.ModelVersion,
		"block_reason", out.BlockReason,
		"finish_reason", out.FinishReason,
		"parts", len(out.Parts),
	)
	return out, nil
}

// mapResponse reduces a genai response to the fields classification uses.
// Only the first candidate is considered; thought parts are skipped.
func mapResponse(resp *genai.GenerateContentResponse) *editor.Response {
	out := &editor.Response{}
	if resp == nil {
		return out
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		out.BlockReason = string(fb.BlockReason)
		out.BlockMessage = fb.BlockReasonMessage
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return out
	}
	cand := resp.Candidates[0]
	out.FinishReason = string(cand.FinishReason)

	if cand.Content == nil {
		return out
	}
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		switch {
		case p.InlineData != nil:
			out.Parts = append(out.Parts, editor.Part{
				MIMEType: p.InlineData.MIMEType,
				Data:     p.InlineData.Data,
			})
		case p.Text != "":
			out.Parts = append(out.Parts, editor.Part{Text: p.Text})
		}
	}
	return out
}
