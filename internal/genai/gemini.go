// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/postforge/internal/httputil"
	"github.com/pdiddy/postforge/pkg/types"
)

// errNoImage is returned when the image model answers with zero predictions.
var errNoImage = errors.New("no image was generated")

// GeminiService calls the Generative Language REST API: generateContent for
// text and predict for Imagen image rendering.
type GeminiService struct {
	cfg    types.AIConfig
	client *http.Client
}

var _ Service = (*GeminiService)(nil)

// NewGeminiService returns a service using cfg (defaults applied by the
// caller). A nil client gets one built from cfg.Timeout.
func NewGeminiService(cfg types.AIConfig, client *http.Client) *GeminiService {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GeminiService{cfg: cfg, client: client}
}

// generateContentRequest is the request body for models/{model}:generateContent.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

// generateContentResponse is the subset of the response we read.
type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// predictRequest is the request body for Imagen models/{model}:predict.
type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount   int           `json:"sampleCount"`
	AspectRatio   string        `json:"aspectRatio,omitempty"`
	OutputOptions outputOptions `json:"outputOptions"`
}

type outputOptions struct {
	MIMEType string `json:"mimeType"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MIMEType           string `json:"mimeType"`
	} `json:"predictions"`
}

// DetectTrend asks the trend model for one trending AI topic.
func (g *GeminiService) DetectTrend(ctx context.Context) (string, error) {
	text, err := g.generateText(ctx, g.cfg.TrendModel, trendPrompt)
	if err != nil {
		return "", serviceErr(OpDetectTrend, err)
	}
	return strings.Trim(text, "\"' "), nil
}

// GeneratePost drafts a storytelling post about topic with the post model.
func (g *GeminiService) GeneratePost(ctx context.Context, topic string) (string, error) {
	prompt, err := renderPostPrompt(topic)
	if err != nil {
		return "", serviceErr(OpGeneratePost, fmt.Errorf("rendering prompt: %w", err))
	}
	text, err := g.generateText(ctx, g.cfg.PostModel, prompt)
	if err != nil {
		return "", serviceErr(OpGeneratePost, err)
	}
	return text, nil
}

// GenerateImage runs two calls: the image-prompt model condenses post into a
// single sentence, then the image model renders it. The first image is
// returned as a data URI.
func (g *GeminiService) GenerateImage(ctx context.Context, post string) (string, error) {
	prompt, err := renderImagePrompt(post)
	if err != nil {
		return "", serviceErr(OpGenerateImage, fmt.Errorf("rendering prompt: %w", err))
	}
	imagePrompt, err := g.generateText(ctx, g.cfg.ImagePromptModel, prompt)
	if err != nil {
		return "", serviceErr(OpGenerateImage, fmt.Errorf("image prompt: %w", err))
	}

	reqBody := predictRequest{
		Instances: []predictInstance{{Prompt: imagePrompt}},
		Parameters: predictParameters{
			SampleCount:   1,
			AspectRatio:   g.cfg.AspectRatio,
			OutputOptions: outputOptions{MIMEType: g.cfg.ImageMIMEType},
		},
	}
	var resp predictResponse
	if err := g.post(ctx, g.cfg.ImageModel, "predict", reqBody, &resp); err != nil {
		return "", serviceErr(OpGenerateImage, err)
	}
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return "", serviceErr(OpGenerateImage, errNoImage)
	}

	pred := resp.Predictions[0]
	mime := pred.MIMEType
	if mime == "" {
		mime = g.cfg.ImageMIMEType
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, pred.BytesBase64Encoded), nil
}

// generateText sends a single-turn prompt and returns the trimmed text of
// the first candidate. Blocked prompts and empty answers are errors.
func (g *GeminiService) generateText(ctx context.Context, model, prompt string) (string, error) {
	reqBody := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	var resp generateContentResponse
	if err := g.post(ctx, model, "generateContent", reqBody, &resp); err != nil {
		return "", err
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%s returned no candidates", model)
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%s returned empty text", model)
	}
	return text, nil
}

// post issues POST {base}/models/{model}:{method} with a JSON body and decodes
// the JSON response into out.
func (g *GeminiService) post(ctx context.Context, model, method string, body, out any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:%s", strings.TrimRight(g.cfg.BaseURL, "/"), model, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)
	if g.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", g.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, g.client, req, g.cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("calling %s: %w", model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned %d: %s", model, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", model, err)
	}
	return nil
}
