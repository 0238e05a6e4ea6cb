// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/pdiddy/postforge/internal/genai"
	"github.com/pdiddy/postforge/internal/pipeline"
	"github.com/pdiddy/postforge/internal/secrets"
	"github.com/pdiddy/postforge/internal/staging"
	"github.com/pdiddy/postforge/pkg/types"
)

// configFrom reads every setting from v and fills in defaults. The API key
// falls back to the gemini-api-key secret file.
func configFrom(v *viper.Viper, s secrets.Secrets) types.Config {
	cfg := types.Config{
		GenAI: types.AIConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("genai.timeout"),
				UserAgent: v.GetString("genai.user_agent"),
			},
			BaseURL:          v.GetString("genai.base_url"),
			APIKey:           s.Resolve(secrets.GeminiAPIKey, v.GetString("genai.api_key")),
			TrendModel:       v.GetString("genai.trend_model"),
			PostModel:        v.GetString("genai.post_model"),
			ImagePromptModel: v.GetString("genai.image_prompt_model"),
			ImageModel:       v.GetString("genai.image_model"),
			AspectRatio:      v.GetString("genai.aspect_ratio"),
			ImageMIMEType:    v.GetString("genai.image_mime_type"),
			MaxRetries:       v.GetInt("genai.max_retries"),
		},
		Timeouts: types.TimeoutConfig{
			Trend: v.GetDuration("timeouts.trend"),
			Post:  v.GetDuration("timeouts.post"),
			Image: v.GetDuration("timeouts.image"),
		},
		Staging: types.StagingConfig{
			Dir: v.GetString("staging.dir"),
		},
	}
	if cfg.GenAI.UserAgent == "" {
		cfg.GenAI.UserAgent = "postforge/" + version
	}
	return cfg.WithDefaults()
}

// app bundles the wired pipeline and the resources that must be closed.
type app struct {
	cfg        types.Config
	controller *pipeline.Controller
	store      *staging.Store
}

func (a *app) Close() error {
	return a.store.Close()
}

// newApp wires the Gemini service, the staging store, and clip into a
// controller. Stage failure details are logged to log.
func newApp(cfg types.Config, clip pipeline.Clipboard, log io.Writer) (*app, error) {
	if cfg.GenAI.APIKey == "" {
		return nil, fmt.Errorf("no API key: set --api-key, genai.api_key, POSTFORGE_GENAI_API_KEY, or .secrets/%s", secrets.GeminiAPIKey)
	}

	store, err := staging.NewStore(cfg.Staging)
	if err != nil {
		return nil, err
	}

	svc := genai.NewGeminiService(cfg.GenAI, nil)
	c := pipeline.New(svc, pipeline.Options{
		Publisher: store,
		Clipboard: clip,
		Timeouts:  cfg.Timeouts,
		Log:       log,
	})
	return &app{cfg: cfg, controller: c, store: store}, nil
}
