// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by collaborators that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout. Per-stage deadlines come from
	// TimeoutConfig and are usually shorter.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "postforge/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds settings for the generative-content service.
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the Generative Language API root
	// (default "https://generativelanguage.googleapis.com/v1beta").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// TrendModel answers the trending-topic question (default "gemini-2.5-flash").
	TrendModel string `json:"trend_model" yaml:"trend_model"`

	// PostModel writes the post body (default "gemini-2.5-pro").
	PostModel string `json:"post_model" yaml:"post_model"`

	// ImagePromptModel turns a post into a one-sentence image prompt
	// (default "gemini-2.5-flash").
	ImagePromptModel string `json:"image_prompt_model" yaml:"image_prompt_model"`

	// ImageModel renders the image (default "imagen-4.0-generate-001").
	ImageModel string `json:"image_model" yaml:"image_model"`

	// AspectRatio is passed to the image model (default "16:9").
	AspectRatio string `json:"aspect_ratio" yaml:"aspect_ratio"`

	// ImageMIMEType is the requested output format (default "image/jpeg").
	ImageMIMEType string `json:"image_mime_type" yaml:"image_mime_type"`

	// MaxRetries bounds transport-level retries on 429/503 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// TimeoutConfig bounds each external call made by the pipeline. Image
// generation is the slow one.
type TimeoutConfig struct {
	Trend time.Duration `json:"trend" yaml:"trend"`
	Post  time.Duration `json:"post" yaml:"post"`
	Image time.Duration `json:"image" yaml:"image"`
}

// StagingConfig holds settings for the manual-publication staging area.
type StagingConfig struct {
	// Dir is the directory bundles are written to; it also holds staged.db.
	Dir string `json:"dir" yaml:"dir"`
}

// Config groups every setting the CLI reads.
type Config struct {
	GenAI    AIConfig      `json:"genai" yaml:"genai"`
	Timeouts TimeoutConfig `json:"timeouts" yaml:"timeouts"`
	Staging  StagingConfig `json:"staging" yaml:"staging"`
}

// Default values applied by WithDefaults.
const (
	DefaultBaseURL          = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTrendModel       = "gemini-2.5-flash"
	DefaultPostModel        = "gemini-2.5-pro"
	DefaultImagePromptModel = "gemini-2.5-flash"
	DefaultImageModel       = "imagen-4.0-generate-001"
	DefaultAspectRatio      = "16:9"
	DefaultImageMIMEType    = "image/jpeg"
	DefaultMaxRetries       = 3
	DefaultUserAgent        = "postforge/0.1"
	DefaultStagingDir       = "staged"

	DefaultHTTPTimeout  = 5 * time.Minute
	DefaultTrendTimeout = 60 * time.Second
	DefaultPostTimeout  = 120 * time.Second
	DefaultImageTimeout = 180 * time.Second
)

// WithDefaults returns a copy of c with every zero field replaced by its default.
func (c Config) WithDefaults() Config {
	g := &c.GenAI
	if g.BaseURL == "" {
		g.BaseURL = DefaultBaseURL
	}
	if g.TrendModel == "" {
		g.TrendModel = DefaultTrendModel
	}
	if g.PostModel == "" {
		g.PostModel = DefaultPostModel
	}
	if g.ImagePromptModel == "" {
		g.ImagePromptModel = DefaultImagePromptModel
	}
	if g.ImageModel == "" {
		g.ImageModel = DefaultImageModel
	}
	if g.AspectRatio == "" {
		g.AspectRatio = DefaultAspectRatio
	}
	if g.ImageMIMEType == "" {
		g.ImageMIMEType = DefaultImageMIMEType
	}
	if g.MaxRetries <= 0 {
		g.MaxRetries = DefaultMaxRetries
	}
	if g.UserAgent == "" {
		g.UserAgent = DefaultUserAgent
	}
	if g.Timeout <= 0 {
		g.Timeout = DefaultHTTPTimeout
	}

	if c.Timeouts.Trend <= 0 {
		c.Timeouts.Trend = DefaultTrendTimeout
	}
	if c.Timeouts.Post <= 0 {
		c.Timeouts.Post = DefaultPostTimeout
	}
	if c.Timeouts.Image <= 0 {
		c.Timeouts.Image = DefaultImageTimeout
	}

	if c.Staging.Dir == "" {
		c.Staging.Dir = DefaultStagingDir
	}
	return c
}
