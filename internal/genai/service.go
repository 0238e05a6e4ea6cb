// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai is the generative-content collaborator used by the pipeline:
// trend detection, post drafting, and image generation.
package genai

import (
	"context"
	"fmt"
)

// Service abstracts the generative-content API so the pipeline and its tests
// can supply their own implementation. Every failure is a *ServiceError.
type Service interface {
	// DetectTrend returns a short phrase naming a current topic.
	DetectTrend(ctx context.Context) (string, error)

	// GeneratePost returns a full post body about topic.
	GeneratePost(ctx context.Context, topic string) (string, error)

	// GenerateImage derives an image prompt from post, renders it, and
	// returns the image as a data URI.
	GenerateImage(ctx context.Context, post string) (string, error)
}

// Operation names carried by ServiceError.
const (
	OpDetectTrend   = "detect trend"
	OpGeneratePost  = "generate post"
	OpGenerateImage = "generate image"
)

// ServiceError is the single error kind returned by a Service. It covers
// transport failures, upstream rejections, and empty or malformed responses.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func serviceErr(op string, err error) error {
	return &ServiceError{Op: op, Err: err}
}
