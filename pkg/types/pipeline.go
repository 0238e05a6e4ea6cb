// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Stage identifies one of the four ordered pipeline steps.
type Stage int

const (
	StageTrend Stage = iota + 1
	StagePost
	StageImage
	StagePublish
)

// String returns the short stage name used in logs and loading state.
func (s Stage) String() string {
	switch s {
	case StageTrend:
		return "trend"
	case StagePost:
		return "post"
	case StageImage:
		return "image"
	case StagePublish:
		return "publish"
	default:
		return "unknown"
	}
}

// Title returns the human-readable stage heading.
func (s Stage) Title() string {
	switch s {
	case StageTrend:
		return "Detect Trending Topic"
	case StagePost:
		return "Generate LinkedIn Post"
	case StageImage:
		return "Generate AI Image"
	case StagePublish:
		return "Publish to LinkedIn"
	default:
		return "Unknown"
	}
}

// PipelineState is a read-only snapshot of pipeline progress. Empty strings
// mean the output is absent.
type PipelineState struct {
	// CurrentStage is the highest stage unlocked for execution (1-4).
	CurrentStage Stage `json:"current_stage" yaml:"current_stage"`

	// Topic is the detected trend. Present iff stage 1 completed since the last reset.
	Topic string `json:"topic,omitempty" yaml:"topic,omitempty"`

	// Post is the generated post body. Implies Topic.
	Post string `json:"post,omitempty" yaml:"post,omitempty"`

	// Image is an opaque image reference, normally a data URI. Implies Post.
	Image string `json:"image,omitempty" yaml:"image,omitempty"`

	// LastError describes the most recent failure.
	LastError string `json:"last_error,omitempty" yaml:"last_error,omitempty"`

	// CopyAcknowledged is true briefly after the post text is copied.
	CopyAcknowledged bool `json:"copy_acknowledged" yaml:"copy_acknowledged"`
}

// HasTopic reports whether stage 1 output is present.
func (s PipelineState) HasTopic() bool { return s.Topic != "" }

// HasPost reports whether stage 2 output is present.
func (s PipelineState) HasPost() bool { return s.Post != "" }

// HasImage reports whether stage 3 output is present.
func (s PipelineState) HasImage() bool { return s.Image != "" }

// ReadyToPublish reports whether the publish gate is open.
func (s PipelineState) ReadyToPublish() bool {
	return s.HasImage() && s.CurrentStage >= StagePublish
}

// Completed reports whether the given stage has produced its output.
func (s PipelineState) Completed(stage Stage) bool {
	switch stage {
	case StageTrend:
		return s.HasTopic()
	case StagePost:
		return s.HasPost()
	case StageImage:
		return s.HasImage()
	default:
		return false
	}
}

// LoadingState holds one busy flag per generating stage.
type LoadingState struct {
	Trend bool `json:"trend" yaml:"trend"`
	Post  bool `json:"post" yaml:"post"`
	Image bool `json:"image" yaml:"image"`
}

// Busy reports the flag for stage. Publish has no flag and is never busy.
func (l LoadingState) Busy(stage Stage) bool {
	switch stage {
	case StageTrend:
		return l.Trend
	case StagePost:
		return l.Post
	case StageImage:
		return l.Image
	default:
		return false
	}
}

// Any reports whether any stage is in flight.
func (l LoadingState) Any() bool {
	return l.Trend || l.Post || l.Image
}

// Bundle is the finished content handed to the publisher.
type Bundle struct {
	Topic string `json:"topic" yaml:"topic"`
	Post  string `json:"post" yaml:"post"`
	Image string `json:"-" yaml:"-"`
}

// Receipt records where a bundle was staged for manual publication.
type Receipt struct {
	// ID is the bundle identifier (timestamp plus topic slug).
	ID string `json:"id" yaml:"id"`

	// Topic is the bundle's trending topic.
	Topic string `json:"topic" yaml:"topic"`

	// Dir is the directory holding post.md, the image, and bundle.yaml.
	Dir string `json:"dir" yaml:"dir"`

	// PostPath is the path to the post text.
	PostPath string `json:"post_path" yaml:"post_path"`

	// ImagePath is the path to the decoded image.
	ImagePath string `json:"image_path" yaml:"image_path"`

	// StagedAt is when the bundle was written.
	StagedAt time.Time `json:"staged_at" yaml:"staged_at"`
}
