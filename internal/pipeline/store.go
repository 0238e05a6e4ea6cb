// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "github.com/pdiddy/postforge/pkg/types"

// resultStore holds the outputs of completed stages. It has no locking of
// its own; the Controller guards it.
type resultStore struct {
	stage     types.Stage
	topic     string
	post      string
	image     string
	lastError string
	copyAck   bool
}

func newResultStore() *resultStore {
	return &resultStore{stage: types.StageTrend}
}

func (s *resultStore) snapshot() types.PipelineState {
	return types.PipelineState{
		CurrentStage:     s.stage,
		Topic:            s.topic,
		Post:             s.post,
		Image:            s.image,
		LastError:        s.lastError,
		CopyAcknowledged: s.copyAck,
	}
}

// input returns the upstream output stage consumes and whether its gate is
// open. Stage 1 has no input and is always open.
func (s *resultStore) input(stage types.Stage) (string, bool) {
	switch stage {
	case types.StageTrend:
		return "", true
	case types.StagePost:
		return s.topic, s.topic != ""
	case types.StageImage:
		return s.post, s.post != ""
	default:
		return "", false
	}
}

// clearFrom drops the last error and every output produced by stage or a
// later stage. Clearing from stage 1 is a full reset and also locks every
// later stage; otherwise currentStage is left alone.
func (s *resultStore) clearFrom(stage types.Stage) {
	s.lastError = ""
	if stage <= types.StageTrend {
		s.stage = types.StageTrend
		s.topic = ""
	}
	if stage <= types.StagePost {
		s.post = ""
	}
	if stage <= types.StageImage {
		s.image = ""
	}
}

// complete stores the output of stage and unlocks the next one.
func (s *resultStore) complete(stage types.Stage, value string) {
	switch stage {
	case types.StageTrend:
		s.topic = value
	case types.StagePost:
		s.post = value
	case types.StageImage:
		s.image = value
	}
	s.stage = stage + 1
}

func (s *resultStore) fail(msg string) {
	s.lastError = msg
}
