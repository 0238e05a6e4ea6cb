// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "github.com/pdiddy/postforge/pkg/types"

// loadingTracker keeps one busy flag per generating stage. Flags are
// independent; nothing here enforces that only one is set.
type loadingTracker struct {
	state types.LoadingState
}

func (l *loadingTracker) set(stage types.Stage, busy bool) {
	switch stage {
	case types.StageTrend:
		l.state.Trend = busy
	case types.StagePost:
		l.state.Post = busy
	case types.StageImage:
		l.state.Image = busy
	}
}

func (l *loadingTracker) busy(stage types.Stage) bool {
	return l.state.Busy(stage)
}

func (l *loadingTracker) snapshot() types.LoadingState {
	return l.state
}
