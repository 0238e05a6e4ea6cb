// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package studio_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/postforge/internal/pipeline"
	"github.com/pdiddy/postforge/internal/studio"
	"github.com/pdiddy/postforge/pkg/types"
)

// stubService satisfies genai.Service with fixed answers. When trendErr is
// set, every DetectTrend call after the first fails with it.
type stubService struct {
	imageErr error
	trendErr error
	trends   *int
}

func (s stubService) DetectTrend(context.Context) (string, error) {
	if s.trends != nil {
		*s.trends++
		if *s.trends > 1 && s.trendErr != nil {
			return "", s.trendErr
		}
	}
	return "AI Agents in 2025", nil
}

func (stubService) GeneratePost(_ context.Context, topic string) (string, error) {
	return "A story about " + topic + "\n#AI", nil
}

func (s stubService) GenerateImage(context.Context, string) (string, error) {
	if s.imageErr != nil {
		return "", s.imageErr
	}
	return "data:image/jpeg;base64,aGVsbG8=", nil
}

type stubPublisher struct{}

func (stubPublisher) Stage(_ context.Context, b types.Bundle) (types.Receipt, error) {
	return types.Receipt{ID: "b1", Topic: b.Topic, Dir: "staged/b1"}, nil
}

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and, if it yields a command, runs it and feeds the
// resulting message back, the way the Bubble Tea runtime would.
func press(t *testing.T, m tea.Model, k string) (tea.Model, bool) {
	t.Helper()
	m, cmd := m.Update(key(k))
	if cmd == nil {
		return m, false
	}
	m, _ = m.Update(cmd())
	return m, true
}

func newModel(svc stubService) (studio.Model, *pipeline.Controller) {
	c := pipeline.New(svc, pipeline.Options{Publisher: stubPublisher{}})
	return studio.NewModel(context.Background(), c), c
}

func TestStudio_InitialViewShowsLockedStages(t *testing.T) {
	m, _ := newModel(stubService{})
	view := m.View()

	assert.Contains(t, view, "[>] 1. Detect Trending Topic")
	assert.Contains(t, view, "[ ] 2. Generate LinkedIn Post")
	assert.Contains(t, view, "[ ] 4. Publish to LinkedIn")
}

func TestStudio_LockedStageKeysDoNothing(t *testing.T) {
	m, c := newModel(stubService{})

	for _, k := range []string{"p", "i", "enter", "c"} {
		var ran bool
		_, ran = press(t, m, k)
		assert.False(t, ran, "key %q should be disabled", k)
	}
	assert.Equal(t, types.StageTrend, c.Snapshot().CurrentStage)
}

func TestStudio_FullRun(t *testing.T) {
	m, c := newModel(stubService{})
	var model tea.Model = m

	model, ran := press(t, model, "t")
	require.True(t, ran)
	assert.Contains(t, model.View(), "Trending Topic: AI Agents in 2025")
	assert.Contains(t, model.View(), "[x] 1. Detect Trending Topic")

	model, ran = press(t, model, "p")
	require.True(t, ran)
	assert.Contains(t, model.View(), "A story about AI Agents in 2025")

	model, ran = press(t, model, "i")
	require.True(t, ran)
	assert.Contains(t, model.View(), "Generated Image: image/jpeg")
	assert.Contains(t, model.View(), "[>] 4. Publish to LinkedIn")

	model, ran = press(t, model, "enter")
	require.True(t, ran)
	assert.Contains(t, model.View(), "Ready to Publish!")
	assert.Contains(t, model.View(), "staged/b1")

	assert.True(t, c.Snapshot().ReadyToPublish())
}

func TestStudio_ShowsLastError(t *testing.T) {
	m, _ := newModel(stubService{imageErr: errors.New("quota")})
	var model tea.Model = m

	for _, k := range []string{"t", "p", "i"} {
		var ran bool
		model, ran = press(t, model, k)
		require.True(t, ran, k)
	}

	view := model.View()
	assert.Contains(t, view, pipeline.MsgImageFailed)
	assert.Contains(t, view, "[>] 3. Generate AI Image")
	assert.False(t, strings.Contains(view, "Generated Image:"))
}

func TestStudio_FailedTrendRerunLocksLaterStages(t *testing.T) {
	var trends int
	m, c := newModel(stubService{trendErr: errors.New("quota"), trends: &trends})
	var model tea.Model = m

	for _, k := range []string{"t", "p", "i"} {
		var ran bool
		model, ran = press(t, model, k)
		require.True(t, ran, k)
	}
	require.Contains(t, model.View(), "[>] 4. Publish to LinkedIn")

	model, ran := press(t, model, "t")
	require.True(t, ran)

	view := model.View()
	assert.Contains(t, view, pipeline.MsgTrendFailed)
	assert.Contains(t, view, "[>] 1. Detect Trending Topic")
	assert.Contains(t, view, "[ ] 2. Generate LinkedIn Post")
	assert.Contains(t, view, "[ ] 3. Generate AI Image")
	assert.Contains(t, view, "[ ] 4. Publish to LinkedIn")
	assert.NotContains(t, view, "Press enter")
	assert.Equal(t, types.StageTrend, c.Snapshot().CurrentStage)

	_, ran = press(t, model, "enter")
	assert.False(t, ran)
}

func TestStudio_CopyAcknowledgement(t *testing.T) {
	m, _ := newModel(stubService{})
	var model tea.Model = m

	model, _ = press(t, model, "t")
	model, _ = press(t, model, "p")
	model, ran := press(t, model, "c")
	require.True(t, ran)

	assert.Contains(t, model.View(), "Generated Post: (copied!)")
}

func TestStudio_StateChangedRefreshes(t *testing.T) {
	m, c := newModel(stubService{})
	require.NoError(t, c.RunDetectTrend(context.Background()))

	assert.NotContains(t, m.View(), "Trending Topic:")
	updated, _ := m.Update(studio.StateChangedMsg{})
	assert.Contains(t, updated.View(), "Trending Topic: AI Agents in 2025")
}

func TestStudio_QuitKey(t *testing.T) {
	m, _ := newModel(stubService{})
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
