// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package studio is the interactive terminal front end for the pipeline. It
// renders controller snapshots and forwards key presses as stage intents; it
// never mutates pipeline state itself.
package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/postforge/internal/pipeline"
	"github.com/pdiddy/postforge/pkg/types"
)

// Pipeline is the subset of *pipeline.Controller the studio drives.
type Pipeline interface {
	Snapshot() types.PipelineState
	Loading() types.LoadingState
	RunDetectTrend(ctx context.Context) error
	RunGeneratePost(ctx context.Context) error
	RunGenerateImage(ctx context.Context) error
	RunPublish(ctx context.Context) (types.Receipt, error)
	Copy(ctx context.Context) error
}

// StateChangedMsg asks the model to re-read the controller. It is exported
// so the subscription pump and tests can inject it.
type StateChangedMsg struct{}

// stageDoneMsg is sent when a stage operation returns.
type stageDoneMsg struct {
	stage types.Stage
}

// publishedMsg is sent when the publish hand-off returns.
type publishedMsg struct {
	receipt types.Receipt
	err     error
}

// copiedMsg is sent when the copy intent returns.
type copiedMsg struct {
	err error
}

// readyMessage is shown once a bundle has been staged.
const readyMessage = "Ready to Publish! Your post and image are ready. Copy the content and upload the image to LinkedIn manually."

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	pipeline Pipeline

	state   types.PipelineState
	loading types.LoadingState
	notice  string
}

// NewModel returns a model reading from p. ctx bounds every stage call the
// model starts.
func NewModel(ctx context.Context, p Pipeline) Model {
	return Model{
		ctx:      ctx,
		pipeline: p,
		state:    p.Snapshot(),
		loading:  p.Loading(),
	}
}

// Init has no startup work; the pipeline starts idle at stage 1.
func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) refresh() Model {
	m.state = m.pipeline.Snapshot()
	m.loading = m.pipeline.Loading()
	return m
}

// Update handles key presses and operation results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateChangedMsg:
		m = m.refresh()

	case stageDoneMsg:
		m = m.refresh()

	case publishedMsg:
		m = m.refresh()
		if msg.err != nil {
			m.notice = fmt.Sprintf("Publish failed: %v", msg.err)
			break
		}
		m.notice = readyMessage
		if msg.receipt.Dir != "" {
			m.notice += "\nStaged in " + msg.receipt.Dir
		}

	case copiedMsg:
		m = m.refresh()
		if msg.err != nil && !errors.Is(msg.err, pipeline.ErrPrecondition) {
			m.notice = fmt.Sprintf("Copy failed: %v", msg.err)
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "1", "t":
		if m.enabled(types.StageTrend) {
			m.notice = ""
			return m, m.runStage(types.StageTrend, m.pipeline.RunDetectTrend)
		}
	case "2", "p":
		if m.enabled(types.StagePost) {
			m.notice = ""
			return m, m.runStage(types.StagePost, m.pipeline.RunGeneratePost)
		}
	case "3", "i":
		if m.enabled(types.StageImage) {
			m.notice = ""
			return m, m.runStage(types.StageImage, m.pipeline.RunGenerateImage)
		}
	case "4", "enter":
		if m.enabled(types.StagePublish) {
			return m, m.publish()
		}
	case "c":
		if m.state.HasPost() {
			return m, m.copy()
		}
	}
	return m, nil
}

// enabled mirrors the button rules: a stage is clickable when its gate is
// open, it is unlocked, and it is not already running.
func (m Model) enabled(stage types.Stage) bool {
	s := m.state
	switch stage {
	case types.StageTrend:
		return !m.loading.Trend
	case types.StagePost:
		return s.HasTopic() && s.CurrentStage >= types.StagePost && !m.loading.Post
	case types.StageImage:
		return s.HasPost() && s.CurrentStage >= types.StageImage && !m.loading.Image
	case types.StagePublish:
		return s.ReadyToPublish()
	default:
		return false
	}
}

func (m Model) runStage(stage types.Stage, run func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		// Service failures land in LastError. Gate, busy, and superseded
		// results need no feedback.
		_ = run(ctx)
		return stageDoneMsg{stage: stage}
	}
}

func (m Model) publish() tea.Cmd {
	ctx, p := m.ctx, m.pipeline
	return func() tea.Msg {
		r, err := p.RunPublish(ctx)
		return publishedMsg{receipt: r, err: err}
	}
}

func (m Model) copy() tea.Cmd {
	ctx, p := m.ctx, m.pipeline
	return func() tea.Msg {
		return copiedMsg{err: p.Copy(ctx)}
	}
}

// View renders the four stage cards.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("LinkedIn AI Post Automator") + "\n")
	b.WriteString("Automate your content creation pipeline from trend to publication.\n\n")

	if m.state.LastError != "" {
		b.WriteString(errorStyle.Render("! "+m.state.LastError) + "\n\n")
	}

	for stage := types.StageTrend; stage <= types.StagePublish; stage++ {
		fmt.Fprintf(&b, "%s %d. %s\n", m.marker(stage), int(stage), stage.Title())
		m.renderBody(&b, stage)
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n\n")
	}
	b.WriteString(helpStyle.Render("keys: [t] find trend  [p] generate post  [i] create image  [c] copy post  [enter] publish  [q] quit") + "\n")
	return b.String()
}

func (m Model) marker(stage types.Stage) string {
	switch {
	case m.loading.Busy(stage):
		return "[~]"
	case m.state.Completed(stage):
		return "[x]"
	case m.state.CurrentStage >= stage:
		return "[>]"
	default:
		return "[ ]"
	}
}

func (m Model) renderBody(b *strings.Builder, stage types.Stage) {
	s := m.state
	switch stage {
	case types.StageTrend:
		if m.loading.Trend {
			b.WriteString("    Finding a trend...\n")
		}
		if s.HasTopic() {
			fmt.Fprintf(b, "    Trending Topic: %s\n", s.Topic)
		}
	case types.StagePost:
		if m.loading.Post {
			b.WriteString("    Writing the post...\n")
		}
		if s.HasPost() {
			label := "Generated Post:"
			if s.CopyAcknowledged {
				label += " (copied!)"
			}
			fmt.Fprintf(b, "    %s\n", label)
			for _, line := range strings.Split(s.Post, "\n") {
				fmt.Fprintf(b, "      %s\n", line)
			}
		}
	case types.StageImage:
		if m.loading.Image {
			b.WriteString("    Image generation can take a minute. Please be patient...\n")
		}
		if s.HasImage() {
			fmt.Fprintf(b, "    Generated Image: %s\n", describeImage(s.Image))
		}
	case types.StagePublish:
		if s.CurrentStage >= types.StagePublish {
			b.WriteString("    Press enter to get your content ready for LinkedIn.\n")
		}
	}
}

// describeImage summarizes a data URI without printing the payload.
func describeImage(ref string) string {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return ref
	}
	mime := strings.TrimSuffix(header, ";base64")
	return fmt.Sprintf("%s, %d KB", mime, (len(payload)*3/4+1023)/1024)
}
