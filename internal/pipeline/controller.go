// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the four content stages: detect a trend,
// draft a post, generate an image, and stage the result for publication.
//
// The Controller owns all pipeline state. Callers read it through Snapshot
// and Loading and change it only through the Run* operations and the Copy
// intent. A stage runs only when its upstream output exists; re-running a
// stage discards its own output and everything downstream before the
// external call starts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pdiddy/postforge/internal/genai"
	"github.com/pdiddy/postforge/pkg/types"
)

var (
	// ErrPrecondition is returned when a stage's upstream output is absent.
	// Nothing is mutated and no external call is made.
	ErrPrecondition = errors.New("stage precondition not met")

	// ErrBusy is returned when a stage is invoked while its own call is in flight.
	ErrBusy = errors.New("stage already running")

	// ErrSuperseded is returned when a newer stage invocation started while
	// this one was waiting; its result was discarded.
	ErrSuperseded = errors.New("stage result superseded by a newer run")
)

// Messages stored in LastError when a stage's external call fails.
const (
	MsgTrendFailed = "Failed to detect trend. Please try again."
	MsgPostFailed  = "Failed to generate post. Please try again."
	MsgImageFailed = "Failed to generate image. Please try again."
)

// copyAckWindow is how long CopyAcknowledged stays set after a copy. Tests
// override it.
var copyAckWindow = 2 * time.Second

// Publisher receives the finished bundle when the publish gate is open.
type Publisher interface {
	Stage(ctx context.Context, b types.Bundle) (types.Receipt, error)
}

// Clipboard receives the post text on a copy intent.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

// Options configures a Controller. Zero values are valid: no publisher, no
// clipboard, no per-stage timeouts, logs discarded.
type Options struct {
	Publisher Publisher
	Clipboard Clipboard
	Timeouts  types.TimeoutConfig

	// Log receives one line per failed or discarded stage call with the
	// underlying error.
	Log io.Writer
}

// Controller runs pipeline stages against a generative service and owns the
// resulting state. It is safe for concurrent use; the lock is never held
// across an external call.
type Controller struct {
	svc  genai.Service
	opts Options

	mu         sync.Mutex
	store      *resultStore
	loading    loadingTracker
	generation uint64
	copyToken  uint64

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

// New returns a Controller in the initial state: stage 1 unlocked, no outputs.
func New(svc genai.Service, opts Options) *Controller {
	if opts.Log == nil {
		opts.Log = io.Discard
	}
	return &Controller{
		svc:   svc,
		opts:  opts,
		store: newResultStore(),
		subs:  make(map[chan struct{}]struct{}),
	}
}

// Snapshot returns a copy of the current pipeline state.
func (c *Controller) Snapshot() types.PipelineState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.snapshot()
}

// Loading returns a copy of the per-stage busy flags.
func (c *Controller) Loading() types.LoadingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading.snapshot()
}

// Subscribe returns a channel that receives a value after any state change,
// including the timer-driven end of a copy acknowledgement. Notifications
// coalesce; readers should take a fresh Snapshot on each one. The returned
// func unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	c.subMu.Lock()
	c.subs[ch] = struct{}{}
	c.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, ch)
			c.subMu.Unlock()
			close(ch)
		})
	}
}

func (c *Controller) notify() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// RunDetectTrend runs stage 1. It has no precondition.
func (c *Controller) RunDetectTrend(ctx context.Context) error {
	return c.run(ctx, types.StageTrend)
}

// RunGeneratePost runs stage 2. It requires a topic.
func (c *Controller) RunGeneratePost(ctx context.Context) error {
	return c.run(ctx, types.StagePost)
}

// RunGenerateImage runs stage 3. It requires a post.
func (c *Controller) RunGenerateImage(ctx context.Context) error {
	return c.run(ctx, types.StageImage)
}

// run executes the shared protocol for stages 1-3: mark busy, clear the
// last error and downstream outputs, call the service, then record the
// result or the stage's failure message. The busy flag is released on every
// path, including a panic in the service.
func (c *Controller) run(ctx context.Context, stage types.Stage) error {
	c.mu.Lock()
	input, ok := c.store.input(stage)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", stage, ErrPrecondition)
	}
	if c.loading.busy(stage) {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", stage, ErrBusy)
	}
	c.loading.set(stage, true)
	c.store.clearFrom(stage)
	c.generation++
	gen := c.generation
	c.mu.Unlock()
	c.notify()

	defer c.release(stage)

	result, err := c.call(ctx, stage, input)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		fmt.Fprintf(c.opts.Log, "discarding superseded %s result\n", stage)
		return fmt.Errorf("%s: %w", stage, ErrSuperseded)
	}
	if err != nil {
		fmt.Fprintf(c.opts.Log, "%s failed: %v\n", stage, err)
		c.store.fail(failureMessage(stage))
		return fmt.Errorf("%s: %w", stage, err)
	}
	c.store.complete(stage, result)
	return nil
}

func (c *Controller) release(stage types.Stage) {
	c.mu.Lock()
	c.loading.set(stage, false)
	c.mu.Unlock()
	c.notify()
}

// call invokes the service for stage under the stage's timeout. An empty
// result is treated as a failure so an absent output never reads as complete.
func (c *Controller) call(ctx context.Context, stage types.Stage, input string) (string, error) {
	if d := c.timeout(stage); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	var (
		out string
		err error
		op  string
	)
	switch stage {
	case types.StageTrend:
		op = genai.OpDetectTrend
		out, err = c.svc.DetectTrend(ctx)
	case types.StagePost:
		op = genai.OpGeneratePost
		out, err = c.svc.GeneratePost(ctx, input)
	case types.StageImage:
		op = genai.OpGenerateImage
		out, err = c.svc.GenerateImage(ctx, input)
	default:
		return "", fmt.Errorf("stage %d has no service call", int(stage))
	}
	if err == nil && out == "" {
		err = &genai.ServiceError{Op: op, Err: errors.New("empty result")}
	}
	return out, err
}

func (c *Controller) timeout(stage types.Stage) time.Duration {
	switch stage {
	case types.StageTrend:
		return c.opts.Timeouts.Trend
	case types.StagePost:
		return c.opts.Timeouts.Post
	case types.StageImage:
		return c.opts.Timeouts.Image
	default:
		return 0
	}
}

func failureMessage(stage types.Stage) string {
	switch stage {
	case types.StageTrend:
		return MsgTrendFailed
	case types.StagePost:
		return MsgPostFailed
	default:
		return MsgImageFailed
	}
}

// RunPublish hands the finished bundle to the publisher. It requires an
// image and CurrentStage 4. Pipeline state is not changed on success or
// failure. Without a publisher it only acknowledges readiness and returns a
// zero Receipt.
func (c *Controller) RunPublish(ctx context.Context) (types.Receipt, error) {
	snap := c.Snapshot()
	if !snap.ReadyToPublish() {
		return types.Receipt{}, fmt.Errorf("%s: %w", types.StagePublish, ErrPrecondition)
	}
	if c.opts.Publisher == nil {
		return types.Receipt{}, nil
	}

	receipt, err := c.opts.Publisher.Stage(ctx, types.Bundle{
		Topic: snap.Topic,
		Post:  snap.Post,
		Image: snap.Image,
	})
	if err != nil {
		return types.Receipt{}, fmt.Errorf("staging bundle: %w", err)
	}
	return receipt, nil
}

// Copy sends the post text to the clipboard and sets CopyAcknowledged for
// copyAckWindow. Only the most recent copy's timer clears the flag.
func (c *Controller) Copy(ctx context.Context) error {
	post := c.Snapshot().Post
	if post == "" {
		return fmt.Errorf("copy: %w", ErrPrecondition)
	}
	if c.opts.Clipboard != nil {
		if err := c.opts.Clipboard.Copy(ctx, post); err != nil {
			return fmt.Errorf("copying post: %w", err)
		}
	}

	c.mu.Lock()
	c.store.copyAck = true
	c.copyToken++
	token := c.copyToken
	c.mu.Unlock()
	c.notify()

	time.AfterFunc(copyAckWindow, func() {
		c.mu.Lock()
		if c.copyToken == token {
			c.store.copyAck = false
		}
		c.mu.Unlock()
		c.notify()
	})
	return nil
}
