// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clipboard copies text to the user's system clipboard by writing an
// OSC 52 escape sequence to the terminal. This works over SSH and needs no
// platform clipboard tool.
package clipboard

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aymanbagabas/go-osc52/v2"
)

// Mode selects how the sequence is wrapped for terminal multiplexers.
type Mode string

const (
	ModeDefault Mode = ""
	ModeTmux    Mode = "tmux"
	ModeScreen  Mode = "screen"
)

// DetectMode picks a multiplexer mode from the environment.
func DetectMode() Mode {
	if os.Getenv("TMUX") != "" {
		return ModeTmux
	}
	if os.Getenv("STY") != "" {
		return ModeScreen
	}
	return ModeDefault
}

// OSC52 writes copy sequences to Out.
type OSC52 struct {
	Out  io.Writer
	Mode Mode
}

// New returns an OSC52 clipboard writing to out in the detected mode.
func New(out io.Writer) *OSC52 {
	return &OSC52{Out: out, Mode: DetectMode()}
}

// Copy emits the sequence that places text on the clipboard.
func (c *OSC52) Copy(_ context.Context, text string) error {
	seq := osc52.New(text)
	switch c.Mode {
	case ModeTmux:
		seq = seq.Tmux()
	case ModeScreen:
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(c.Out); err != nil {
		return fmt.Errorf("writing OSC 52 sequence: %w", err)
	}
	return nil
}
