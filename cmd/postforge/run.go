// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/postforge/internal/clipboard"
	"github.com/pdiddy/postforge/internal/pipeline"
	"github.com/pdiddy/postforge/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every pipeline stage once and stage the result",
	Long: `Run executes the pipeline without the interactive studio: detect a
trending topic, write the post, generate the image, and stage the bundle
under the staging directory. The run stops at the first failed stage.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("no-publish", false, "stop after image generation without staging the bundle")
	runCmd.Flags().Bool("copy", false, "copy the post to the clipboard (OSC 52) when it is ready")
	runCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(runCmd)
}

// runResult is what a headless run reports.
type runResult struct {
	Topic   string         `json:"topic"`
	Post    string         `json:"post"`
	Image   string         `json:"image,omitempty"`
	Receipt *types.Receipt `json:"receipt,omitempty"`
}

func runRun(cmd *cobra.Command, args []string) error {
	noPublish, _ := cmd.Flags().GetBool("no-publish")
	doCopy, _ := cmd.Flags().GetBool("copy")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg := configFrom(viper.GetViper(), loadedSecrets)
	a, err := newApp(cfg, clipboard.New(os.Stderr), os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := runStages(cmd.Context(), a.controller, !noPublish, doCopy, os.Stderr)
	if err != nil {
		return err
	}

	if asJSON {
		res.Image = ""
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Printf("Trending Topic: %s\n\n%s\n", res.Topic, res.Post)
	if res.Receipt != nil {
		fmt.Printf("\nStaged %s in %s\n", res.Receipt.ID, res.Receipt.Dir)
	}
	return nil
}

// runStages drives c through stages 1-3 in order, optionally copies the
// post, and stages the bundle when publish is set. Progress goes to w.
func runStages(ctx context.Context, c *pipeline.Controller, publish, doCopy bool, w io.Writer) (runResult, error) {
	steps := []struct {
		stage types.Stage
		run   func(context.Context) error
	}{
		{types.StageTrend, c.RunDetectTrend},
		{types.StagePost, c.RunGeneratePost},
		{types.StageImage, c.RunGenerateImage},
	}

	for _, step := range steps {
		fmt.Fprintf(w, "[%d/4] %s...\n", int(step.stage), step.stage.Title())
		if err := step.run(ctx); err != nil {
			if msg := c.Snapshot().LastError; msg != "" {
				return runResult{}, fmt.Errorf("%s: %w", msg, err)
			}
			return runResult{}, err
		}
	}

	snap := c.Snapshot()
	res := runResult{Topic: snap.Topic, Post: snap.Post, Image: snap.Image}

	if doCopy {
		if err := c.Copy(ctx); err != nil {
			fmt.Fprintf(w, "warning: %v\n", err)
		}
	}

	if !publish {
		return res, nil
	}
	fmt.Fprintf(w, "[4/4] %s...\n", types.StagePublish.Title())
	receipt, err := c.RunPublish(ctx)
	if err != nil {
		return res, err
	}
	if receipt.ID != "" {
		res.Receipt = &receipt
	}
	return res, nil
}
