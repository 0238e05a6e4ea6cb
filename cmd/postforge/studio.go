// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/postforge/internal/clipboard"
	"github.com/pdiddy/postforge/internal/studio"
)

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Run the pipeline interactively in the terminal",
	Long: `Studio shows the four pipeline stages as cards. Press t to find a
trending topic, p to write the post, i to create the image, c to copy the
post to the clipboard, and enter to stage the bundle for LinkedIn.

Each stage unlocks once the previous one has produced output. Re-running a
stage discards its output and everything after it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(viper.GetViper(), loadedSecrets)

		// Failure details go to a log file: stderr belongs to the TUI.
		logFile, err := os.OpenFile(viper.GetString("studio.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer logFile.Close()

		a, err := newApp(cfg, clipboard.New(os.Stderr), logFile)
		if err != nil {
			return err
		}
		defer a.Close()

		var opts []tea.ProgramOption
		if alt, _ := cmd.Flags().GetBool("alt-screen"); alt {
			opts = append(opts, tea.WithAltScreen())
		}
		return studio.Run(cmd.Context(), a.controller, opts...)
	},
}

func init() {
	studioCmd.Flags().Bool("alt-screen", true, "use the terminal's alternate screen")
	studioCmd.Flags().String("log", "postforge.log", "file that receives stage failure details")
	viper.BindPFlag("studio.log", studioCmd.Flags().Lookup("log"))

	rootCmd.AddCommand(studioCmd)
}
