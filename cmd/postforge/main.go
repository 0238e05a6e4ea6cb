// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the postforge CLI: a four-stage
// content pipeline that detects a trending AI topic, drafts a LinkedIn post
// about it, generates an illustration, and stages the bundle for manual
// publication.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/postforge/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from the secrets directory at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the postforge CLI.
var rootCmd = &cobra.Command{
	Use:   "postforge",
	Short: "Trend-to-post content pipeline backed by a generative AI service",
	Long: `postforge drives a four-stage content pipeline: detect a trending topic,
write a storytelling LinkedIn post about it, generate an illustrative image,
and stage the result for manual publication.

Use "studio" for the interactive pipeline, "run" to execute every stage
once, and "staged" to browse bundles ready for publication.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(viper.GetString("secrets_dir"), os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./postforge.yaml or ~/.config/postforge/postforge.yaml)")
	pf.String("secrets-dir", ".secrets", "directory of secret files (gemini-api-key)")
	pf.String("api-key", "", "Generative Language API key (overrides config and secrets)")
	pf.String("staging-dir", "", "directory for staged bundles (default \"staged\")")

	viper.BindPFlag("secrets_dir", pf.Lookup("secrets-dir"))
	viper.BindPFlag("genai.api_key", pf.Lookup("api-key"))
	viper.BindPFlag("staging.dir", pf.Lookup("staging-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("postforge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "postforge"))
		}
	}

	viper.SetEnvPrefix("POSTFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
