// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/postforge/internal/staging"
	"github.com/pdiddy/postforge/pkg/types"
)

var stagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Browse bundles staged for publication",
}

var stagedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staged bundles, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := openStagingStore()
		if err != nil {
			return err
		}
		defer store.Close()

		receipts, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(receipts)
		}
		return printReceipts(os.Stdout, receipts)
	},
}

var stagedShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a staged bundle and its post text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStagingStore()
		if err != nil {
			return err
		}
		defer store.Close()

		r, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshaling receipt: %w", err)
		}
		post, err := os.ReadFile(r.PostPath)
		if err != nil {
			return fmt.Errorf("reading post: %w", err)
		}
		fmt.Printf("%s---\n%s", data, post)
		return nil
	},
}

func init() {
	stagedListCmd.Flags().Int("limit", 20, "maximum number of bundles to list (0 for all)")
	stagedListCmd.Flags().Bool("json", false, "output results as JSON")

	stagedCmd.AddCommand(stagedListCmd, stagedShowCmd)
	rootCmd.AddCommand(stagedCmd)
}

func openStagingStore() (*staging.Store, error) {
	cfg := configFrom(viper.GetViper(), loadedSecrets)
	return staging.NewStore(cfg.Staging)
}

func printReceipts(w io.Writer, receipts []types.Receipt) error {
	if len(receipts) == 0 {
		fmt.Fprintln(w, "No staged bundles.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTAGED\tTOPIC")
	for _, r := range receipts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.StagedAt.Local().Format(time.DateTime), r.Topic)
	}
	return tw.Flush()
}
