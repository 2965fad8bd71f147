package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terminally-online/tokenlist/internal/publish"
	"github.com/terminally-online/tokenlist/internal/tokenlist"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the token list to a Postgres registry table",
	Long: `Replace the contents of the registry table with the tokens of the list.

The list must pass validation and every token must have an id. Upserts,
removal of stale rows and the publication record happen in one transaction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbURL, err := cfg.GetDatabaseURL(&flags)
		if err != nil {
			return err
		}
		table := cfg.GetTable(&flags)

		doc, err := tokenlist.Load(cfg.GetTokens(&flags))
		if err != nil {
			return err
		}

		pub, err := publish.Publish(cmd.Context(), dbURL, table, doc)
		if err != nil {
			return fmt.Errorf("failed to publish token list: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Published %d token(s) to %s (checksum %s)\n", pub.TokenCount, pub.Table, shortChecksum(pub.Checksum))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the token list changed since it was last published",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbURL, err := cfg.GetDatabaseURL(&flags)
		if err != nil {
			return err
		}
		table := cfg.GetTable(&flags)

		doc, err := tokenlist.Load(cfg.GetTokens(&flags))
		if err != nil {
			return err
		}

		status, err := publish.GetStatus(cmd.Context(), dbURL, table, doc)
		if err != nil {
			return fmt.Errorf("failed to get publication status: %w", err)
		}

		w := cmd.OutOrStdout()
		if status.Last == nil {
			fmt.Fprintf(w, "Nothing published to %s yet.\n", table)
			return nil
		}

		fmt.Fprintf(w, "Last published %s: %d token(s), checksum %s\n",
			status.Last.PublishedAt.Format("2006-01-02 15:04:05"), status.Last.TokenCount, shortChecksum(status.Last.Checksum))
		if status.Changed {
			fmt.Fprintf(w, "  ○ local list changed (checksum %s), run publish to update\n", shortChecksum(status.Checksum))
		} else {
			fmt.Fprintln(w, "  ✓ local list matches the published one")
		}
		return nil
	},
}

func shortChecksum(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}

func init() {
	for _, cmd := range []*cobra.Command{publishCmd, statusCmd} {
		cmd.Flags().StringVar(&flags.URL, "url", "", "database connection URL")
		cmd.Flags().StringVar(&flags.Table, "table", "", "registry table name (default tokens)")
	}
}
