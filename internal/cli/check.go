package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terminally-online/tokenlist/internal/tokenlist"
)

var checkDryRun bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Normalize, then validate the normalized list",
	Long: `Run the normalizer and validate its output. The normalized list is written
only when it passes validation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cfg.GetFormat(&flags)
		if err != nil {
			return err
		}
		out := cfg.GetOut(&flags)

		doc, err := tokenlist.Load(cfg.GetTokens(&flags))
		if err != nil {
			return err
		}

		normalized, res, err := tokenlist.Normalize(doc, tokenlist.Options{})
		if err != nil {
			return fmt.Errorf("failed to normalize addresses: %w", err)
		}

		if err := reportValidation(cmd, normalized, format); err != nil {
			return err
		}

		if checkDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %d token(s) would be updated.\n", len(res.Modified))
			return nil
		}
		if len(res.Modified) == 0 && out == cfg.GetTokens(&flags) {
			return nil
		}

		if err := tokenlist.Save(out, normalized); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d token(s) updated. Output written to %s\n", len(res.Modified), out)
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&flags.Out, "out", "o", "", "output path (default: overwrite the input)")
	checkCmd.Flags().StringVar(&flags.Format, "format", "", "report format: text or table (default text)")
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "validate without writing the normalized list")
}
