package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/terminally-online/tokenlist/internal/tokenlist"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Rewrite every 0x address in checksummed form",
	Long: `Rewrite every oracle source address and contract address that starts with 0x
to its EIP-55 checksummed form.

Tokens whose addresses actually change get a fresh timestamp. Nothing is
written if any address is malformed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cfg.GetTokens(&flags)
		out := cfg.GetOut(&flags)

		doc, err := tokenlist.Load(in)
		if err != nil {
			return err
		}

		normalized, res, err := tokenlist.Normalize(doc, tokenlist.Options{})
		if err != nil {
			return fmt.Errorf("failed to normalize addresses: %w", err)
		}
		for _, i := range res.Modified {
			slog.Debug("token normalized", "index", i)
		}

		if err := tokenlist.Save(out, normalized); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Addresses normalized successfully. %d token(s) updated. Output written to %s\n", len(res.Modified), out)
		return nil
	},
}

func init() {
	normalizeCmd.Flags().StringVarP(&flags.Out, "out", "o", "", "output path (default: overwrite the input)")
}
