package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terminally-online/tokenlist/internal/tokenlist"
)

var assignCmd = &cobra.Command{
	Use:   "assign-ids",
	Short: "Give every token without an id a random one",
	Long: `Assign a random 256-bit hex id and a creation timestamp to every token that
has no id. Tokens with a legacy "key" keep it as their id. Tokens that
already have an id are not touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cfg.GetTokens(&flags)
		out := cfg.GetOut(&flags)

		doc, err := tokenlist.Load(in)
		if err != nil {
			return err
		}

		assigned, res, err := tokenlist.AssignIDs(doc, tokenlist.AssignOptions{})
		if err != nil {
			return fmt.Errorf("failed to assign ids: %w", err)
		}

		if len(res.Assigned) == 0 && len(res.Adopted) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Every token already has an id.")
			return nil
		}

		if err := tokenlist.Save(out, assigned); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Assigned %d new id(s), adopted %d legacy key(s). Output written to %s\n",
			len(res.Assigned), len(res.Adopted), out)
		return nil
	},
}

func init() {
	assignCmd.Flags().StringVarP(&flags.Out, "out", "o", "", "output path (default: overwrite the input)")
}
