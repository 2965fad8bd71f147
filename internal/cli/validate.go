package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terminally-online/tokenlist/internal/report"
	"github.com/terminally-online/tokenlist/internal/tokenlist"
)

var errValidationFailed = errors.New("token list is invalid")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the token list",
	Long: `Check every token for required fields, types, unique symbols and ids,
timestamp format, logo URLs and address checksums.

All problems are reported, one per line, before the command exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cfg.GetFormat(&flags)
		if err != nil {
			return err
		}

		doc, err := tokenlist.Load(cfg.GetTokens(&flags))
		if err != nil {
			return err
		}

		return reportValidation(cmd, doc, format)
	},
}

func reportValidation(cmd *cobra.Command, doc *tokenlist.Document, format string) error {
	r := tokenlist.Validate(doc)
	count := doc.TokenCount()

	if r.OK() {
		fmt.Fprintln(cmd.OutOrStdout(), report.Summary(r, count))
		return nil
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Validation errors found:")
	if err := report.Write(cmd.ErrOrStderr(), r, format); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), report.Summary(r, count))
	return errValidationFailed
}

func init() {
	validateCmd.Flags().StringVar(&flags.Format, "format", "", "report format: text or table (default text)")
}
