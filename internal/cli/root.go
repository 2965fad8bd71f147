package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/terminally-online/tokenlist/internal/config"
	"github.com/terminally-online/tokenlist/internal/tokenlist"
)

var (
	cfgFile string
	cfg     *config.Config
	flags   config.Flags
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "tokenlist",
	Short: "Token list normalizer and validator",
	Long: `Tokenlist keeps a JSON token list consistent: it checksums every EVM address,
assigns identifiers to new entries and validates the whole list against the
token schema, reporting every problem it finds.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.LoadOptional(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level, err := cfg.GetLogLevel(&flags)
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		slog.Debug("configuration loaded", "config", cfgFile, "tokens", cfg.GetTokens(&flags))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tokenlist %s (schema revision %d)\n", version, tokenlist.SchemaRevision)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultFile, "config file path")
	rootCmd.PersistentFlags().StringVarP(&flags.Tokens, "file", "f", "", "path to the token list (default tokens.json)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute() error {
	return rootCmd.Execute()
}

func Root() *cobra.Command {
	return rootCmd
}
