package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bitvelocity/gatekeeper/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "gatekeeper",
	Short: "Product catalog API with JWT authentication",
	Long: `Gatekeeper serves the product catalog REST API. Every request passes
through bearer token validation and a method and path rule table before it
reaches a handler.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		applyFlagOverrides(cmd, cfg)
		return nil
	},
}

// applyFlagOverrides lets --addr and --log-level win over the environment.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		c.ServerAddr = addr
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(level))
	}
}

func init() {
	rootCmd.PersistentFlags().String("addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env: LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
