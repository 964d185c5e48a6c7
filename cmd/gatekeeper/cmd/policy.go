package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitvelocity/gatekeeper/auth"
	"github.com/bitvelocity/gatekeeper/internal/config"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect the authorization rule table",
	// Rules are read from BASE_PATH and AUTH_RULES only; no secret is needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective rule table in evaluation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := config.LoadPolicy()
		if err != nil {
			return fmt.Errorf("compile rules: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), auth.FormatRules(policy.Rules()))
		return nil
	},
}

var policyCheckCmd = &cobra.Command{
	Use:   "check METHOD PATH",
	Short: "Evaluate one request against the rule table",
	Long: `Evaluates METHOD PATH as an authenticated user holding --roles, or as an
anonymous caller with --anonymous, and prints the decision. The command exits
non-zero when the request would be denied.`,
	Example: `  gatekeeper policy check DELETE /api/products/42 --roles VENDOR
  gatekeeper policy check GET /api/products --anonymous`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := config.LoadPolicy()
		if err != nil {
			return fmt.Errorf("compile rules: %w", err)
		}

		var principal *auth.Principal
		if anonymous, _ := cmd.Flags().GetBool("anonymous"); !anonymous {
			user, _ := cmd.Flags().GetString("user")
			roles, _ := cmd.Flags().GetStringSlice("roles")
			principal = auth.NewPrincipal(user, roles...)
		}

		d := policy.Authorize(principal, args[0], args[1])
		rule := "none"
		if d.RuleIndex >= 0 {
			rule = policy.Rules()[d.RuleIndex].String()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (reason=%s, rule=%s)\n", d.Method, d.Path, d.Outcome(), d.Reason, rule)
		return d.Err()
	},
}

func init() {
	policyCheckCmd.Flags().StringSlice("roles", nil, "Roles held by the caller (comma-separated)")
	policyCheckCmd.Flags().String("user", "cli", "Username of the caller")
	policyCheckCmd.Flags().Bool("anonymous", false, "Evaluate as an unauthenticated caller")

	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policyCheckCmd)
}
