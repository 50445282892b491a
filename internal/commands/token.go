package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"akipsinv/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage serve-mode authentication tokens",
}

var generateTokenCmd = &cobra.Command{
	Use:   "generate [subject]",
	Short: "Generate a serve-mode bearer token",
	Long: `Generate a JWT bearer token for the HTTP inventory server.

The token is signed with security.jwt_secret from the configuration file.
Read tokens can query the inventory; write tokens can also trigger
refreshes.

Examples:
  akipsinv token generate ci-runner
  akipsinv token generate ops --role write --expiration 720`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerateToken,
}

var (
	tokenRole       string
	tokenExpiration int64
)

func init() {
	generateTokenCmd.Flags().StringVar(&tokenRole, "role", "read", "token role (read, write)")
	generateTokenCmd.Flags().Int64Var(&tokenExpiration, "expiration", 24, "token expiration in hours")

	tokenCmd.AddCommand(generateTokenCmd)
}

func runGenerateToken(cmd *cobra.Command, args []string) error {
	subject := args[0]

	var role auth.Role
	switch tokenRole {
	case "read":
		role = auth.RoleRead
	case "write":
		role = auth.RoleWrite
	default:
		return fmt.Errorf("unknown role %q (expected read or write)", tokenRole)
	}

	expiration := time.Duration(tokenExpiration) * time.Hour

	token, err := auth.NewJWTService(cfg).GenerateToken(subject, role, expiration)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Printf("Subject:    %s\n", subject)
	fmt.Printf("Role:       %s\n", role)
	fmt.Printf("Expiration: %s (%d hours)\n", expiration, tokenExpiration)
	fmt.Printf("\nToken:\n%s\n", token)
	return nil
}
