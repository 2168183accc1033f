package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/herald/pkg/identity"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a recipient token",
	Long: `Mint an HS256 token carrying a recipient identity, for use with
'herald watch --token' or any client of an authenticated server.

Example:
  herald token --secret my-secret --recipient user-42 --role manager --ttl 24h`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().String("secret", "", "Signing secret (required)")
	tokenCmd.Flags().String("recipient", "", "Recipient ID (required)")
	tokenCmd.Flags().String("role", "", "Recipient role (defaults to user)")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime; the session ends when it expires")
	_ = tokenCmd.MarkFlagRequired("secret")
	_ = tokenCmd.MarkFlagRequired("recipient")

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	secret, _ := cmd.Flags().GetString("secret")
	recipientID, _ := cmd.Flags().GetString("recipient")
	role, _ := cmd.Flags().GetString("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	token, err := identity.GenerateToken(secret, recipientID, role, ttl)
	if err != nil {
		return fmt.Errorf("failed to mint token: %v", err)
	}

	fmt.Println(token)
	return nil
}
