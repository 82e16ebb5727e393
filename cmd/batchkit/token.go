package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"batchkit/internal/auth"
)

var tokenFormat string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
	Long: `Generate API tokens for the HTTP server's bearer authentication.

Only bcrypt hashes are stored in the config (auth.tokenHashes); the token itself
is shown once.`,
}

var tokenNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new API token and its hash",
	Long: `Generate a new API token. Add the printed hash to auth.tokenHashes and
set auth.enabled to true.

Examples:
  batchkit token new
  batchkit token new --format json`,
	RunE: runTokenNew,
}

func init() {
	tokenNewCmd.Flags().StringVar(&tokenFormat, "format", "human", "Output format (human, json)")

	tokenCmd.AddCommand(tokenNewCmd)
	rootCmd.AddCommand(tokenCmd)
}

// TokenResponse is the JSON output of token new
type TokenResponse struct {
	Token  string `json:"token"`
	Hash   string `json:"hash"`
	Masked string `json:"masked"`
}

func runTokenNew(cmd *cobra.Command, args []string) error {
	token, err := auth.GenerateToken()
	if err != nil {
		return err
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		return err
	}

	resp := TokenResponse{Token: token, Hash: hash, Masked: auth.MaskToken(token)}
	out := cmd.OutOrStdout()

	switch tokenFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "human":
		fmt.Fprintf(out, "Token: %s\n", resp.Token)
		fmt.Fprintf(out, "Hash:  %s\n\n", resp.Hash)
		fmt.Fprintln(out, "Save the token now; it cannot be recovered.")
		fmt.Fprintln(out, "Add the hash to auth.tokenHashes in .batchkit/config.json and set auth.enabled to true.")
		return nil
	}
	return fmt.Errorf("unknown format %q", tokenFormat)
}
