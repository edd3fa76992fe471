package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vancomm/wfc-server/internal/config"
)

var (
	tokenClient   string
	tokenLifetime time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API token allowed to upload catalogs",
	Long: `Signs a client token with the key in JWT_PRIVATE_KEY or
JWT_PRIVATE_KEY_FILE. The server verifies it with the matching public key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := config.NewJWT()
		if err != nil {
			return err
		}
		return runToken(cmd.OutOrStdout(), j, tokenClient, tokenLifetime)
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenClient, "client", "c", "", "client name recorded on uploaded catalogs")
	tokenCmd.Flags().DurationVar(&tokenLifetime, "lifetime", 30*24*time.Hour, "token lifetime")
	tokenCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(out io.Writer, j *config.JWT, client string, lifetime time.Duration) error {
	if !j.CanSign() {
		return config.ErrNoSigningKey
	}
	token, err := j.IssueClientToken(client, lifetime)
	if err != nil {
		return fmt.Errorf("unable to sign token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
