package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrogh/homewatch/internal/store"
)

var hashpwCmd = &cobra.Command{
	Use:   "hashpw <password>",
	Short: "Hash a dashboard account password",
	Long: `Hash a password with bcrypt for direct insertion into the users
table. Accounts are provisioned out of band; the server never writes
them.`,
	Args: cobra.ExactArgs(1),
	RunE: runHashpw,
}

func init() {
	rootCmd.AddCommand(hashpwCmd)
}

func runHashpw(cmd *cobra.Command, args []string) error {
	password := args[0]
	if password == "" {
		return errors.New("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), store.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(hash))
	return nil
}
