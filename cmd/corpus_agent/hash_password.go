package main

import (
	"fmt"
	"os"

	"github.com/daniela/corpus-insights/internal/config"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash an admin password for the API server",
	Long:  "Hash a password with bcrypt for use as ADMIN_PASSWORD_HASH. Respects BCRYPT_COST and PASSWORD_PEPPER.",
	RunE:  runHashPassword,
}

var hashPasswordValue string

func init() {
	hashPasswordCmd.Flags().StringVarP(&hashPasswordValue, "password", "p", "", "Password to hash (required)")
	_ = hashPasswordCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(_ *cobra.Command, _ []string) error {
	pc, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	hash, err := pc.HashPassword(hashPasswordValue)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(os.Stdout, hash)
	return nil
}
