package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facegate",
	Short: "A face enrollment and verification service",
	Long: `Facegate is a REST service that enrolls human faces into a PostgreSQL
catalog and verifies uploaded images against it. Face detection and
embedding are delegated to an external embedder service; Facegate owns
matching, persistence and the annotated responses.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
