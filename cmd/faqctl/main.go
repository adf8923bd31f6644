// faqctl inspects and seeds the FAQ file used by the support server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var path string
	root := &cobra.Command{
		Use:           "faqctl",
		Short:         "Inspect and seed the helpdesk FAQ file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&path, "path", envOrDefault("FAQ_PATH", "data/faqs.json"), "FAQ file (JSON, or YAML by extension)")

	root.AddCommand(newListCmd(&path), newInitCmd(&path), newMatchCmd(&path))
	return root
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
