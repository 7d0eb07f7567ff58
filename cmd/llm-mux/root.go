package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string
var logLevel string

var rootCmd = &cobra.Command{
	Use:   "llm-mux",
	Short: "Multi-dialect LLM gateway transform and routing CLI",
	Long: `llm-mux converts request/response payloads between dialects and
resolves model names to providers, without standing up the HTTP server.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to router config (yaml or jsonc)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(routeCmd)
}
