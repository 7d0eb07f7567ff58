package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nghyane/llm-mux/internal/config"
	"github.com/nghyane/llm-mux/internal/router"
)

var routeCmd = &cobra.Command{
	Use:   "route <model-name>",
	Short: "Resolve a model name to a provider and target model",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		rc := router.Config{}
		if cfgFile != "" {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			rc = loaded.ToRouterConfig()
		}

		r := router.New(rc, nil)
		res := r.Resolve(context.Background(), args[0])

		fmt.Fprintf(c.OutOrStdout(), "provider=%s model=%s source=%s\n", res.ProviderID, res.TargetModel, res.Source)
		for _, fb := range res.Fallbacks {
			fmt.Fprintf(c.OutOrStdout(), "fallback provider=%s model=%s\n", fb.Provider, fb.Model)
		}
		return nil
	},
}
