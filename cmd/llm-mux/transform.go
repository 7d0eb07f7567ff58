package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	sdktranslator "github.com/nghyane/llm-mux/sdk/translator"
)

var (
	transformFrom  string
	transformTo    string
	transformModel string
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Convert a request or response payload between dialects",
}

var transformRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Convert a request payload read from stdin",
	RunE: func(c *cobra.Command, args []string) error {
		return runTransform(c, sdktranslator.TransformRequest)
	},
}

var transformResponseCmd = &cobra.Command{
	Use:   "response",
	Short: "Convert a response payload read from stdin",
	RunE: func(c *cobra.Command, args []string) error {
		return runTransform(c, sdktranslator.TransformResponse)
	},
}

func init() {
	for _, c := range []*cobra.Command{transformRequestCmd, transformResponseCmd} {
		c.Flags().StringVar(&transformFrom, "from", "", "source dialect (required)")
		c.Flags().StringVar(&transformTo, "to", "", "target dialect (required)")
		c.Flags().StringVar(&transformModel, "model", "", "model name override (request only)")
		_ = c.MarkFlagRequired("from")
		_ = c.MarkFlagRequired("to")
	}
	transformCmd.AddCommand(transformRequestCmd)
	transformCmd.AddCommand(transformResponseCmd)
}

func runTransform(c *cobra.Command, convert func([]byte, sdktranslator.Options) ([]byte, error)) error {
	raw, err := io.ReadAll(c.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	out, err := convert(raw, sdktranslator.Options{From: transformFrom, To: transformTo, Model: transformModel})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.OutOrStdout(), string(out))
	return err
}
