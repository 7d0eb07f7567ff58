// Command llm-mux is a small CLI wiring the Provider Registry, Model
// Router, and Transform Facade together: enough to exercise the whole
// dialect-conversion pipeline from a terminal without standing up the
// (out of scope) HTTP server.
package main

import (
	"os"

	"github.com/nghyane/llm-mux/internal/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.New(logLevel).Errorf("%v", err)
		os.Exit(1)
	}
}
