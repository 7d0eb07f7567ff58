// Package config loads the Model Router's static mapping table and the
// closed set of provider credentials it needs for OpenAI-web/standard
// disambiguation (spec §4.5). It replaces the teacher's credential/
// API-key provider configuration, which is out of scope here: routing
// already resolves a provider id, and reaching that provider's transport
// is the external HTTP layer's job (an explicit Non-goal).
package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/nghyane/llm-mux/internal/json"
	"github.com/nghyane/llm-mux/internal/router"
)

// ModelMappingEntry is one row of the static mapping table (spec §4.5
// step 2): a model name or alias maps to a provider-qualified target plus
// optional fallbacks, each of which may itself carry a ":provider" suffix.
type ModelMappingEntry struct {
	From      string   `yaml:"from" json:"from"`
	To        string   `yaml:"to" json:"to"`
	Fallbacks []string `yaml:"fallbacks,omitempty" json:"fallbacks,omitempty"`
}

// Config is the on-disk shape of the router's configuration.
type Config struct {
	ModelMapping []ModelMappingEntry `yaml:"model-mapping,omitempty" json:"model-mapping,omitempty"`

	// Credentials lists which provider credentials are configured, used
	// by the router's openai/openai-web disambiguation step.
	Credentials map[string]bool `yaml:"credentials,omitempty" json:"credentials,omitempty"`

	// OpenAIFallbackEnabled governs whether a configured openai-web
	// credential also yields an openai fallback target.
	OpenAIFallbackEnabled bool `yaml:"openai-fallback-enabled,omitempty" json:"openai-fallback-enabled,omitempty"`
}

// Load reads a router config file. JSON and JSONC (comments, trailing
// commas) are standardized via hujson before unmarshaling; anything else
// is parsed as YAML.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw, path)
}

// Parse parses raw config bytes. path is used only to pick JSON vs YAML
// by extension; pass "" to force YAML.
func Parse(raw []byte, path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".jsonc") || looksLikeJSON(raw) {
		standardized, err := hujson.Standardize(raw)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(standardized, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func looksLikeJSON(raw []byte) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// ToRouterConfig builds the router.Config this file describes.
func (c *Config) ToRouterConfig() router.Config {
	rules := make([]router.StaticRule, 0, len(c.ModelMapping))
	for _, m := range c.ModelMapping {
		rules = append(rules, router.StaticRule{From: m.From, To: m.To, Fallbacks: m.Fallbacks})
	}

	credentials := c.Credentials
	return router.Config{
		StaticMapping:         rules,
		OpenAIFallbackEnabled: c.OpenAIFallbackEnabled,
		HasCredential: func(provider string) bool {
			return credentials[provider]
		},
	}
}
