package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides for keys without a vendor name.
const EnvPrefix = "PARADOX"

var vendorEnv = map[string]string{
	"openai.api_key":      EnvOpenAIAPIKey,
	"openai.organization": EnvOpenAIOrg,
	"openai.assistant_id": EnvOpenAIAssistantID,
	"openai.base_url":     EnvOpenAIBaseURL,
	"openai.model":        EnvOpenAIModel,
	"gemini.api_key":      EnvGeminiAPIKey,
	"gemini.base_url":     EnvGeminiBaseURL,
	"gemini.model":        EnvGeminiModel,
}

// Defaults returns the built-in default settings keyed by viper path.
func Defaults() map[string]any {
	return map[string]any{
		"mode":                     ModeResponses,
		"openai.api_key":           "",
		"openai.organization":      "",
		"openai.assistant_id":      "",
		"openai.base_url":          "https://api.openai.com/v1",
		"openai.model":             "gpt-4.1-mini",
		"openai.max_output_tokens": 80,
		"openai.timeout":           60 * time.Second,
		"gemini.api_key":           "",
		"gemini.base_url":          "",
		"gemini.model":             "gemini-2.0-flash",
		"gemini.max_output_tokens": 80,
		"gemini.timeout":           60 * time.Second,
		"prompt.default":           "",
		"prompt.system":            "",
		"prompt.fallback":          "",
		"poll.interval":            300 * time.Millisecond,
		"poll.max_wait":            25 * time.Second,
		"server.addr":              ":8080",
		"server.path":              "/stream",
	}
}

// Load builds a Config from defaults, an optional config file and the environment.
// Environment values take precedence over the file. A fresh viper instance is used
// on every call so that each invocation observes the current environment.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range vendorEnv {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		if err := readFile(v, path); err != nil {
			return Config{}, err
		}
	}

	if mode := v.GetString("mode"); mode != "" {
		v.Set("mode", strings.ToLower(strings.TrimSpace(mode)))
	}
	if err := ValidateSettings(v.AllSettings()); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func readFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "yml" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
