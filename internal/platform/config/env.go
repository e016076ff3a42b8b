// Package config loads command configuration from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// LookupFunc resolves one environment variable.
type LookupFunc func(key string) (string, bool)

// ParseEnv loads configuration from process environment variables.
func ParseEnv(target any) error {
	return ParseEnvWith(target, nil)
}

// ParseEnvWith loads configuration through lookup instead of the process
// environment. A nil lookup reads os.LookupEnv.
func ParseEnvWith(target any, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	environment := make(map[string]string)
	for _, key := range envKeys(target) {
		if value, ok := lookup(key); ok {
			environment[key] = value
		}
	}
	if err := env.ParseWithOptions(target, env.Options{Environment: environment}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func envKeys(target any) []string {
	params, err := env.GetFieldParams(target)
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(params))
	for _, param := range params {
		if param.Key != "" {
			keys = append(keys, param.Key)
		}
	}
	return keys
}
