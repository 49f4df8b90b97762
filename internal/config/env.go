package config

import (
	"os"
	"strings"
)

// EnvPrefix prefixes every environment override of a Config key.
const EnvPrefix = "AIRCLASH_"

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// EnvName returns the environment variable that overrides a config key,
// e.g. "draw_contacts" → "AIRCLASH_DRAW_CONTACTS".
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// ApplyEnv overrides every key that has an environment variable set.
// The first invalid value aborts with an error naming the variable.
func (c *Config) ApplyEnv() error {
	for _, key := range c.Keys() {
		value, ok := os.LookupEnv(EnvName(key))
		if !ok {
			continue
		}
		if err := c.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}
