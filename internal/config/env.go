package config

import (
	"fmt"
	"os"
	"slices"
	"time"
)

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// validateDurations reports the first unparseable entry in key order.
func validateDurations(fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if _, err := time.ParseDuration(fields[k]); err != nil {
			return fmt.Errorf("invalid %s: %w", k, err)
		}
	}
	return nil
}
