package config

import (
	"os"

	"github.com/samber/lo"
)

// Getenv returns the value of the first named environment variable that is
// set to a non-empty value.
func Getenv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// FirstNonEmpty returns the first non-empty value.
func FirstNonEmpty(values ...string) string {
	v, _ := lo.Find(values, func(s string) bool { return s != "" })
	return v
}
