package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads dotenv files into the process environment in order.
// Later files override earlier ones and the existing environment. Missing
// files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := godotenv.Overload(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}
