//go:build !unix

package main

import (
	"fmt"
	"os"
)

// redirectStdIO swaps the os.Stdout and os.Stderr handles. Runtime panics
// still reach the original stderr on these platforms.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
