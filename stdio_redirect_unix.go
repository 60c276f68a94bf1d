//go:build unix

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// Duplicate the file descriptor onto stdout/stderr so panics and all prints
	// (including from other goroutines) end up in the file.
	for _, target := range []*os.File{os.Stdout, os.Stderr} {
		if err := unix.Dup2(int(f.Fd()), int(target.Fd())); err != nil {
			return fmt.Errorf("dup2 onto %s: %w", target.Name(), err)
		}
	}
	return nil
}
