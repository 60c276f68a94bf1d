//go:build !linux

package system

import (
	"context"
	"fmt"
)

func KeyName(code uint16) string { return fmt.Sprintf("Key%d", code) }

// WatchKeys is unavailable off Linux; the window host delivers keys instead.
func WatchKeys(ctx context.Context, l logger, onKey func(name string)) {
	if l != nil {
		l.Infof("input", "evdev keys unsupported on this platform")
	}
}
