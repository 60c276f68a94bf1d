//go:build linux

package system

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

// Active VT first, then the foreground console.
var consolePaths = []string{"/dev/tty", "/dev/tty0"}

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Console switches the virtual terminal between text and graphics while the
// framebuffer host owns the screen.
type Console struct {
	Logger logger
}

// EnterGraphics sets KD_GRAPHICS and hides the cursor so the console does
// not draw over the dashboard.
func (c Console) EnterGraphics() error {
	err := errors.Join(setKDMode(kdGraphics), writeVT("\x1b[?25l"))
	c.report("KD_GRAPHICS set, cursor hidden", "enter graphics", err)
	return err
}

// Restore returns the console to text mode with a visible cursor.
func (c Console) Restore() error {
	err := errors.Join(setKDMode(kdText), writeVT("\x1b[?25h"))
	c.report("KD_TEXT set, cursor shown", "restore text mode", err)
	return err
}

func (c Console) report(ok, op string, err error) {
	if c.Logger == nil {
		return
	}
	if err != nil {
		c.Logger.Errorf("tty", "%s failed: %v", op, err)
		return
	}
	c.Logger.Infof("tty", "%s", ok)
}

func setKDMode(mode int) error {
	var lastErr error
	for _, p := range consolePaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		_ = unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("KDSETMODE %d on %s: %w", mode, p, err)
			continue
		}
		return nil
	}
	return lastErr
}

func writeVT(s string) error {
	var lastErr error
	for _, p := range consolePaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(s)
		_ = f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("write VT: %w", lastErr)
}
