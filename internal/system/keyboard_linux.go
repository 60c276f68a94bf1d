//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const (
	evKey = 0x01

	keyPress = 1
)

// Linux input-event-codes.h, the keys a driver is likely to hit.
var keyNames = map[uint16]string{
	1: "Escape", 14: "BackSpace", 15: "Tab", 28: "Return", 57: "Space",
	59: "F1", 60: "F2", 61: "F3", 62: "F4", 63: "F5", 64: "F6",
	65: "F7", 66: "F8", 67: "F9", 68: "F10", 87: "F11", 88: "F12",
	103: "Up", 105: "Left", 106: "Right", 108: "Down",
	2: "1", 3: "2", 4: "3", 5: "4", 6: "5", 7: "6", 8: "7", 9: "8", 10: "9", 11: "0",
	16: "Q", 17: "W", 18: "E", 19: "R", 20: "T", 21: "Y", 22: "U", 23: "I", 24: "O", 25: "P",
	30: "A", 31: "S", 32: "D", 33: "F", 34: "G", 35: "H", 36: "J", 37: "K", 38: "L",
	44: "Z", 45: "X", 46: "C", 47: "V", 48: "B", 49: "N", 50: "M",
}

// KeyName maps an evdev key code to the host-independent key name.
func KeyName(code uint16) string {
	if name, ok := keyNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Key%d", code)
}

// WatchKeys reads Linux evdev devices under /dev/input/event* and calls
// onKey for every key press until ctx is done. onKey is called from the
// reader goroutines.
//
// It is best-effort: if no input devices are available, it logs and returns.
func WatchKeys(ctx context.Context, l logger, onKey func(name string)) {
	if onKey == nil {
		return
	}

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	eventSize := tvSize + 2 + 2 + 4

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if l != nil {
			l.Infof("input", "no evdev devices found, keys disabled")
		}
		return
	}

	for _, path := range paths {
		go watchDevice(ctx, l, path, tvSize, eventSize, onKey)
	}
}

func watchDevice(ctx context.Context, l logger, path string, tvSize, eventSize int, onKey func(string)) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()
	if l != nil {
		l.Infof("input", "watching %s", path)
	}

	buf := make([]byte, 64*eventSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			rec := buf[off : off+eventSize]
			typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
			code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
			value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
			if typ == evKey && value == keyPress {
				onKey(KeyName(code))
			}
		}
	}
}
