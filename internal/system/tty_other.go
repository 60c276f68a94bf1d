//go:build !linux

package system

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Console is a no-op off Linux.
type Console struct {
	Logger logger
}

func (c Console) EnterGraphics() error { return nil }
func (c Console) Restore() error       { return nil }
