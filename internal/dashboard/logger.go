package dashboard

// Logger matches the application's component-tagged logger.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(string, string, ...interface{})  {}
func (NoopLogger) Errorf(string, string, ...interface{}) {}
