package applog

// AppLogger defines the logging interface shared by adapters and use cases.
// Arguments follow the slog key/value convention.
type AppLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
	Trace(msg string, args ...any)
	Fatal(msg string, args ...any)
}

// Nop discards everything. Handy for tests and optional components.
type Nop struct{}

func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}
func (Nop) Debug(string, ...any) {}
func (Nop) Trace(string, ...any) {}
func (Nop) Fatal(string, ...any) {}
