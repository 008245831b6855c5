package ports

import "io"

// Logger defines the interface for logging.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	Info(msg string)
	Warn(msg string)
	// Debug messages are only shown in verbose mode.
	Debug(msg string)
	Error(err error)
	SetOutput(w io.Writer)
	SetJSON(enable bool)
	SetVerbose(enable bool)
}
