package config

import (
	"log/slog"
)

var (
	SlogServiceName    = slog.String("service", ServiceName)
	SlogServiceAddress = slog.String("address", ServerAddress)
)

// ErrAttr wraps an error as a slog attribute under the "error" key.
func ErrAttr(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "no-error")
	}
	return slog.String("error", err.Error())
}
