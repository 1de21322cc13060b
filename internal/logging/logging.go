// Package logging sets up this module's slog backend: a logrus-backed
// handler bridged in via samber/slog-logrus. The CLI and server log
// through log/slog at call sites; logrus supplies the JSON formatting
// and output sink.
package logging

import (
	"log/slog"

	sloglogrus "github.com/samber/slog-logrus/v2"
	"github.com/sirupsen/logrus"
)

// Setup installs a slog.Logger backed by a logrus.Logger as the process
// default and returns it. component is attached to every record.
func Setup(component string) *slog.Logger {
	lr := logrus.New()
	lr.SetFormatter(&logrus.JSONFormatter{})

	handler := sloglogrus.Option{Logger: lr}.NewLogrusHandler()
	log := slog.New(handler).With("component", component)
	slog.SetDefault(log)
	return log
}
