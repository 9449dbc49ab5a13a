// SPDX-License-Identifier: BSD-3-Clause

package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// Level controls which records reach every fanned-out handler.
type Level = slog.Level

// NewDefaultLogger returns the daemon's console logger: zerolog
// console-writer formatting (timestamps, colorized level, human
// field ordering) wrapped behind the slog API everything else in this
// module logs through.
func NewDefaultLogger(level Level) *slog.Logger {
	return newConsoleLogger(os.Stderr, level)
}

// NewConsoleLogger is like NewDefaultLogger but writes to an arbitrary
// sink, used by tests that want to assert on log output.
func NewConsoleLogger(w io.Writer, level Level) *slog.Logger {
	return newConsoleLogger(w, level)
}

func newConsoleLogger(w io.Writer, level Level) *slog.Logger {
	zeroLogger := zerolog.
		New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}).
		With().
		Timestamp().
		Logger()

	return slog.New(slogmulti.Fanout(
		slogzerolog.Option{Level: level, Logger: &zeroLogger}.NewZerologHandler(),
	))
}
