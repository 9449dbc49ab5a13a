// SPDX-License-Identifier: BSD-3-Clause

package log

import "log/slog"

// WriteLogger adapts a slog.Logger to io.WriteCloser, logging each
// Write call's bytes as a single Info record. It is used to capture a
// subprocess's stdout/stderr (e.g. the liquidctl driver process) into
// the daemon's structured log instead of letting it go to the
// controlling terminal.
type WriteLogger struct {
	l *slog.Logger
}

// Write logs b as a single Info record and always reports success.
func (l *WriteLogger) Write(b []byte) (n int, err error) {
	l.l.Info(string(b))
	return len(b), nil
}

// Close implements io.Closer; there is nothing to release.
func (l *WriteLogger) Close() error {
	return nil
}

// NewWriteLogger wraps l as an io.WriteCloser.
func NewWriteLogger(l *slog.Logger) *WriteLogger {
	return &WriteLogger{l: l}
}
