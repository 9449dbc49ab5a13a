// SPDX-License-Identifier: BSD-3-Clause

// Package log provides the daemon's structured console logger: a
// zerolog console writer wrapped behind the standard library's slog
// API, so every package in this module logs through slog.Logger
// without depending on zerolog directly.
//
// It also carries small adapters so NATS server and oversight
// supervisor log lines are folded into the same slog.Logger rather
// than going to their own loggers.
//
// # Basic usage
//
//	logger := log.NewDefaultLogger(slog.LevelInfo)
//	logger.Info("engine starting", "poll_rate", pollRate)
//	logger.Warn("safety latch triggered", "profile", profileUID)
//
// # NATS integration
//
//	natsLogger := log.NewNATSLogger(logger)
//	opts := &server.Options{Host: "127.0.0.1", Port: -1}
//	srv, _ := server.NewServer(opts)
//	srv.SetLoggerV2(natsLogger, false, false, false)
//
// # Oversight integration
//
//	tree := oversight.New(oversight.WithLogger(log.NewOversightLogger(logger)))
package log
