// SPDX-License-Identifier: BSD-3-Clause

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// Bus embeds a NATS server with no network listener and publishes
// EngineEvents onto it for any in-process subscriber.
type Bus struct {
	log *slog.Logger

	mu  sync.Mutex
	srv *natsserver.Server
	nc  *nats.Conn
}

// New constructs an unstarted Bus.
func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{log: log}
}

// Start launches the embedded server (DontListen: true, so no TCP
// port is opened) and connects an internal publisher client to it.
func (b *Bus) Start(ctx context.Context) error {
	opts := &natsserver.Options{
		ServerName:  "coolercontrold",
		DontListen:  true,
		NoLog:       true,
		NoSigs:      true,
		MaxPayload:  1 << 20,
	}

	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return fmt.Errorf("event bus server: %w", err)
	}
	srv.Start()

	if !srv.ReadyForConnections(5 * time.Second) {
		srv.Shutdown()
		return ErrServerNotReady
	}

	nc, err := nats.Connect("", nats.InProcessServer(srv))
	if err != nil {
		srv.Shutdown()
		return fmt.Errorf("event bus connect: %w", err)
	}

	b.mu.Lock()
	b.srv, b.nc = srv, nc
	b.mu.Unlock()

	b.log.Info("event bus started", "server_id", srv.ID())
	return nil
}

// Publish JSON-encodes event and publishes it to subject. Publish
// failures are non-fatal to the engine loop; the caller logs and
// continues.
func (b *Bus) Publish(subject string, event any) error {
	b.mu.Lock()
	nc := b.nc
	b.mu.Unlock()

	if nc == nil {
		return ErrNotStarted
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event bus marshal: %w", err)
	}
	return nc.Publish(subject, data)
}

// Conn returns the internal NATS connection, for a subscriber running
// in the same process (e.g. tests asserting on published events).
func (b *Bus) Conn() *nats.Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nc
}

// Shutdown drains the publisher connection and stops the embedded
// server.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	nc, srv := b.nc, b.srv
	b.nc, b.srv = nil, nil
	b.mu.Unlock()

	if nc != nil {
		nc.Close()
	}
	if srv != nil {
		srv.Shutdown()
		srv.WaitForShutdown()
	}
	return nil
}
