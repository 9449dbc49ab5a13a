package liquidctl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	pkglog "github.com/codifryed/coolercontrold/pkg/log"
)

// driverRequest is one line sent to the driver process's stdin.
type driverRequest struct {
	Cmd     string  `json:"cmd"`
	Device  int     `json:"device,omitempty"`
	Channel string  `json:"channel,omitempty"`
	Duty    float64 `json:"duty,omitempty"`
}

// driverDevice describes one device the driver process enumerated.
type driverDevice struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	Serial   string   `json:"serial"`
	Channels []string `json:"channels"`
}

// driverResponse is one line read back from the driver process's
// stdout, shaped to cover every request kind this package sends.
type driverResponse struct {
	OK      bool               `json:"ok"`
	Error   string              `json:"error,omitempty"`
	Devices []driverDevice      `json:"devices,omitempty"`
	Status  map[string]float64  `json:"status,omitempty"`
}

// driver manages one spawned liquidctl driver child process and
// serializes request/response pairs over its stdio, since the
// protocol is a strict one-line-request, one-line-response exchange
// driver manages one spawned liquidctl driver child process and
// serializes request/response pairs over its stdio, since the
// protocol is a strict one-line-request, one-line-response exchange.
type driver struct {
	log *slog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	enc    *json.Encoder
	dec    *bufio.Scanner
	stdin  io.WriteCloser
}

// startDriver spawns path with args and wires its stdio for
// line-oriented JSON exchange. Stderr is captured into log via
// pkg/log.WriteLogger instead of leaking to the controlling terminal.
func startDriver(ctx context.Context, path string, args []string, log *slog.Logger) (*driver, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = pkglog.NewWriteLogger(log)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("liquidctl driver stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("liquidctl driver stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("liquidctl driver start: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &driver{
		log:   log,
		cmd:   cmd,
		enc:   json.NewEncoder(stdin),
		dec:   scanner,
		stdin: stdin,
	}, nil
}

// call sends req and waits for the next response line, bounded by
// ctx. The caller holds the
// driver for the duration of the exchange since liquidctl's pipe
// protocol has no request IDs to correlate concurrent calls.
func (d *driver) call(ctx context.Context, req driverRequest) (driverResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	type result struct {
		resp driverResponse
		err  error
	}
	done := make(chan result, 1)

	go func() {
		if err := d.enc.Encode(req); err != nil {
			done <- result{err: fmt.Errorf("liquidctl driver write: %w", err)}
			return
		}
		if !d.dec.Scan() {
			if err := d.dec.Err(); err != nil {
				done <- result{err: fmt.Errorf("liquidctl driver read: %w", err)}
				return
			}
			done <- result{err: fmt.Errorf("liquidctl driver closed its output")}
			return
		}

		var resp driverResponse
		if err := json.Unmarshal(d.dec.Bytes(), &resp); err != nil {
			done <- result{err: fmt.Errorf("liquidctl driver response decode: %w", err)}
			return
		}
		if !resp.OK && resp.Error != "" {
			done <- result{resp: resp, err: fmt.Errorf("liquidctl driver: %s", resp.Error)}
			return
		}
		done <- result{resp: resp}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		return driverResponse{}, ctx.Err()
	}
}

// close terminates the driver process, waiting briefly for a clean exit.
func (d *driver) close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_ = d.stdin.Close()
	if d.cmd.Process == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- d.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		_ = d.cmd.Process.Kill()
		<-done
		return nil
	}
}
