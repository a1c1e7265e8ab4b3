// Package rpc exposes the synth controls over net/rpc on HTTP, so that a
// separate process can play the instrument.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/rpc"

	addesso "github.com/albertobarberis/addesso-synth"
)

// DefaultAddress is the address the server listens on when none is given.
const DefaultAddress = ":31337"

const serviceName = "Controls"

// ControlServer is the service registered with net/rpc.
type ControlServer struct {
	c   addesso.Controls
	log *slog.Logger
}

// Apply performs a command and replies with the state that follows.
func (s *ControlServer) Apply(cmd addesso.Command, reply *addesso.Snapshot) error {
	if err := cmd.Apply(s.c); err != nil {
		s.log.Warn("rejected remote command", "command", cmd.Name, "error", err)
		return err
	}
	s.log.Debug("remote command", "command", cmd.Name, "value", cmd.Value)
	*reply = s.c.Snapshot()
	return nil
}

// Serve answers remote commands on l until ctx is done. It closes l.
func Serve(ctx context.Context, l net.Listener, c addesso.Controls, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	server := rpc.NewServer()
	if err := server.RegisterName(serviceName, &ControlServer{c: c, log: logger}); err != nil {
		return fmt.Errorf("cannot register rpc service: %w", err)
	}
	// rpc.Server handles the CONNECT requests of rpc.DialHTTP on any path
	hs := &http.Server{Handler: server}
	go func() {
		<-ctx.Done()
		hs.Close()
	}()
	logger.Info("remote control listening", "address", l.Addr().String())
	if err := hs.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("rpc server failed: %w", err)
	}
	return nil
}

// Listen opens a TCP listener for Serve.
func Listen(address string) (net.Listener, error) {
	if address == "" {
		address = DefaultAddress
	}
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("net.Listen failed: %w", err)
	}
	return l, nil
}

type Client struct {
	c *rpc.Client
}

func Dial(address string) (*Client, error) {
	c, err := rpc.DialHTTP("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("rpc.DialHTTP failed: %w", err)
	}
	return &Client{c: c}, nil
}

// Send performs a command remotely and returns the resulting state.
func (c *Client) Send(cmd addesso.Command) (addesso.Snapshot, error) {
	var snap addesso.Snapshot
	if err := c.c.Call(serviceName+".Apply", cmd, &snap); err != nil {
		return addesso.Snapshot{}, fmt.Errorf("%s failed: %w", cmd.Name, err)
	}
	return snap, nil
}

func (c *Client) Close() error {
	return c.c.Close()
}
