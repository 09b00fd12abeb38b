// Package rpc provides Unix socket IPC between a running beaconer and the
// list CLI.
package rpc

import (
	"fmt"
	"net"
	netrpc "net/rpc"
	"os"
	"time"

	"github.com/rs/zerolog"

	"pocbeacon/internal/store"
)

// Service is the RPC service exposed by the beaconer.
type Service struct {
	store *store.Store
	log   zerolog.Logger
}

// ListReportsArgs is the request for ListReports.
type ListReportsArgs struct{}

// ListReportsReply is the response for ListReports.
type ListReportsReply struct {
	Reports []store.ReportRecord
}

// StatsArgs is the request for Stats.
type StatsArgs struct{}

// StatsReply is the response for Stats.
type StatsReply struct {
	Total        int
	LastBeaconID string
	LastSeen     time.Time
}

// ListReports returns every recorded beacon report.
func (s *Service) ListReports(args *ListReportsArgs, reply *ListReportsReply) error {
	reports, err := s.store.All()
	if err != nil {
		return fmt.Errorf("fetching reports: %w", err)
	}
	reply.Reports = reports
	return nil
}

// Stats summarizes the report history.
func (s *Service) Stats(args *StatsArgs, reply *StatsReply) error {
	reports, err := s.store.All()
	if err != nil {
		return fmt.Errorf("fetching reports: %w", err)
	}

	reply.Total = len(reports)
	for _, r := range reports {
		if r.LastSeen.After(reply.LastSeen) {
			reply.LastSeen = r.LastSeen
			reply.LastBeaconID = r.BeaconID
		}
	}
	return nil
}

// StartServer starts the Unix socket RPC server.
func StartServer(socketPath string, db *store.Store, log zerolog.Logger) error {
	service := &Service{store: db, log: log}

	server := netrpc.NewServer()
	if err := server.Register(service); err != nil {
		return fmt.Errorf("registering RPC service: %w", err)
	}

	// Remove existing socket file if present
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", socketPath, err)
	}

	// Set socket permissions
	if err := os.Chmod(socketPath, 0660); err != nil {
		log.Warn().Err(err).Msg("Failed to set socket permissions")
	}

	log.Info().Str("socket", socketPath).Msg("RPC server started")

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("RPC accept error")
				continue
			}
			go server.ServeConn(conn)
		}
	}()

	return nil
}

// Client is a client for the beaconer RPC service.
type Client struct {
	client *netrpc.Client
}

// NewClient dials the Unix socket and returns an RPC client.
func NewClient(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to RPC socket %s: %w", socketPath, err)
	}
	return &Client{client: netrpc.NewClient(conn)}, nil
}

// Close closes the RPC client connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// ListReports fetches every recorded beacon report from the beaconer.
func (c *Client) ListReports() ([]store.ReportRecord, error) {
	args := &ListReportsArgs{}
	reply := &ListReportsReply{}
	if err := c.client.Call("Service.ListReports", args, reply); err != nil {
		return nil, err
	}
	return reply.Reports, nil
}

// Stats fetches the report history summary from the beaconer.
func (c *Client) Stats() (*StatsReply, error) {
	args := &StatsArgs{}
	reply := &StatsReply{}
	if err := c.client.Call("Service.Stats", args, reply); err != nil {
		return nil, err
	}
	return reply, nil
}
