package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"trait-roller/internal/apperr"
	"trait-roller/pkg/logger"
)

const DefaultSocketPath = "/tmp/trait-roller.sock"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Request struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

type Response struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Lines   []string `json:"lines,omitempty"`
}

// Result is what a command handler returns on success.
type Result struct {
	Message string
	Lines   []string
}

// HandlerFunc runs one command. Handlers must not block on long-running
// loops; those are started in their own goroutines.
type HandlerFunc func(args []string) (Result, error)

type Server struct {
	path     string
	log      *logger.Logger
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewServer(path string, log *logger.Logger) *Server {
	if path == "" {
		path = DefaultSocketPath
	}
	return &Server{path: path, log: log, handlers: make(map[string]HandlerFunc)}
}

// Handle registers fn for command, replacing any previous handler.
func (s *Server) Handle(command string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[command] = fn
}

// Commands lists the registered command names.
func (s *Server) Commands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serve accepts connections until ctx is done, then removes the socket.
func (s *Server) Serve(ctx context.Context) error {
	// Remove the socket file if it already exists
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing socket file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to start socket server: %w", err)
	}
	defer os.Remove(s.path)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.log.Info("Socket server started", "path", s.path)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.log.Info("Socket server stopped")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.log.Error("Failed to accept connection", err)
			continue
		}

		s.log.Debug("New connection accepted")
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.log.Error("Failed to decode request", err)
		return
	}

	s.log.Info("Received request", "command", req.Command, "args", req.Args)
	resp := s.dispatch(req)

	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		s.log.Error("Failed to encode response", err)
	} else {
		s.log.Debug("Response sent successfully", "status", resp.Status)
	}
}

func (s *Server) dispatch(req Request) Response {
	s.mu.RLock()
	fn, ok := s.handlers[req.Command]
	s.mu.RUnlock()

	if !ok {
		s.log.Error("Unknown command received", fmt.Errorf("command: %s", req.Command))
		return Response{Status: StatusError, Message: "Unknown command"}
	}

	res, err := fn(req.Args)
	if err != nil {
		s.log.Error("Command failed", err, "command", req.Command)
		return Response{Status: StatusError, Message: err.Error(), Code: string(apperr.CodeOf(err))}
	}
	return Response{Status: StatusSuccess, Message: res.Message, Lines: res.Lines}
}
