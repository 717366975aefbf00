package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"trait-roller/pkg/logger"
)

const dialTimeout = 2 * time.Second

// SendCommand sends one request to the daemon and waits for its response.
func SendCommand(path string, log *logger.Logger, command string, args ...string) (Response, error) {
	if path == "" {
		path = DefaultSocketPath
	}
	log.Debug("Attempting to connect to socket server", "path", path)

	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return Response{}, fmt.Errorf("daemon not reachable at %s: %w", path, err)
	}
	defer conn.Close()

	req := Request{Command: command, Args: args}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("failed to encode request: %w", err)
	}

	log.Debug("Request sent successfully", "command", command)

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}

	log.Debug("Response received", "status", resp.Status, "message", resp.Message)
	return resp, nil
}
