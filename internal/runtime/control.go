package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

const controlLogPrefix = "runtime:control"

// ControlClient tells the host process the application is going away.
type ControlClient struct {
	url    string
	client *http.Client
}

// NewControlClient targets http://host:port/path. A zero port disables it.
func NewControlClient(host string, port uint16, path string, timeout time.Duration) *ControlClient {
	if port == 0 {
		return &ControlClient{}
	}
	return &ControlClient{
		url:    "http://" + net.JoinHostPort(host, strconv.Itoa(int(port))) + path,
		client: &http.Client{Timeout: timeout},
	}
}

// URL returns the endpoint, or "" when disabled.
func (c *ControlClient) URL() string {
	return c.url
}

type controlReply struct {
	Status int `json:"status"`
}

// NotifyShutdown GETs the shutdown endpoint and expects {"status":200}.
func (c *ControlClient) NotifyShutdown(ctx context.Context) error {
	if c.url == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("%s - build request: %w", controlLogPrefix, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s - GET %s: %w", controlLogPrefix, c.url, err)
	}
	defer resp.Body.Close()

	var reply controlReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("%s - decode reply: %w", controlLogPrefix, err)
	}
	if reply.Status != http.StatusOK {
		return fmt.Errorf("%s - host replied status %d", controlLogPrefix, reply.Status)
	}
	return nil
}
