package api

import (
	"context"
	"net/http"
)

// HealthStatus is the backend's health check payload.
type HealthStatus struct {
	Status   string            `json:"status"`
	Version  string            `json:"version,omitempty"`
	Services map[string]string `json:"services,omitempty"`
}

// Health pings the backend. Works unauthenticated.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var hs HealthStatus
	if err := c.Do(ctx, http.MethodGet, "/health/check", nil, &hs); err != nil {
		return nil, err
	}
	return &hs, nil
}
