// Package httpapi submits positions to a location endpoint over HTTP:
// POST {base}/api/location with a JSON body. A non-2xx answer carries a
// JSON {"message": "..."} body whose text becomes the failure reason.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

const (
	locationPath   = "/api/location"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// Client implements ports.LocationWriter against the HTTP endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for baseURL (scheme and host, optional prefix).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type locationBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

type errorBody struct {
	Message string `json:"message"`
}

// Save posts pos and maps any failure onto *domain.PersistenceError.
func (c *Client) Save(ctx context.Context, pos domain.Position) error {
	payload, err := json.Marshal(locationBody{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Accuracy:  pos.Accuracy,
		Timestamp: pos.Timestamp,
	})
	if err != nil {
		return domain.NewPersistenceError(err, "encode location: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+locationPath, bytes.NewReader(payload))
	if err != nil {
		return domain.NewPersistenceError(err, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewPersistenceError(err, "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return &domain.PersistenceError{Message: failureMessage(resp)}
}

// failureMessage extracts {message} from an error response, falling back to
// the status line when the body is not the expected JSON.
func failureMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return fmt.Sprintf("server responded %s", resp.Status)
}
