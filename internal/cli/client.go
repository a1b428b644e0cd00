package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sergiup592/event-automation/internal/config"
)

// client is a thin HTTP client for the daemon's local API.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient() *client {
	port := config.DefaultPort
	if cfg, err := loadConfig(); err == nil && cfg.Settings.Daemon.Port != 0 {
		port = cfg.Settings.Daemon.Port
	}
	return &client{
		baseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *client) get(path string, out any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s (is it running?): %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (c *client) post(path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", &buf)
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s (is it running?): %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
