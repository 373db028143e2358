package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// client sends requests to the gateway and prints the replies.
type client struct {
	serverURL string
	timeout   time.Duration
}

// errorResponse is the gateway's error body.
type errorResponse struct {
	Message string `json:"message"`
}

func (c *client) httpClient() *http.Client {
	return &http.Client{Timeout: c.timeout}
}

func (c *client) endpoint(path string) string {
	return strings.TrimRight(c.serverURL, "/") + path
}

func (c *client) postForm(cmd *cobra.Command, path string, fields map[string]string) error {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, c.endpoint(path), strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(cmd, req)
}

func (c *client) postFile(cmd *cobra.Command, path, storeID, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("vector_store_id", storeID); err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	part, err := mw.CreateFormFile("f", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, c.endpoint(path), &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(cmd, req)
}

func (c *client) get(cmd *cobra.Command, path string) error {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(cmd, req)
}

// do sends req and prints an indented JSON reply. Non-200 replies become
// errors carrying the gateway's message.
func (c *client) do(cmd *cobra.Command, req *http.Request) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		out.Reset()
		out.Write(body)
	}
	out.WriteByte('\n')
	_, err = cmd.OutOrStdout().Write(out.Bytes())
	return err
}
