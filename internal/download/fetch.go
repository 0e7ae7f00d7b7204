package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxImageBytes caps how much of a remote image is read into memory.
const maxImageBytes = 32 << 20

// Fetch downloads the image at url and returns its bytes and content type.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("download: build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("download: read body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("download: image exceeds %d bytes", maxImageBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
