package video

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"animator/internal/domain"
)

// MaxDownloadBytes caps a single result download.
const MaxDownloadBytes = 512 << 20

// Fetch retrieves uri with apiKey appended as the "key" query parameter.
// A non-2xx response yields a *domain.DownloadError carrying the status text.
func Fetch(ctx context.Context, client *http.Client, uri, apiKey string) (*Blob, error) {
	target, err := WithKey(uri, apiKey)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &domain.DownloadError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read video: %w", err)
	}
	if len(data) > MaxDownloadBytes {
		return nil, fmt.Errorf("read video: payload exceeds %d bytes", MaxDownloadBytes)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" || strings.HasPrefix(mime, "application/octet-stream") {
		mime = http.DetectContentType(data)
		if !strings.HasPrefix(mime, "video/") {
			mime = "video/mp4"
		}
	}
	return &Blob{Data: data, MIMEType: mime}, nil
}

// WithKey appends the credential to a result locator as the "key" query parameter.
func WithKey(uri, apiKey string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid result uri %q", uri)
	}
	if apiKey != "" {
		q := u.Query()
		q.Set("key", apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	if s := strings.TrimSpace(resp.Status); s != "" {
		return s
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
