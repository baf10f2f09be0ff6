package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"animator/internal/infra"
	"animator/internal/providers/video"
)

// Options controls how the Gemini REST client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin REST facade over the Gemini long-running video endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type veoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type veoInstance struct {
	Prompt string    `json:"prompt"`
	Image  *veoImage `json:"image,omitempty"`
}

type veoParameters struct {
	SampleCount int `json:"sampleCount,omitempty"`
}

type veoPredictRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

type veoGeneratedSample struct {
	Video struct {
		URI string `json:"uri"`
	} `json:"video"`
}

type veoOperation struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples        []veoGeneratedSample `json:"generatedSamples"`
			RAIMediaFilteredCount   int                  `json:"raiMediaFilteredCount"`
			RAIMediaFilteredReasons []string             `json:"raiMediaFilteredReasons"`
		} `json:"generateVideoResponse"`
	} `json:"response,omitempty"`
	Error *struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("genai: api key is required")
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	logger := opts.Logger
	if logger == nil {
		nop := infra.NopLogger()
		logger = &nop
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Submit starts a predictLongRunning video operation for req.
func (c *Client) Submit(ctx context.Context, req video.Request) (*video.Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	count := req.NumberOfVideos
	if count <= 0 {
		count = 1
	}
	payload := veoPredictRequest{
		Instances: []veoInstance{{
			Prompt: req.Prompt,
			Image: &veoImage{
				BytesBase64Encoded: req.ImageBase64,
				MimeType:           req.MIMEType,
			},
		}},
		Parameters: veoParameters{SampleCount: count},
	}

	var op veoOperation
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(req.Model))
	if err := c.invokeGemini(ctx, http.MethodPost, path, payload, &op); err != nil {
		return nil, err
	}
	if op.Name == "" && !op.Done {
		return nil, errors.New("genai: operation name missing from response")
	}

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", req.Model).
		Str("operation", op.Name).
		Msg("genai: video operation submitted")

	return toOperation(op), nil
}

// Poll re-reads the operation state by name.
func (c *Client) Poll(ctx context.Context, op *video.Operation) (*video.Operation, error) {
	if op == nil || op.Name == "" {
		return nil, errors.New("genai: operation handle missing")
	}
	var next veoOperation
	if err := c.invokeGemini(ctx, http.MethodGet, "/"+strings.TrimLeft(op.Name, "/"), nil, &next); err != nil {
		return nil, err
	}
	if next.Name == "" {
		next.Name = op.Name
	}
	return toOperation(next), nil
}

// Download fetches a result locator with the API key appended.
func (c *Client) Download(ctx context.Context, uri string) (*video.Blob, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	return video.Fetch(ctx, c.httpClient, target, c.apiKey)
}

func toOperation(op veoOperation) *video.Operation {
	out := &video.Operation{Name: op.Name, Done: op.Done}
	if op.Error != nil {
		out.Failed = true
		out.ErrorMessage = op.Error.Message
	}
	if op.Response != nil {
		for _, sample := range op.Response.GenerateVideoResponse.GeneratedSamples {
			out.VideoURIs = append(out.VideoURIs, sample.Video.URI)
		}
		out.FilteredReason = strings.Join(op.Response.GenerateVideoResponse.RAIMediaFilteredReasons, "; ")
	}
	return out
}

func (c *Client) invokeGemini(ctx context.Context, method, path string, payload any, out any) error {
	endpoint := c.baseURL + path
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

var _ video.Service = (*Client)(nil)
