package video

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"animator/internal/infra"
)

// SDKOptions configures the google.golang.org/genai backed service.
type SDKOptions struct {
	APIKey string
	// BaseURL overrides the Gemini endpoint. A trailing version segment such
	// as /v1beta becomes the SDK's API version.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// SDKClient talks to Veo through the official Go SDK.
type SDKClient struct {
	models     *genai.Models
	operations *genai.Operations
	apiKey     string
	httpClient *http.Client
	logger     infra.Logger
}

// NewSDKClient constructs the SDK client against the Gemini API backend.
func NewSDKClient(ctx context.Context, opts SDKOptions) (*SDKClient, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("video: %w", errMissingKey)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	root, version := splitAPIVersion(opts.BaseURL)
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: root, APIVersion: version},
	})
	if err != nil {
		return nil, fmt.Errorf("video: create genai client: %w", err)
	}
	logger := infra.NopLogger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &SDKClient{
		models:     client.Models,
		operations: client.Operations,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

var errMissingKey = errors.New("api key is required")

var apiVersionPattern = regexp.MustCompile(`^v\d+(alpha|beta)?\d*$`)

// splitAPIVersion turns https://host/v1beta into ("https://host/", "v1beta").
// Without a version segment the URL is kept whole and the SDK default applies.
func splitAPIVersion(base string) (root, version string) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "", ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + "/", ""
	}
	dir, last := path.Split(u.Path)
	if !apiVersionPattern.MatchString(last) {
		return base + "/", ""
	}
	u.Path = dir
	return u.String(), last
}

func (c *SDKClient) Submit(ctx context.Context, req Request) (*Operation, error) {
	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	count := req.NumberOfVideos
	if count <= 0 {
		count = 1
	}
	op, err := c.models.GenerateVideos(
		ctx,
		req.Model,
		req.Prompt,
		&genai.Image{ImageBytes: data, MIMEType: req.MIMEType},
		&genai.GenerateVideosConfig{NumberOfVideos: int32(count)},
	)
	if err != nil {
		return nil, fmt.Errorf("generate videos: %w", err)
	}
	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", req.Model).
		Str("operation", op.Name).
		Msg("video: sdk submission accepted")
	return fromSDK(op), nil
}

func (c *SDKClient) Poll(ctx context.Context, op *Operation) (*Operation, error) {
	raw, ok := Raw(op).(*genai.GenerateVideosOperation)
	if !ok || raw == nil {
		if op == nil || op.Name == "" {
			return nil, errors.New("video: operation handle missing")
		}
		raw = &genai.GenerateVideosOperation{Name: op.Name}
	}
	next, err := c.operations.GetVideosOperation(ctx, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("get videos operation: %w", err)
	}
	return fromSDK(next), nil
}

func (c *SDKClient) Download(ctx context.Context, uri string) (*Blob, error) {
	return Fetch(ctx, c.httpClient, uri, c.apiKey)
}

func fromSDK(op *genai.GenerateVideosOperation) *Operation {
	out := &Operation{}
	if op == nil {
		return out
	}
	out.Name = op.Name
	out.Done = op.Done
	if op.Error != nil {
		out.Failed = true
		if msg, ok := op.Error["message"].(string); ok {
			out.ErrorMessage = msg
		}
	}
	if op.Response != nil {
		for _, generated := range op.Response.GeneratedVideos {
			if generated == nil || generated.Video == nil {
				continue
			}
			out.VideoURIs = append(out.VideoURIs, generated.Video.URI)
		}
		if len(op.Response.RAIMediaFilteredReasons) > 0 {
			out.FilteredReason = strings.Join(op.Response.RAIMediaFilteredReasons, "; ")
		}
	}
	return WithRaw(out, op)
}

var _ Service = (*SDKClient)(nil)
