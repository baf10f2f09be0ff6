package video

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type sdkPredictBody struct {
	Instances []struct {
		Prompt string `json:"prompt"`
		Image  struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
			MimeType           string `json:"mimeType"`
		} `json:"image"`
	} `json:"instances"`
	Parameters struct {
		SampleCount int `json:"sampleCount"`
	} `json:"parameters"`
}

func TestSDKClientSubmitAndPollUseBaseURL(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1beta/models/veo-2.0-generate-001:predictLongRunning":
			var body sdkPredictBody
			if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) || !assert.Len(t, body.Instances, 1) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			assert.Equal(t, AnimationPrompt, body.Instances[0].Prompt)
			assert.Equal(t, "aGVsbG8=", body.Instances[0].Image.BytesBase64Encoded)
			assert.Equal(t, "image/png", body.Instances[0].Image.MimeType)
			assert.Equal(t, 1, body.Parameters.SampleCount)
			_, _ = w.Write([]byte(`{"name":"models/veo-2.0-generate-001/operations/op-1"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1beta/models/veo-2.0-generate-001/operations/op-1":
			if polls.Add(1) == 1 {
				_, _ = w.Write([]byte(`{"name":"models/veo-2.0-generate-001/operations/op-1","done":false}`))
				return
			}
			_, _ = w.Write([]byte(`{
				"name": "models/veo-2.0-generate-001/operations/op-1",
				"done": true,
				"response": {"generateVideoResponse": {"generatedSamples": [{"video": {"uri": "https://files.example.com/v1:download?alt=media"}}]}}
			}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := NewSDKClient(context.Background(), SDKOptions{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/v1beta",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	op, err := client.Submit(context.Background(), Request{
		Model:       "veo-2.0-generate-001",
		Prompt:      AnimationPrompt,
		ImageBase64: "aGVsbG8=",
		MIMEType:    "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "models/veo-2.0-generate-001/operations/op-1", op.Name)
	assert.False(t, op.Done)

	op, err = client.Poll(context.Background(), op)
	require.NoError(t, err)
	assert.False(t, op.Done)

	op, err = client.Poll(context.Background(), op)
	require.NoError(t, err)
	assert.True(t, op.Done)
	assert.False(t, op.Failed)
	assert.Equal(t, "https://files.example.com/v1:download?alt=media", op.ResultURI())
}

func TestSDKClientPollByNameOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/veo/operations/op-9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"models/veo/operations/op-9","done":true,"error":{"code":3,"message":"image violates policy"}}`))
	}))
	defer srv.Close()

	client, err := NewSDKClient(context.Background(), SDKOptions{APIKey: "k", BaseURL: srv.URL + "/v1beta/", HTTPClient: srv.Client()})
	require.NoError(t, err)

	op, err := client.Poll(context.Background(), &Operation{Name: "models/veo/operations/op-9"})
	require.NoError(t, err)
	assert.True(t, op.Failed)
	assert.Equal(t, "image violates policy", op.ErrorMessage)
}

func TestNewSDKClientRequiresKey(t *testing.T) {
	_, err := NewSDKClient(context.Background(), SDKOptions{APIKey: " "})
	assert.Error(t, err)
}

func TestSDKClientPollWithoutHandle(t *testing.T) {
	client, err := NewSDKClient(context.Background(), SDKOptions{APIKey: "k"})
	require.NoError(t, err)
	_, err = client.Poll(context.Background(), &Operation{})
	assert.Error(t, err)
}

func TestFromSDK(t *testing.T) {
	cases := []struct {
		name     string
		in       *genai.GenerateVideosOperation
		done     bool
		failed   bool
		message  string
		uri      string
		filtered string
	}{
		{name: "nil", in: nil},
		{name: "pending", in: &genai.GenerateVideosOperation{Name: "op"}},
		{
			name:    "error",
			in:      &genai.GenerateVideosOperation{Name: "op", Done: true, Error: map[string]any{"code": 3, "message": "quota"}},
			done:    true,
			failed:  true,
			message: "quota",
		},
		{
			name:   "error without message",
			in:     &genai.GenerateVideosOperation{Name: "op", Done: true, Error: map[string]any{"code": 13}},
			done:   true,
			failed: true,
		},
		{
			name: "video",
			in: &genai.GenerateVideosOperation{Name: "op", Done: true, Response: &genai.GenerateVideosResponse{
				GeneratedVideos: []*genai.GeneratedVideo{nil, {Video: nil}, {Video: &genai.Video{URI: "https://v/1"}}},
			}},
			done: true,
			uri:  "https://v/1",
		},
		{
			name: "empty response",
			in:   &genai.GenerateVideosOperation{Name: "op", Done: true, Response: &genai.GenerateVideosResponse{}},
			done: true,
		},
		{
			name: "filtered",
			in: &genai.GenerateVideosOperation{Name: "op", Done: true, Response: &genai.GenerateVideosResponse{
				RAIMediaFilteredCount:   1,
				RAIMediaFilteredReasons: []string{"child", "violence"},
			}},
			done:     true,
			filtered: "child; violence",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := fromSDK(tc.in)
			require.NotNil(t, out)
			assert.Equal(t, tc.done, out.Done)
			assert.Equal(t, tc.failed, out.Failed)
			assert.Equal(t, tc.message, out.ErrorMessage)
			assert.Equal(t, tc.uri, out.ResultURI())
			assert.Equal(t, tc.filtered, out.FilteredReason)
			if tc.in != nil {
				assert.Same(t, tc.in, Raw(out))
			}
		})
	}
}

func TestSplitAPIVersion(t *testing.T) {
	cases := []struct{ in, root, version string }{
		{"", "", ""},
		{"https://generativelanguage.googleapis.com/v1beta", "https://generativelanguage.googleapis.com/", "v1beta"},
		{"https://generativelanguage.googleapis.com/v1beta/", "https://generativelanguage.googleapis.com/", "v1beta"},
		{"http://127.0.0.1:9000/proxy/v1alpha", "http://127.0.0.1:9000/proxy/", "v1alpha"},
		{"https://proxy.example.com/gemini", "https://proxy.example.com/gemini/", ""},
	}
	for _, tc := range cases {
		root, version := splitAPIVersion(tc.in)
		assert.Equal(t, tc.root, root, tc.in)
		assert.Equal(t, tc.version, version, tc.in)
	}
}
