// Package video defines the contract with the upstream video-generation
// service and the pieces shared by its implementations.
package video

import (
	"context"
	"strings"
)

// Request describes a single image-to-video submission.
type Request struct {
	Model          string
	Prompt         string
	ImageBase64    string
	MIMEType       string
	NumberOfVideos int
	RequestID      string
}

// Operation is the normalized job handle returned by Submit and Poll.
type Operation struct {
	Name           string
	Done           bool
	Failed         bool
	ErrorMessage   string
	VideoURIs      []string
	FilteredReason string

	// raw keeps the implementation-specific handle needed to poll again.
	raw any
}

// ResultURI returns the first generated video locator, if any.
func (o *Operation) ResultURI() string {
	if o == nil {
		return ""
	}
	for _, uri := range o.VideoURIs {
		if strings.TrimSpace(uri) != "" {
			return uri
		}
	}
	return ""
}

// Blob is downloaded binary content.
type Blob struct {
	Data     []byte
	MIMEType string
}

// Service is implemented by every upstream video provider.
type Service interface {
	Submit(ctx context.Context, req Request) (*Operation, error)
	Poll(ctx context.Context, op *Operation) (*Operation, error)
	Download(ctx context.Context, uri string) (*Blob, error)
}

// WithRaw attaches an implementation handle to op.
func WithRaw(op *Operation, raw any) *Operation {
	op.raw = raw
	return op
}

// Raw returns the implementation handle attached with WithRaw.
func Raw(op *Operation) any {
	if op == nil {
		return nil
	}
	return op.raw
}

// AnimationPrompt is the fixed, non-configurable instruction sent with every image.
const AnimationPrompt = "Animate only the main subject in this image. The camera must be absolutely fixed and static. " +
	"Do not zoom, pan, tilt, or move the camera in any way. The background must also remain completely still. " +
	"Do not add any visual effects like smoke, vapor, dust, or particles. The animation should be subtle and short."
