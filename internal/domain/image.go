package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// UploadedImage is the session's currently selected image in transportable form.
type UploadedImage struct {
	EncodedBytes string
	MIMEType     string
	Size         int64
	Filename     string
}

// NewUploadedImage encodes raw image bytes. The mime type must be image/*.
func NewUploadedImage(data []byte, mimeType, filename string) (*UploadedImage, error) {
	if !IsImageType(mimeType) {
		return nil, ErrInvalidFileType
	}
	return &UploadedImage{
		EncodedBytes: base64.StdEncoding.EncodeToString(data),
		MIMEType:     strings.TrimSpace(mimeType),
		Size:         int64(len(data)),
		Filename:     filename,
	}, nil
}

// IsImageType reports whether a declared content type begins with "image/".
func IsImageType(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// PreviewURI returns a data URI suitable for an <img> src.
func (i *UploadedImage) PreviewURI() string {
	if i == nil {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, i.EncodedBytes)
}
