package domain

import "time"

// Video is a downloaded generation result held in memory for playback.
type Video struct {
	Ref       string
	MIMEType  string
	Data      []byte
	SourceURI string
	CreatedAt time.Time
}

// Size returns the payload length in bytes.
func (v *Video) Size() int64 {
	if v == nil {
		return 0
	}
	return int64(len(v.Data))
}
