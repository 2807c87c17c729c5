package models

import (
	"fmt"
	"strings"
)

// PendingImage is the image currently under styling, exclusively owned by
// the workflow controller from selection until reset or replacement.
//
// PreviewDataURL is derived once at selection time and cached so the
// "before" view never goes blank while a submission is in flight.
type PendingImage struct {
	Path           string
	Filename       string
	ContentType    string
	Size           int64
	Width          int
	Height         int
	Data           []byte
	PreviewDataURL string
}

// Validate checks that the pending image carries bytes and a declared
// image media type.
func (p *PendingImage) Validate() error {
	if len(p.Data) == 0 {
		return fmt.Errorf("pending image has no data")
	}
	if !strings.HasPrefix(strings.ToLower(p.ContentType), "image/") {
		return fmt.Errorf("media type %q is not an image", p.ContentType)
	}
	return nil
}
