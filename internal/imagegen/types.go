package imagegen

import (
	"context"
	"fmt"
)

// DefaultContentType is the media type requested from the generation backend.
const DefaultContentType = "image/jpeg"

// Image is the raw payload returned by the generation backend.
type Image struct {
	Data        []byte
	ContentType string
}

// Generator turns a text prompt into image bytes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Image, error)
}

// StatusError reports a non-2xx answer from the generation backend. Body holds
// at most the first few KiB of the response for diagnostics.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("imagegen: backend returned http %d", e.StatusCode)
}
