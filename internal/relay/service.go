package relay

import (
	"context"
	"errors"
	"fmt"
	"mime"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"imagerelay/internal/imagegen"
	"imagerelay/internal/storage"
)

const (
	// ImageExtension and ImageContentType are fixed for every stored object,
	// whatever the backend reports.
	ImageExtension   = ".jpg"
	ImageContentType = "image/jpeg"
)

// Service runs the relay stages after authentication: call the generation
// backend, persist the bytes, return the public URL.
type Service struct {
	generator imagegen.Generator
	store     storage.ObjectStore
	logger    zerolog.Logger
	newKey    func() string
}

func NewService(generator imagegen.Generator, store storage.ObjectStore, logger zerolog.Logger) *Service {
	return &Service{
		generator: generator,
		store:     store,
		logger:    logger,
		newKey:    func() string { return uuid.NewString() + ImageExtension },
	}
}

// Generate returns the public URL of a freshly generated image. Failures are
// *Error values classified by stage.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}

	img, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		relayErr := classifyUpstream(err)
		event := logger.Error().Err(err).Str("kind", relayErr.Kind.String())
		var statusErr *imagegen.StatusError
		if errors.As(err, &statusErr) {
			event = event.Int("upstream_status", statusErr.StatusCode).Str("upstream_body", statusErr.Body)
		}
		event.Msg("generation backend failed")
		return "", relayErr
	}
	if img == nil {
		err := errors.New("backend returned no image")
		logger.Error().Err(err).Msg("generation backend failed")
		return "", newError(KindUpstream, "generate", err)
	}
	if reported := mediaType(img.ContentType); reported != "" && reported != ImageContentType {
		logger.Warn().Str("content_type", img.ContentType).Msg("backend content type differs from stored type")
	}

	key := s.newKey()
	url, err := s.store.Put(ctx, key, img.Data, ImageContentType)
	if err != nil {
		logger.Error().Err(err).Str("key", key).Int("size", len(img.Data)).Msg("image upload failed")
		return "", newError(KindStorage, "persist", fmt.Errorf("put %s: %w", key, err))
	}

	logger.Info().Str("key", key).Int("size", len(img.Data)).Msg("image stored")
	return url, nil
}

func classifyUpstream(err error) *Error {
	var statusErr *imagegen.StatusError
	switch {
	case errors.As(err, &statusErr), errors.Is(err, imagegen.ErrInvalidBaseURL):
		return newError(KindUpstream, "generate", err)
	default:
		return newError(KindTransport, "generate", err)
	}
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mt
}
